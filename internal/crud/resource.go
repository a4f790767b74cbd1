// Package crud is a client for collection-style REST resources: GET list,
// GET one, POST create, PUT full replace and DELETE. There is no partial
// update; Replace always sends the complete record.
package crud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"animehub/internal/apperror"
)

// Resource is one collection, e.g. https://host/user_info.
type Resource[T any] struct {
	BaseURL string
	Name    string // used in log lines and error messages
	Client  *http.Client
}

func NewResource[T any](name, baseURL string, timeout time.Duration) *Resource[T] {
	return &Resource[T]{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Name:    name,
		Client:  &http.Client{Timeout: timeout},
	}
}

// List returns every record. A 404 on the collection itself is treated as
// an empty collection, which is how the mock service reports it.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	status, err := r.do(ctx, http.MethodGet, r.BaseURL, nil, &out)
	if status == http.StatusNotFound {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	var out T
	status, err := r.do(ctx, http.MethodGet, r.itemURL(id), nil, &out)
	if status == http.StatusNotFound {
		return nil, apperror.NewNotFoundError(r.Name+" not found", err)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T]) Create(ctx context.Context, v T) (*T, error) {
	var out T
	if _, err := r.do(ctx, http.MethodPost, r.BaseURL, v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Replace PUTs the full record v to id and returns what the service stored.
func (r *Resource[T]) Replace(ctx context.Context, id string, v T) (*T, error) {
	var out T
	status, err := r.do(ctx, http.MethodPut, r.itemURL(id), v, &out)
	if status == http.StatusNotFound {
		return nil, apperror.NewNotFoundError(r.Name+" not found", err)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	status, err := r.do(ctx, http.MethodDelete, r.itemURL(id), nil, nil)
	if status == http.StatusNotFound {
		return apperror.NewNotFoundError(r.Name+" not found", err)
	}
	return err
}

func (r *Resource[T]) itemURL(id string) string {
	return r.BaseURL + "/" + url.PathEscape(id)
}

// do performs one request and decodes a 2xx body into out. It returns the
// response status (0 when no response arrived) alongside any error.
func (r *Resource[T]) do(ctx context.Context, method, endpoint string, payload, out any) (int, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, apperror.NewInternalError("encode "+r.Name, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, apperror.NewInternalError("build "+r.Name+" request", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return 0, apperror.NewExternalServiceError(r.Name+" service unavailable", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, apperror.NewExternalServiceError(r.Name+" service unavailable", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, apperror.NewExternalServiceError(
			r.Name+" request failed",
			fmt.Errorf("%s %s: status %d: %s", method, endpoint, resp.StatusCode, strings.TrimSpace(string(data))),
		)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, apperror.NewExternalServiceError("decode "+r.Name, err)
	}
	return resp.StatusCode, nil
}
