// Package jikan reads anime listings and details from the Jikan v4 API.
package jikan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"animehub/internal/apperror"
	"animehub/pkg/models"
)

const DefaultBaseURL = "https://api.jikan.moe/v4"

type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// Page fetches one listing page, e.g. path "/top/anime" or "/anime".
func (c *Client) Page(ctx context.Context, path string, params url.Values) (*models.AnimePage, error) {
	var page models.AnimePage
	if err := c.get(ctx, path, params, &page); err != nil {
		return nil, err
	}
	if page.Data == nil {
		page.Data = []models.Anime{}
	}
	return &page, nil
}

// Detail fetches a single anime by its MAL id.
func (c *Client) Detail(ctx context.Context, id string) (*models.Anime, error) {
	if _, err := strconv.Atoi(id); err != nil {
		return nil, apperror.NewNotFoundError("anime not found", err)
	}
	var body struct {
		Data models.Anime `json:"data"`
	}
	if err := c.get(ctx, "/anime/"+id, nil, &body); err != nil {
		return nil, err
	}
	return &body.Data, nil
}

// Title returns the display title of an anime.
func (c *Client) Title(ctx context.Context, id string) (string, error) {
	a, err := c.Detail(ctx, id)
	if err != nil {
		return "", err
	}
	return a.Title, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return apperror.NewInternalError("jikan: build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("[jikan] GET %s: %v", path, err)
		}
		return apperror.NewExternalServiceError("anime service unavailable", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperror.NewNotFoundError("anime not found", fmt.Errorf("jikan: %s: status 404", path))
	case resp.StatusCode != http.StatusOK:
		log.Printf("[jikan] GET %s: status %d", path, resp.StatusCode)
		return apperror.NewExternalServiceError(
			"anime service unavailable",
			fmt.Errorf("jikan: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return apperror.NewExternalServiceError("anime service returned bad data", fmt.Errorf("jikan: decode: %w", err))
	}
	return nil
}
