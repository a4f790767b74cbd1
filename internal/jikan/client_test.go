package jikan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"animehub/internal/apperror"
)

func TestPageAndDetail(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/top/anime":
			gotQuery = r.URL.Query()
			_, _ = w.Write([]byte(`{"data":[{"mal_id":1,"title":"Cowboy Bebop","score":8.75,"genres":[{"mal_id":1,"name":"Action"}]}],
				"pagination":{"current_page":2,"last_visible_page":40,"has_next_page":true}}`))
		case "/anime/5":
			_, _ = w.Write([]byte(`{"data":{"mal_id":5,"title":"Bebop Movie","synopsis":"s","trailer":{"embed_url":"https://youtube/embed"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status":404,"message":"Resource does not exist"}`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	ctx := context.Background()

	page, err := c.Page(ctx, "/top/anime", url.Values{"page": {"2"}, "limit": {"12"}})
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if gotQuery.Get("page") != "2" || gotQuery.Get("limit") != "12" {
		t.Errorf("unexpected query %v", gotQuery)
	}
	if len(page.Data) != 1 || page.Data[0].ID() != "1" || page.Data[0].GenreNames() != "Action" {
		t.Errorf("unexpected data %+v", page.Data)
	}
	if page.Pagination.LastVisiblePage != 40 || !page.Pagination.HasNextPage {
		t.Errorf("unexpected pagination %+v", page.Pagination)
	}

	a, err := c.Detail(ctx, "5")
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if a.Title != "Bebop Movie" || a.Trailer.EmbedURL == "" {
		t.Errorf("unexpected detail %+v", a)
	}

	if _, err := c.Detail(ctx, "999"); !apperror.IsNotFound(err) {
		t.Errorf("missing detail: expected not-found, got %v", err)
	}
	if _, err := c.Detail(ctx, "abc"); !apperror.IsNotFound(err) {
		t.Errorf("non-numeric id: expected not-found, got %v", err)
	}
}

func TestServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Page(context.Background(), "/anime", nil); !apperror.IsExternal(err) {
		t.Errorf("expected external error, got %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClient(srv.URL, 5*time.Second)
	if _, err := c.Page(ctx, "/anime", nil); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
