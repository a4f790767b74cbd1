package catalog

import (
	"context"
	"log"
	"net/url"

	"animehub/pkg/models"
)

// Source is the metadata service as seen by the list page.
type Source interface {
	Page(ctx context.Context, path string, params url.Values) (*models.AnimePage, error)
}

type Service struct {
	Source Source
}

func NewService(src Source) *Service {
	return &Service{Source: src}
}

// Load fetches the page of results described by q. The returned page always
// has a usable Pagination block, even when the service sends none.
func (s *Service) Load(ctx context.Context, q Query) (*models.AnimePage, error) {
	req := q.Request()
	page, err := s.Source.Page(ctx, req.Path, req.Params)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("[catalog] %s page=%d: %v", req.Endpoint, q.page(), err)
		}
		return nil, err
	}
	if page.Pagination.CurrentPage < 1 {
		page.Pagination.CurrentPage = q.page()
	}
	if page.Pagination.LastVisiblePage < page.Pagination.CurrentPage {
		page.Pagination.LastVisiblePage = page.Pagination.CurrentPage
	}
	return page, nil
}
