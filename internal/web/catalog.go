package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"animehub/internal/catalog"
	"animehub/internal/pagination"
	"animehub/internal/session"
	"animehub/pkg/models"
)

type pageLink struct {
	N       int
	URL     string
	Current bool
}

func (h *Handler) list(c *gin.Context) {
	q := catalog.FromValues(c.Request.URL.Query())

	data := gin.H{
		"Query":   q,
		"Genres":  catalog.Genres,
		"Ratings": catalog.Ratings,
		"Sorts":   catalog.Sorts,
		"Results": []models.Anime{},
	}
	if q.IsDefault() {
		data["Heading"] = "Top anime"
	} else {
		data["Heading"] = "Search results"
	}

	res, err := h.Catalog.Load(c.Request.Context(), q)
	if err != nil {
		if c.Request.Context().Err() != nil {
			return
		}
		data["Notices"] = []session.Notice{{Kind: "error", Text: "Failed to load the anime list. Please try again."}}
		data["Nav"] = navData(q, models.Pagination{CurrentPage: q.Page, LastVisiblePage: q.Page})
		h.render(c, http.StatusBadGateway, "list.tmpl", "AnimeHub", data)
		return
	}

	data["Results"] = res.Data
	data["Nav"] = navData(q, res.Pagination)
	h.render(c, http.StatusOK, "list.tmpl", "AnimeHub", data)
}

func navData(q catalog.Query, p models.Pagination) gin.H {
	nav := pagination.NewNav(p)
	links := make([]pageLink, 0, len(nav.Pages))
	for _, n := range nav.Pages {
		links = append(links, pageLink{N: n, URL: q.WithPage(n).URL(), Current: n == nav.Current})
	}
	return gin.H{
		"Nav":      nav,
		"Links":    links,
		"FirstURL": q.WithPage(1).URL(),
		"PrevURL":  q.WithPage(nav.Prev).URL(),
		"NextURL":  q.WithPage(nav.Next).URL(),
		"LastURL":  q.WithPage(nav.Last).URL(),
		"Hidden":   q.Values(),
	}
}

// search handles the search box. The form carries the active filters as
// hidden fields; a new term always starts again at page 1.
func (h *Handler) search(c *gin.Context) {
	cur := catalog.FromValues(c.Request.URL.Query())
	redirect(c, cur.WithSearch(c.Query("q")).URL())
}

func (h *Handler) filter(c *gin.Context) {
	cur := catalog.FromValues(c.Request.URL.Query())
	next := cur.WithFilters(c.Query("genre"), c.Query("rating"), c.Query("sort"))
	redirect(c, next.URL())
}

// jump handles the page number box. A rejected value leaves the list where
// it was. Without a usable last page from the form, the current listing is
// asked for it; if that fails too, only the lower bound is checked.
func (h *Handler) jump(c *gin.Context) {
	cur := catalog.FromValues(c.Request.URL.Query())
	last, err := strconv.Atoi(c.Query("last"))
	if err != nil || last < 1 {
		last = 0
		if res, err := h.Catalog.Load(c.Request.Context(), cur); err == nil {
			last = res.Pagination.LastVisiblePage
		}
	}

	p, err := pagination.ParseJump(c.Query("to"), cur.Page, last)
	if err != nil {
		notice(c, "error", err.Error())
		redirect(c, cur.URL())
		return
	}
	redirect(c, cur.WithPage(p).URL())
}
