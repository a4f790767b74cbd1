package mockapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Repo *Repo
	// Collections limits the served collection names. Empty serves any.
	Collections []string
}

func NewHandler(repo *Repo, collections ...string) *Handler {
	return &Handler{Repo: repo, Collections: collections}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/:collection", h.collection(h.list))
	r.POST("/:collection", h.collection(h.create))
	r.GET("/:collection/:id", h.collection(h.get))
	r.PUT("/:collection/:id", h.collection(h.update))
	r.DELETE("/:collection/:id", h.collection(h.remove))
}

func (h *Handler) collection(next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(h.Collections) > 0 {
			name := c.Param("collection")
			ok := false
			for _, col := range h.Collections {
				if col == name {
					ok = true
					break
				}
			}
			if !ok {
				notFound(c)
				return
			}
		}
		next(c)
	}
}

func (h *Handler) list(c *gin.Context) {
	recs, err := h.Repo.List(c.Request.Context(), c.Param("collection"))
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *Handler) get(c *gin.Context) {
	rec, err := h.Repo.Get(c.Request.Context(), c.Param("collection"), c.Param("id"))
	if err != nil {
		serverError(c, err)
		return
	}
	if rec == nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) create(c *gin.Context) {
	rec, ok := bindRecord(c)
	if !ok {
		return
	}
	delete(rec, "id")
	saved, err := h.Repo.Create(c.Request.Context(), c.Param("collection"), rec)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) update(c *gin.Context) {
	rec, ok := bindRecord(c)
	if !ok {
		return
	}
	saved, err := h.Repo.Update(c.Request.Context(), c.Param("collection"), c.Param("id"), rec)
	if err != nil {
		serverError(c, err)
		return
	}
	if saved == nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) remove(c *gin.Context) {
	old, err := h.Repo.Delete(c.Request.Context(), c.Param("collection"), c.Param("id"))
	if err != nil {
		serverError(c, err)
		return
	}
	if old == nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, old)
}

func bindRecord(c *gin.Context) (Record, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, "invalid body")
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil || rec == nil {
		c.JSON(http.StatusBadRequest, "invalid json")
		return nil, false
	}
	return rec, true
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, "Not found")
}

func serverError(c *gin.Context, err error) {
	log.Printf("[mockapi] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, "internal error")
}
