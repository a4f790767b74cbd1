package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"animehub/internal/apperror"
	"animehub/internal/auth"
	"animehub/internal/reviews"
	"animehub/internal/session"
	"animehub/pkg/models"
)

func (h *Handler) detail(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	anime, err := h.Anime.Detail(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if apperror.IsNotFound(err) {
			h.render(c, http.StatusNotFound, "notfound.tmpl", "Not found", gin.H{"What": "anime"})
			return
		}
		h.render(c, http.StatusBadGateway, "error.tmpl", "Error", gin.H{
			"Message": "Failed to load this anime. Please try again.",
		})
		return
	}

	var notices []session.Notice
	list, err := h.Reviews.ListForSubject(ctx, id)
	if err != nil {
		list = []models.Review{}
		notices = append(notices, session.Notice{Kind: "error", Text: "Failed to load reviews."})
	}
	images, _ := h.Reviews.AuthorImages(ctx)

	isFavorite := false
	if s := auth.MustGetSession(c); s != nil {
		if u, ok := s.Current(); ok {
			isFavorite = u.HasFavorite(id)
		}
	}

	h.render(c, http.StatusOK, "detail.tmpl", anime.Title, gin.H{
		"Anime":      anime,
		"Reviews":    list,
		"Images":     images,
		"IsFavorite": isFavorite,
		"Notices":    notices,
	})
}

func (h *Handler) toggleFavorite(c *gin.Context) {
	id := c.Param("id")
	on, err := h.Favorites.Toggle(c.Request.Context(), auth.MustGetSession(c), id)
	switch {
	case err != nil:
		notice(c, "error", "Failed to update favorites.")
	case on:
		notice(c, "info", "Added to favorites.")
	default:
		notice(c, "info", "Removed from favorites.")
	}
	redirect(c, "/detail/"+id)
}

type reviewForm struct {
	Title    string `form:"title"`
	Contents string `form:"contents"`
	Rating   int    `form:"rating"`
}

func (h *Handler) createReview(c *gin.Context) {
	id := c.Param("id")
	back := "/detail/" + id + "#reviews"

	var form reviewForm
	if err := c.ShouldBind(&form); err != nil {
		notice(c, "error", "Invalid review.")
		redirect(c, back)
		return
	}

	u, _ := auth.MustGetSession(c).Current()
	_, err := h.Reviews.Create(c.Request.Context(), nil, reviews.Draft{
		SubjectID: id,
		Author:    u.UserID,
		Title:     form.Title,
		Contents:  form.Contents,
		Rating:    form.Rating,
	})
	if err != nil {
		notice(c, "error", userMessage(err, "Failed to post the review."))
		redirect(c, back)
		return
	}
	notice(c, "info", "Review posted.")
	redirect(c, back)
}

// deleteReview removes a review after confirming the caller wrote it.
func (h *Handler) deleteReview(c *gin.Context) {
	next := safeNext(c.PostForm("next"), "/mypage")
	ctx := c.Request.Context()
	u, _ := auth.MustGetSession(c).Current()

	r, err := h.Reviews.Get(ctx, c.Param("id"))
	if err != nil {
		notice(c, "error", "Failed to delete the review.")
		redirect(c, next)
		return
	}
	if r.UserID != u.UserID {
		notice(c, "error", "You can only delete your own reviews.")
		redirect(c, next)
		return
	}
	if err := h.Reviews.Delete(ctx, r.ID); err != nil {
		notice(c, "error", "Failed to delete the review.")
		redirect(c, next)
		return
	}
	notice(c, "info", "Review deleted.")
	redirect(c, next)
}
