// Package web renders the site: the anime list, detail pages with reviews,
// and the account pages. Handlers follow post/redirect/get; results of a
// POST reach the next page as session notices.
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"animehub/internal/apperror"
	"animehub/internal/auth"
	"animehub/internal/catalog"
	"animehub/internal/events"
	"animehub/internal/favorites"
	"animehub/internal/reviews"
	"animehub/internal/session"
	"animehub/pkg/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Details looks up a single anime.
type Details interface {
	Detail(ctx context.Context, id string) (*models.Anime, error)
}

type Handler struct {
	Catalog   *catalog.Service
	Anime     Details
	Reviews   *reviews.Adapter
	Favorites *favorites.Manager
	Sessions  *session.Manager
	Hub       *events.Hub
}

func NewHandler(cat *catalog.Service, anime Details, rv *reviews.Adapter, fav *favorites.Manager, sessions *session.Manager, hub *events.Hub) *Handler {
	return &Handler{
		Catalog:   cat,
		Anime:     anime,
		Reviews:   rv,
		Favorites: fav,
		Sessions:  sessions,
		Hub:       hub,
	}
}

func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"date": func(unix int64) string {
			return time.Unix(unix, 0).Format("2006-01-02")
		},
		"label": catalog.Label,
		"seq": func(from, to int) []int {
			var out []int
			for i := from; i >= to; i-- {
				out = append(out, i)
			}
			return out
		},
	}).ParseFS(templateFS, "templates/*.tmpl")
}

// NewRouter wires every page. sessionMW attaches the browser session.
func NewRouter(h *Handler, sessionMW gin.HandlerFunc) (*gin.Engine, error) {
	tmpl, err := Templates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.SetHTMLTemplate(tmpl)

	r.GET("/health", h.health)

	pages := r.Group("/")
	pages.Use(sessionMW)
	h.RegisterRoutes(pages)
	return r, nil
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.list)
	rg.GET("/search", h.search)
	rg.GET("/filter", h.filter)
	rg.GET("/jump", h.jump)

	rg.GET("/detail/:id", h.detail)
	rg.POST("/detail/:id/favorite", auth.RequireLogin(), h.toggleFavorite)
	rg.POST("/detail/:id/reviews", auth.RequireLogin(), h.createReview)
	rg.POST("/reviews/:id/delete", auth.RequireLogin(), h.deleteReview)

	rg.GET("/login", h.loginPage)
	rg.POST("/login", h.login)
	rg.GET("/signup", h.signupPage)
	rg.POST("/signup", h.signup)
	rg.POST("/logout", h.logout)

	rg.GET("/mypage", auth.RequireLogin(), h.mypage)
	rg.POST("/mypage/image", auth.RequireLogin(), h.updateImage)
	rg.POST("/mypage/favorites/:id/remove", auth.RequireLogin(), h.removeFavorite)

	rg.GET("/edit-profile", auth.RequireLogin(), h.editProfilePage)
	rg.POST("/edit-profile/verify", auth.RequireLogin(), h.verifyPassword)
	rg.POST("/edit-profile", auth.RequireLogin(), h.editProfile)

	if h.Hub != nil {
		rg.GET("/ws", events.WSHandler(h.Hub, currentActivity))
	}
}

func (h *Handler) health(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if h.Sessions != nil {
		body["sessions"] = h.Sessions.Len()
	}
	if h.Hub != nil {
		body["sockets"] = h.Hub.Stats().Sockets
	}
	c.JSON(http.StatusOK, body)
}

func currentActivity(c *gin.Context) events.Activity {
	s := auth.MustGetSession(c)
	if s == nil {
		return nil
	}
	return s
}

// render adds the fields every page needs: the logged-in user and any
// queued notices.
func (h *Handler) render(c *gin.Context, status int, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	if s := auth.MustGetSession(c); s != nil {
		if u, ok := s.Current(); ok {
			data["User"] = &u
		}
		notices := s.Notices()
		if extra, ok := data["Notices"].([]session.Notice); ok {
			notices = append(notices, extra...)
		}
		data["Notices"] = notices
	}
	c.HTML(status, name, data)
}

func notice(c *gin.Context, kind, text string) {
	if s := auth.MustGetSession(c); s != nil {
		s.AddNotice(kind, text)
	}
}

func redirect(c *gin.Context, to string) {
	c.Redirect(http.StatusSeeOther, to)
}

// safeNext keeps redirects on this site.
func safeNext(next, fallback string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\") {
		return next
	}
	return fallback
}

// userMessage shows input and ownership problems as they are and hides
// service failures behind fallback.
func userMessage(err error, fallback string) string {
	switch apperror.TypeOf(err) {
	case apperror.ValidationError, apperror.ConflictError, apperror.AuthError, apperror.ForbiddenError:
		return apperror.Message(err, fallback)
	default:
		return fallback
	}
}
