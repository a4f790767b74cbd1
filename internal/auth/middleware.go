package auth

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"animehub/internal/session"
)

const CtxSessionKey = "session_store"

type CookieConfig struct {
	Name   string
	Secure bool
}

// Session attaches the browser session's store to the request, issuing a new
// signed cookie when the request has none or a bad one. Every request that
// passes through it counts as activity.
func Session(tokens TokenService, sessions *session.Manager, cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sid string
		if raw, err := c.Cookie(cookie.Name); err == nil && raw != "" {
			if claims, err := tokens.Parse(raw); err == nil {
				sid = claims.SessionID
			}
		}

		if sid == "" {
			sid = uuid.NewString()
			signed, exp, err := tokens.Sign(sid)
			if err != nil {
				log.Printf("[auth] sign session cookie: %v", err)
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     cookie.Name,
				Value:    signed,
				Path:     "/",
				Expires:  exp,
				MaxAge:   int(time.Until(exp).Seconds()),
				HttpOnly: true,
				Secure:   cookie.Secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		store := sessions.Get(c.Request.Context(), sid)
		store.Touch()

		c.Set(CtxSessionKey, store)
		c.Next()
	}
}

func MustGetSession(c *gin.Context) *session.Store {
	v, ok := c.Get(CtxSessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Store)
	return s
}

// RequireLogin redirects logged-out visitors to the login page.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := MustGetSession(c)
		if s == nil || !s.LoggedIn() {
			if s != nil {
				s.AddNotice("error", "Please log in first.")
			}
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
