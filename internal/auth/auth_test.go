package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"animehub/internal/session"
	"animehub/internal/storage"
)

func testTokens() TokenService {
	return TokenService{Secret: []byte("test-secret"), Issuer: "animehub", Duration: time.Hour}
}

func TestSignParse(t *testing.T) {
	ts := testTokens()
	tok, exp, err := ts.Sign("abc")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatal("expiry in the past")
	}
	claims, err := ts.Parse(tok)
	if err != nil || claims.SessionID != "abc" {
		t.Fatalf("Parse = %+v, %v", claims, err)
	}

	other := TokenService{Secret: []byte("other"), Issuer: "animehub", Duration: time.Hour}
	if _, err := other.Parse(tok); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}

	expired := TokenService{Secret: ts.Secret, Issuer: "animehub", Duration: -time.Minute}
	old, _, _ := expired.Sign("abc")
	if _, err := ts.Parse(old); err == nil {
		t.Fatal("expired token must not parse")
	}
}

func newRouter() (*gin.Engine, *session.Manager) {
	gin.SetMode(gin.TestMode)
	m := session.NewManager(nil, storage.NewMemory(), nil, time.Hour)
	r := gin.New()
	r.Use(Session(testTokens(), m, CookieConfig{Name: "animehub_session"}))
	r.GET("/who", func(c *gin.Context) {
		c.String(http.StatusOK, MustGetSession(c).ID())
	})
	r.GET("/private", RequireLogin(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r, m
}

func TestSessionCookie(t *testing.T) {
	r, m := newRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || !cookies[0].HttpOnly {
		t.Fatalf("expected one http-only cookie, got %+v", cookies)
	}
	first := w.Body.String()

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != first {
		t.Fatalf("cookie did not resume session: %q vs %q", w.Body.String(), first)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("valid cookie should not be reissued")
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d", m.Len())
	}

	req = httptest.NewRequest(http.MethodGet, "/who", nil)
	req.AddCookie(&http.Cookie{Name: "animehub_session", Value: "forged"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() == first || len(w.Result().Cookies()) != 1 {
		t.Error("forged cookie must start a new session")
	}
}

func TestRequireLogin(t *testing.T) {
	r, _ := newRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
		t.Fatalf("status = %d, location = %q", w.Code, w.Header().Get("Location"))
	}
}
