package utils

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"ANIMEHUB_ADDR", "ANIMEHUB_STORAGE", "ANIMEHUB_IDLE_TIMEOUT", "ANIMEHUB_JIKAN_URL", "ANIMEHUB_HTTP_TIMEOUT", "ANIMEHUB_COOKIE_SECURE"} {
		t.Setenv(k, "")
	}
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Storage != "memory" || cfg.IdleTimeout != 30*time.Minute {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Services.JikanURL != DefaultJikanURL || cfg.Auth.CookieName != "animehub_session" {
		t.Errorf("unexpected service defaults %+v", cfg.Services)
	}
}

func TestLoadConfigCollectsErrors(t *testing.T) {
	t.Setenv("ANIMEHUB_IDLE_TIMEOUT", "soon")
	t.Setenv("ANIMEHUB_HTTP_TIMEOUT", "10")
	t.Setenv("ANIMEHUB_COOKIE_SECURE", "maybe")
	t.Setenv("ANIMEHUB_JIKAN_URL", "ftp://x")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, key := range []string{"ANIMEHUB_IDLE_TIMEOUT", "ANIMEHUB_HTTP_TIMEOUT", "ANIMEHUB_COOKIE_SECURE", "ANIMEHUB_JIKAN_URL"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error does not mention %s: %v", key, err)
		}
	}
}

func TestLoadAuthConfig(t *testing.T) {
	t.Setenv("ANIMEHUB_SESSION_SECRET", "s3cret")
	t.Setenv("ANIMEHUB_SESSION_TTL", "2h")
	cfg, err := LoadAuthConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.JWTSecret != "s3cret" || cfg.JWTDuration != 2*time.Hour || cfg.JWTIssuer != "animehub" {
		t.Errorf("cfg = %+v", cfg)
	}
}
