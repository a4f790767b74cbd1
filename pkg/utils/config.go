package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultJikanURL  = "https://api.jikan.moe/v4"
	DefaultUserURL   = "https://6909a7652d902d0651b4991f.mockapi.io/user_info"
	DefaultReviewURL = "https://6909a7ab2d902d0651b49af9.mockapi.io/AnimeReview"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
	CookieName  string
	Secure      bool
}

type ServiceConfig struct {
	JikanURL    string
	UserURL     string
	ReviewURL   string
	HTTPTimeout time.Duration
}

type Config struct {
	Addr        string
	Storage     string // memory, sqlite:<path> or redis://...
	IdleTimeout time.Duration
	Services    ServiceConfig
	Auth        AuthConfig
}

func LoadAuthConfig() (AuthConfig, error) {
	var errs []string
	cfg := loadAuth(&errs)
	if len(errs) > 0 {
		return cfg, configError(errs)
	}
	return cfg, nil
}

// LoadConfig reads ANIMEHUB_* variables. Every bad value is reported, not
// just the first.
func LoadConfig() (*Config, error) {
	var errs []string

	cfg := &Config{
		Addr:        getEnv("ANIMEHUB_ADDR", ":8080"),
		Storage:     getEnv("ANIMEHUB_STORAGE", "memory"),
		IdleTimeout: getEnvDuration("ANIMEHUB_IDLE_TIMEOUT", 30*time.Minute, &errs),
		Services: ServiceConfig{
			JikanURL:    getEnv("ANIMEHUB_JIKAN_URL", DefaultJikanURL),
			UserURL:     getEnv("ANIMEHUB_USER_API_URL", DefaultUserURL),
			ReviewURL:   getEnv("ANIMEHUB_REVIEW_API_URL", DefaultReviewURL),
			HTTPTimeout: getEnvDuration("ANIMEHUB_HTTP_TIMEOUT", 12*time.Second, &errs),
		},
		Auth: loadAuth(&errs),
	}

	if cfg.IdleTimeout <= 0 {
		errs = append(errs, "ANIMEHUB_IDLE_TIMEOUT must be positive")
	}
	for key, v := range map[string]string{
		"ANIMEHUB_JIKAN_URL":      cfg.Services.JikanURL,
		"ANIMEHUB_USER_API_URL":   cfg.Services.UserURL,
		"ANIMEHUB_REVIEW_API_URL": cfg.Services.ReviewURL,
	} {
		if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
			errs = append(errs, fmt.Sprintf("%s must be an http(s) URL, got '%s'", key, v))
		}
	}

	if len(errs) > 0 {
		return nil, configError(errs)
	}
	return cfg, nil
}

func loadAuth(errs *[]string) AuthConfig {
	secret := os.Getenv("ANIMEHUB_SESSION_SECRET")
	if secret == "" {
		// dev default (change for production)
		secret = "dev-secret-change-me"
	}
	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   getEnv("ANIMEHUB_SESSION_ISSUER", "animehub"),
		JWTDuration: getEnvDuration("ANIMEHUB_SESSION_TTL", 30*24*time.Hour, errs),
		CookieName:  getEnv("ANIMEHUB_COOKIE_NAME", "animehub_session"),
		Secure:      getEnvBool("ANIMEHUB_COOKIE_SECURE", false, errs),
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration, errs *[]string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, v, err))
		return def
	}
	return d
}

func getEnvBool(key string, def bool, errs *[]string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected boolean, got '%s'", key, v))
		return def
	}
	return b
}

func configError(errs []string) error {
	return fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
}
