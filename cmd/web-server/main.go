package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	"animehub/internal/auth"
	"animehub/internal/catalog"
	"animehub/internal/crud"
	"animehub/internal/events"
	"animehub/internal/favorites"
	"animehub/internal/jikan"
	"animehub/internal/reviews"
	"animehub/internal/session"
	"animehub/internal/storage"
	"animehub/internal/web"
	"animehub/pkg/models"
	"animehub/pkg/utils"
)

const (
	sweepInterval = 5 * time.Minute
	sessionMaxAge = 24 * time.Hour
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("storage open failed: %v", err)
	}
	defer store.Close()

	timeout := cfg.Services.HTTPTimeout
	anime := jikan.NewClient(cfg.Services.JikanURL, timeout)
	users := crud.NewResource[models.User]("user", cfg.Services.UserURL, timeout)
	revs := crud.NewResource[models.Review]("review", cfg.Services.ReviewURL, timeout)

	hub := events.NewHub()
	sessions := session.NewManager(users, store, hub, cfg.IdleTimeout)

	tokens := auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTDuration,
	}
	sessionMW := auth.Session(tokens, sessions, auth.CookieConfig{
		Name:   cfg.Auth.CookieName,
		Secure: cfg.Auth.Secure,
	})

	h := web.NewHandler(
		catalog.NewService(anime),
		anime,
		reviews.NewAdapter(revs, anime, users),
		favorites.NewManager(anime),
		sessions,
		hub,
	)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := web.NewRouter(h, sessionMW)
	if err != nil {
		log.Fatalf("load templates failed: %v", err)
	}
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		sessions.Run(ctx, sweepInterval, sessionMaxAge)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("web server listening on %s (storage=%s, idle=%s)", cfg.Addr, cfg.Storage, cfg.IdleTimeout)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("server stopped")
}
