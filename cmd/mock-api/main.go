package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	"animehub/internal/mockapi"
	"animehub/pkg/database"
)

// serves the user and review collections the web server talks to, e.g.
//
//	ANIMEHUB_USER_API_URL=http://localhost:9000/user_info
//	ANIMEHUB_REVIEW_API_URL=http://localhost:9000/AnimeReview
func main() {
	addr := flag.String("addr", ":9000", "listen address")
	flag.Parse()

	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	mockapi.NewHandler(mockapi.NewRepo(db), "user_info", "AnimeReview").RegisterRoutes(router)

	log.Printf("mock-api listening on http://localhost%s", *addr)
	log.Fatal(router.Run(*addr))
}
