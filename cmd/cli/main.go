package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/joho/godotenv/autoload"

	"animehub/internal/catalog"
	"animehub/internal/crud"
	"animehub/internal/favorites"
	"animehub/internal/jikan"
	"animehub/internal/pagination"
	"animehub/internal/reviews"
	"animehub/internal/session"
	"animehub/internal/storage"
	"animehub/pkg/models"
	"animehub/pkg/utils"
)

// the CLI keeps its login in one storage namespace
const cliSession = "cli"

type app struct {
	anime     *jikan.Client
	catalog   *catalog.Service
	reviews   *reviews.Adapter
	favorites *favorites.Manager
	session   *session.Store
	store     storage.Store
}

func main() {
	global := flag.NewFlagSet("animehub", flag.ExitOnError)
	statePath := global.String("state", defaultStatePath(), "local state database")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg, *statePath)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer a.store.Close()

	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}
	rest := []string{}
	if len(args) > 2 {
		rest = args[2:]
	}

	switch cmd {
	case "anime":
		a.handleAnime(ctx, sub, rest)
	case "reviews":
		a.handleReviews(ctx, sub, rest)
	case "account":
		a.handleAccount(ctx, sub, rest)
	case "favorites":
		a.handleFavorites(ctx, sub, rest)
	default:
		printUsage()
		os.Exit(1)
	}
}

func newApp(ctx context.Context, cfg *utils.Config, statePath string) (*app, error) {
	store, err := storage.Open(ctx, "sqlite:"+statePath)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Services.HTTPTimeout
	anime := jikan.NewClient(cfg.Services.JikanURL, timeout)
	users := crud.NewResource[models.User]("user", cfg.Services.UserURL, timeout)
	revs := crud.NewResource[models.Review]("review", cfg.Services.ReviewURL, timeout)

	sess := session.NewStore(cliSession, users, store, nil, cfg.IdleTimeout)
	if err := sess.Restore(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	return &app{
		anime:     anime,
		catalog:   catalog.NewService(anime),
		reviews:   reviews.NewAdapter(revs, anime, users),
		favorites: favorites.NewManager(anime),
		session:   sess,
		store:     store,
	}, nil
}

func (a *app) handleAnime(ctx context.Context, sub string, args []string) {
	switch sub {
	case "top", "search":
		fs := flag.NewFlagSet("anime "+sub, flag.ExitOnError)
		q := fs.String("q", "", "search term")
		genre := fs.String("genre", "", "genre id")
		rating := fs.String("rating", "", "age rating (g, pg, pg13, r17, r)")
		sort := fs.String("sort", "", "sort (title, score)")
		page := fs.Int("page", 1, "page number")
		out := fs.String("out", "", "write results to a .json or .csv file instead of printing")
		_ = fs.Parse(args)

		query := catalog.Query{}.Reset()
		if sub == "search" {
			query = query.WithSearch(*q).WithFilters(*genre, *rating, *sort)
		}
		query = query.WithPage(*page)

		res, err := a.catalog.Load(ctx, query)
		if err != nil {
			log.Fatalf("%s failed: %v", sub, err)
		}
		if *out != "" {
			if err := export(*out, res.Data); err != nil {
				log.Fatalf("export failed: %v", err)
			}
			log.Printf("✅ exported %d titles to %s", len(res.Data), *out)
			return
		}
		printPage(res)
	case "show":
		fs := flag.NewFlagSet("anime show", flag.ExitOnError)
		id := fs.String("id", "", "anime id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("anime id is required")
		}
		res, err := a.anime.Detail(ctx, *id)
		if err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(res)
	default:
		log.Fatal("usage: animehub anime <top|search|show>")
	}
}

func (a *app) handleReviews(ctx context.Context, sub string, args []string) {
	switch sub {
	case "list":
		fs := flag.NewFlagSet("reviews list", flag.ExitOnError)
		id := fs.String("anime", "", "anime id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("anime id is required")
		}
		list, err := a.reviews.ListForSubject(ctx, *id)
		if err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(list)
	case "by":
		fs := flag.NewFlagSet("reviews by", flag.ExitOnError)
		user := fs.String("user", "", "author id (default: logged-in user)")
		_ = fs.Parse(args)
		if *user == "" {
			*user = a.mustUser().UserID
		}
		list, err := a.reviews.ListForAuthor(ctx, *user)
		if err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(list)
	case "post":
		fs := flag.NewFlagSet("reviews post", flag.ExitOnError)
		id := fs.String("anime", "", "anime id")
		title := fs.String("title", "", "review title")
		contents := fs.String("contents", "", "review text")
		rating := fs.Int("rating", 10, "rating 1-10")
		_ = fs.Parse(args)

		u := a.mustUser()
		r, err := a.reviews.Create(ctx, nil, reviews.Draft{
			SubjectID: *id,
			Author:    u.UserID,
			Title:     *title,
			Contents:  *contents,
			Rating:    *rating,
		})
		if err != nil {
			log.Fatalf("post failed: %v", err)
		}
		printJSON(r)
	case "delete":
		fs := flag.NewFlagSet("reviews delete", flag.ExitOnError)
		id := fs.String("id", "", "review id")
		_ = fs.Parse(args)

		u := a.mustUser()
		r, err := a.reviews.Get(ctx, *id)
		if err != nil {
			log.Fatalf("delete failed: %v", err)
		}
		if r.UserID != u.UserID {
			log.Fatal("you can only delete your own reviews")
		}
		if err := a.reviews.Delete(ctx, *id); err != nil {
			log.Fatalf("delete failed: %v", err)
		}
		fmt.Println("✅ review deleted")
	default:
		log.Fatal("usage: animehub reviews <list|by|post|delete>")
	}
}

func (a *app) handleAccount(ctx context.Context, sub string, args []string) {
	switch sub {
	case "login":
		fs := flag.NewFlagSet("account login", flag.ExitOnError)
		id := fs.String("id", "", "user id")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)
		if *id == "" || *password == "" {
			log.Fatal("id and password are required")
		}
		if err := a.session.Login(ctx, *id, *password); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		fmt.Println("✅ logged in")
	case "signup":
		fs := flag.NewFlagSet("account signup", flag.ExitOnError)
		id := fs.String("id", "", "user id")
		password := fs.String("password", "", "password")
		email := fs.String("email", "", "email address")
		image := fs.String("image", "", "profile image URL")
		_ = fs.Parse(args)
		if *id == "" || *password == "" {
			log.Fatal("id and password are required")
		}
		if !strings.Contains(*email, "@") {
			log.Fatal("a valid email is required")
		}
		if err := a.session.Signup(ctx, *id, *password, *email, *image); err != nil {
			log.Fatalf("signup failed: %v", err)
		}
		fmt.Println("✅ signed up, now run: animehub account login")
	case "logout":
		a.session.Logout(ctx)
		fmt.Println("✅ logged out")
	case "whoami":
		u := a.mustUser()
		u.Password = ""
		printJSON(u)
	default:
		log.Fatal("usage: animehub account <login|signup|logout|whoami>")
	}
}

func (a *app) handleFavorites(ctx context.Context, sub string, args []string) {
	switch sub {
	case "list":
		u := a.mustUser()
		for _, an := range a.favorites.Resolve(ctx, u.Favorite) {
			fmt.Printf("%6d  %s\n", an.MalID, an.Title)
		}
	case "toggle", "remove":
		fs := flag.NewFlagSet("favorites "+sub, flag.ExitOnError)
		id := fs.String("anime", "", "anime id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("anime id is required")
		}
		if sub == "remove" {
			if err := a.favorites.Remove(ctx, a.session, *id); err != nil {
				log.Fatalf("remove failed: %v", err)
			}
			fmt.Println("✅ removed")
			return
		}
		on, err := a.favorites.Toggle(ctx, a.session, *id)
		if err != nil {
			log.Fatalf("toggle failed: %v", err)
		}
		if on {
			fmt.Println("✅ added to favorites")
		} else {
			fmt.Println("✅ removed from favorites")
		}
	default:
		log.Fatal("usage: animehub favorites <list|toggle|remove>")
	}
}

func (a *app) mustUser() models.User {
	u, ok := a.session.Current()
	if !ok {
		log.Fatal("not logged in, run: animehub account login")
	}
	return u
}

func printPage(p *models.AnimePage) {
	for _, an := range p.Data {
		score := "-"
		if an.Score > 0 {
			score = strconv.FormatFloat(an.Score, 'f', 2, 64)
		}
		fmt.Printf("%6d  %-5s  %s\n", an.MalID, score, an.Title)
	}
	nav := pagination.NewNav(p.Pagination)
	pages := make([]string, 0, len(nav.Pages))
	for _, n := range nav.Pages {
		if n == nav.Current {
			pages = append(pages, "["+strconv.Itoa(n)+"]")
		} else {
			pages = append(pages, strconv.Itoa(n))
		}
	}
	fmt.Printf("\npage %s of %d\n", strings.Join(pages, " "), nav.Last)
}

func export(path string, items []models.Anime) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return writeCSV(path, items)
	case ".json":
		return writeJSON(path, items)
	default:
		return fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}
}

func writeJSON(path string, items []models.Anime) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func writeCSV(path string, items []models.Anime) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{
		"mal_id", "title", "score", "year", "status", "rating", "genres", "url",
	}); err != nil {
		return err
	}
	for _, item := range items {
		if err := writer.Write([]string{
			item.ID(),
			item.Title,
			strconv.FormatFloat(item.Score, 'f', -1, 64),
			strconv.Itoa(item.Year),
			item.Status,
			item.Rating,
			item.GenreNames(),
			item.URL,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.animehub-cli.db"
	}
	return filepath.Join(home, ".animehub", "cli.db")
}

func printUsage() {
	fmt.Println("animehub [-state path] <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  anime top|search|show")
	fmt.Println("  reviews list|by|post|delete")
	fmt.Println("  account login|signup|logout|whoami")
	fmt.Println("  favorites list|toggle|remove")
}
