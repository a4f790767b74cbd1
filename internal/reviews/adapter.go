// Package reviews reads and writes reviews in the remote review collection.
// An author has at most one review per anime; that rule is checked here
// before anything is posted.
package reviews

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"animehub/internal/apperror"
	"animehub/pkg/models"
)

const (
	UnknownTitle = "Unknown anime"
	FailedTitle  = "Failed to load"

	resolveLimit = 4
)

// Collection is the remote review collection.
type Collection interface {
	List(ctx context.Context) ([]models.Review, error)
	Get(ctx context.Context, id string) (*models.Review, error)
	Create(ctx context.Context, r models.Review) (*models.Review, error)
	Delete(ctx context.Context, id string) error
}

// Titles resolves an anime id to its display title.
type Titles interface {
	Title(ctx context.Context, id string) (string, error)
}

// Profiles is the remote user collection, used for review avatars.
type Profiles interface {
	List(ctx context.Context) ([]models.User, error)
}

type Adapter struct {
	Reviews  Collection
	Titles   Titles
	Profiles Profiles
	Now      func() time.Time

	validate *validator.Validate
}

func NewAdapter(reviews Collection, titles Titles, profiles Profiles) *Adapter {
	return &Adapter{
		Reviews:  reviews,
		Titles:   titles,
		Profiles: profiles,
		Now:      time.Now,
		validate: validator.New(),
	}
}

// Draft is a review as typed into the form.
type Draft struct {
	SubjectID string `validate:"required"`
	Author    string `validate:"required"`
	Title     string `validate:"required"`
	Contents  string `validate:"required"`
	Rating    int    `validate:"min=1,max=10"`
}

// ListForSubject returns the reviews of one anime, newest first.
func (a *Adapter) ListForSubject(ctx context.Context, subjectID string) ([]models.Review, error) {
	all, err := a.Reviews.List(ctx)
	if err != nil {
		log.Printf("[reviews] list for %s: %v", subjectID, err)
		return nil, err
	}
	out := make([]models.Review, 0)
	for _, r := range all {
		if r.AnimeID.String() == subjectID {
			out = append(out, r)
		}
	}
	newestFirst(out)
	return out, nil
}

// Create posts d. existing is the subject's current review list as already
// shown to the author; when nil it is fetched first.
func (a *Adapter) Create(ctx context.Context, existing []models.Review, d Draft) (*models.Review, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Contents = strings.TrimSpace(d.Contents)
	if err := a.validate.Struct(d); err != nil {
		return nil, draftError(err)
	}

	if existing == nil {
		var err error
		if existing, err = a.ListForSubject(ctx, d.SubjectID); err != nil {
			return nil, err
		}
	}
	for _, r := range existing {
		if r.UserID == d.Author && r.AnimeID.String() == d.SubjectID {
			return nil, apperror.NewConflictError("you have already reviewed this anime")
		}
	}

	created, err := a.Reviews.Create(ctx, models.Review{
		Title:    d.Title,
		Contents: d.Contents,
		Rating:   d.Rating,
		UserID:   d.Author,
		AnimeID:  models.SubjectID(d.SubjectID),
		Time:     a.Now().Unix(),
	})
	if err != nil {
		log.Printf("[reviews] create for %s by %s: %v", d.SubjectID, d.Author, err)
		return nil, err
	}
	return created, nil
}

// Get fetches one review, used to confirm ownership before a delete.
func (a *Adapter) Get(ctx context.Context, id string) (*models.Review, error) {
	return a.Reviews.Get(ctx, id)
}

func (a *Adapter) Delete(ctx context.Context, id string) error {
	if err := a.Reviews.Delete(ctx, id); err != nil {
		log.Printf("[reviews] delete %s: %v", id, err)
		return err
	}
	return nil
}

// ListForAuthor returns the author's reviews, newest first, each with the
// anime title attached. A title that cannot be resolved gets a placeholder
// instead of failing the list.
func (a *Adapter) ListForAuthor(ctx context.Context, author string) ([]models.AuthoredReview, error) {
	all, err := a.Reviews.List(ctx)
	if err != nil {
		log.Printf("[reviews] list by %s: %v", author, err)
		return nil, err
	}
	mine := make([]models.Review, 0)
	for _, r := range all {
		if r.UserID == author {
			mine = append(mine, r)
		}
	}
	newestFirst(mine)

	out := make([]models.AuthoredReview, len(mine))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveLimit)
	for i, r := range mine {
		i, r := i, r
		out[i].Review = r
		g.Go(func() error {
			title, err := a.Titles.Title(gctx, r.AnimeID.String())
			switch {
			case apperror.IsNotFound(err):
				out[i].AnimeTitle = UnknownTitle
			case err != nil:
				out[i].AnimeTitle = FailedTitle
			case title == "":
				out[i].AnimeTitle = UnknownTitle
			default:
				out[i].AnimeTitle = title
			}
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

// AuthorImages maps author id to profile image URL.
func (a *Adapter) AuthorImages(ctx context.Context) (map[string]string, error) {
	users, err := a.Profiles.List(ctx)
	if err != nil {
		log.Printf("[reviews] author images: %v", err)
		return map[string]string{}, err
	}
	out := make(map[string]string, len(users))
	for _, u := range users {
		out[u.UserID] = u.ProfileImage
	}
	return out, nil
}

func newestFirst(rs []models.Review) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Time > rs[j].Time })
}

func draftError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return apperror.NewValidationError("invalid review")
	}
	switch verrs[0].Field() {
	case "Title", "Contents":
		return apperror.NewValidationError("enter a title and a review")
	case "Rating":
		return apperror.NewValidationError("rating must be between 1 and 10")
	case "Author":
		return apperror.NewAuthError("login required")
	default:
		return apperror.NewValidationError("invalid review")
	}
}
