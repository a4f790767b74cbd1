// Package favorites edits the current user's favorite list. All writes go
// through the session's full-record update.
package favorites

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"animehub/internal/apperror"
	"animehub/pkg/models"
)

const resolveLimit = 4

var ErrLoginRequired = apperror.NewAuthError("login required")

// Updater is the logged-in session.
type Updater interface {
	Current() (models.User, bool)
	UpdateCurrentUser(ctx context.Context, p models.UserPatch) error
}

// Details looks up one anime.
type Details interface {
	Detail(ctx context.Context, id string) (*models.Anime, error)
}

type Manager struct {
	Details Details
}

func NewManager(d Details) *Manager {
	return &Manager{Details: d}
}

// Toggled returns favs with id added when absent or removed when present,
// and whether id is a favorite afterwards. favs is not modified.
func Toggled(favs []string, id string) ([]string, bool) {
	for _, f := range favs {
		if f == id {
			return Without(favs, id), false
		}
	}
	out := make([]string, 0, len(favs)+1)
	out = append(out, favs...)
	return append(out, id), true
}

// Without returns favs minus every occurrence of id.
func Without(favs []string, id string) []string {
	out := make([]string, 0, len(favs))
	for _, f := range favs {
		if f != id {
			out = append(out, f)
		}
	}
	return out
}

// Toggle flips subjectID in the user's favorites and reports the new state.
func (m *Manager) Toggle(ctx context.Context, u Updater, subjectID string) (bool, error) {
	cur, ok := u.Current()
	if !ok {
		return false, ErrLoginRequired
	}
	next, added := Toggled(cur.Favorite, subjectID)
	if err := u.UpdateCurrentUser(ctx, models.UserPatch{Favorite: &next}); err != nil {
		return cur.HasFavorite(subjectID), err
	}
	return added, nil
}

func (m *Manager) Remove(ctx context.Context, u Updater, subjectID string) error {
	cur, ok := u.Current()
	if !ok {
		return ErrLoginRequired
	}
	next := Without(cur.Favorite, subjectID)
	return u.UpdateCurrentUser(ctx, models.UserPatch{Favorite: &next})
}

// Resolve looks up each id, keeping the input order. Ids that fail to load
// are left out.
func (m *Manager) Resolve(ctx context.Context, ids []string) []models.Anime {
	found := make([]*models.Anime, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveLimit)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			a, err := m.Details.Detail(gctx, id)
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("[favorites] resolve %s: %v", id, err)
				}
				return nil
			}
			found[i] = a
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.Anime, 0, len(ids))
	for _, a := range found {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out
}
