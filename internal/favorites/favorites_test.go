package favorites

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"testing"

	"animehub/internal/apperror"
	"animehub/pkg/models"
)

type fakeSession struct {
	user    *models.User
	updates int
	err     error
}

func (f *fakeSession) Current() (models.User, bool) {
	if f.user == nil {
		return models.User{}, false
	}
	return f.user.Apply(models.UserPatch{}), true
}

func (f *fakeSession) UpdateCurrentUser(_ context.Context, p models.UserPatch) error {
	f.updates++
	if f.err != nil {
		return f.err
	}
	u := f.user.Apply(p)
	f.user = &u
	return nil
}

func TestToggled(t *testing.T) {
	favs := []string{"1", "2"}
	added, on := Toggled(favs, "3")
	if !on || !reflect.DeepEqual(added, []string{"1", "2", "3"}) {
		t.Fatalf("add = %v, %v", added, on)
	}
	removed, on := Toggled(added, "3")
	if on || !reflect.DeepEqual(removed, favs) {
		t.Fatalf("toggle twice should restore the list, got %v, %v", removed, on)
	}
	if !reflect.DeepEqual(favs, []string{"1", "2"}) {
		t.Fatal("input slice modified")
	}
}

func TestToggleRoundTrip(t *testing.T) {
	s := &fakeSession{user: &models.User{ID: "1", UserID: "kim", Favorite: []string{"5"}}}
	m := NewManager(nil)
	ctx := context.Background()

	on, err := m.Toggle(ctx, s, "9")
	if err != nil || !on {
		t.Fatalf("Toggle add = %v, %v", on, err)
	}
	on, err = m.Toggle(ctx, s, "9")
	if err != nil || on {
		t.Fatalf("Toggle remove = %v, %v", on, err)
	}
	if !reflect.DeepEqual(s.user.Favorite, []string{"5"}) {
		t.Fatalf("favorites = %v", s.user.Favorite)
	}

	if err := m.Remove(ctx, s, "5"); err != nil {
		t.Fatal(err)
	}
	if len(s.user.Favorite) != 0 {
		t.Fatalf("favorites = %v", s.user.Favorite)
	}
}

func TestLoginRequired(t *testing.T) {
	s := &fakeSession{}
	m := NewManager(nil)
	if _, err := m.Toggle(context.Background(), s, "1"); !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("Toggle: %v", err)
	}
	if err := m.Remove(context.Background(), s, "1"); !apperror.IsAuth(err) {
		t.Fatalf("Remove: %v", err)
	}
	if s.updates != 0 {
		t.Fatal("no update expected without a user")
	}
}

func TestToggleFailureKeepsState(t *testing.T) {
	s := &fakeSession{user: &models.User{ID: "1", Favorite: []string{"5"}}, err: errors.New("down")}
	on, err := NewManager(nil).Toggle(context.Background(), s, "5")
	if err == nil || !on {
		t.Fatalf("failed toggle should report the unchanged state, got %v, %v", on, err)
	}
}

type fakeDetails struct{}

func (fakeDetails) Detail(_ context.Context, id string) (*models.Anime, error) {
	if id == "bad" {
		return nil, errors.New("boom")
	}
	n, _ := strconv.Atoi(id)
	return &models.Anime{MalID: n, Title: "t" + id}, nil
}

func TestResolve(t *testing.T) {
	got := NewManager(fakeDetails{}).Resolve(context.Background(), []string{"3", "bad", "1", "2", "7", "8"})
	var ids []string
	for _, a := range got {
		ids = append(ids, a.ID())
	}
	if !reflect.DeepEqual(ids, []string{"3", "1", "2", "7", "8"}) {
		t.Fatalf("ids = %v", ids)
	}
	if len(NewManager(fakeDetails{}).Resolve(context.Background(), nil)) != 0 {
		t.Fatal("expected empty result")
	}
}
