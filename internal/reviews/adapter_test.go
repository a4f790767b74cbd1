package reviews

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"animehub/internal/apperror"
	"animehub/pkg/models"
)

type fakeCollection struct {
	mu      sync.Mutex
	reviews []models.Review
	lists   int
	creates int
	deleted []string
	err     error
}

func (f *fakeCollection) List(context.Context) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Review(nil), f.reviews...), nil
}

func (f *fakeCollection) Get(_ context.Context, id string) (*models.Review, error) {
	for _, r := range f.reviews {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, apperror.NewNotFoundError("review not found", nil)
}

func (f *fakeCollection) Create(_ context.Context, r models.Review) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	r.ID = "new"
	f.reviews = append(f.reviews, r)
	return &r, nil
}

func (f *fakeCollection) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeTitles map[string]string

func (f fakeTitles) Title(_ context.Context, id string) (string, error) {
	switch id {
	case "404":
		return "", apperror.NewNotFoundError("anime not found", nil)
	case "500":
		return "", apperror.NewExternalServiceError("down", errors.New("boom"))
	}
	return f[id], nil
}

type fakeProfiles []models.User

func (f fakeProfiles) List(context.Context) ([]models.User, error) { return f, nil }

func sample() *fakeCollection {
	return &fakeCollection{reviews: []models.Review{
		{ID: "1", UserID: "kim", AnimeID: "20", Time: 100, Title: "old"},
		{ID: "2", UserID: "lee", AnimeID: "20", Time: 300, Title: "new"},
		{ID: "3", UserID: "kim", AnimeID: "21", Time: 200},
		{ID: "4", UserID: "kim", AnimeID: "404", Time: 50},
		{ID: "5", UserID: "kim", AnimeID: "500", Time: 10},
	}}
}

func TestListForSubject(t *testing.T) {
	a := NewAdapter(sample(), nil, nil)
	got, err := a.ListForSubject(context.Background(), "20")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "2" || got[1].ID != "1" {
		t.Fatalf("got %+v", got)
	}

	none, err := a.ListForSubject(context.Background(), "99")
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("empty subject = %v, %v", none, err)
	}
}

func TestCreateRejectsWithoutRemoteCall(t *testing.T) {
	col := sample()
	a := NewAdapter(col, nil, nil)
	ctx := context.Background()
	existing, _ := a.ListForSubject(ctx, "20")
	col.lists = 0

	cases := []struct {
		name string
		d    Draft
		want func(error) bool
	}{
		{"empty title", Draft{SubjectID: "20", Author: "park", Title: " ", Contents: "x", Rating: 5}, apperror.IsValidation},
		{"empty body", Draft{SubjectID: "20", Author: "park", Title: "x", Contents: "", Rating: 5}, apperror.IsValidation},
		{"rating low", Draft{SubjectID: "20", Author: "park", Title: "x", Contents: "y", Rating: 0}, apperror.IsValidation},
		{"rating high", Draft{SubjectID: "20", Author: "park", Title: "x", Contents: "y", Rating: 11}, apperror.IsValidation},
		{"duplicate", Draft{SubjectID: "20", Author: "kim", Title: "x", Contents: "y", Rating: 5}, apperror.IsConflict},
	}
	for _, c := range cases {
		_, err := a.Create(ctx, existing, c.d)
		if !c.want(err) {
			t.Errorf("%s: unexpected error %v", c.name, err)
		}
	}
	if col.creates != 0 || col.lists != 0 {
		t.Fatalf("rejected drafts made remote calls: creates=%d lists=%d", col.creates, col.lists)
	}
}

func TestCreate(t *testing.T) {
	col := sample()
	a := NewAdapter(col, nil, nil)
	a.Now = func() time.Time { return time.Unix(999, 0) }

	r, err := a.Create(context.Background(), nil, Draft{SubjectID: "20", Author: "park", Title: " Great ", Contents: "loved it", Rating: 9})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if col.lists != 1 {
		t.Errorf("nil existing list should be fetched once, lists=%d", col.lists)
	}
	if r.Title != "Great" || r.Time != 999 || r.AnimeID != "20" || r.UserID != "park" || r.Rating != 9 {
		t.Errorf("created = %+v", r)
	}

	// duplicate found through the fetched list
	if _, err := a.Create(context.Background(), nil, Draft{SubjectID: "20", Author: "park", Title: "a", Contents: "b", Rating: 1}); !apperror.IsConflict(err) {
		t.Errorf("second review: got %v", err)
	}
}

func TestListForAuthor(t *testing.T) {
	a := NewAdapter(sample(), fakeTitles{"20": "Bebop", "21": ""}, nil)
	got, err := a.ListForAuthor(context.Background(), "kim")
	if err != nil {
		t.Fatal(err)
	}
	want := []struct{ id, title string }{
		{"3", UnknownTitle},
		{"1", "Bebop"},
		{"4", UnknownTitle},
		{"5", FailedTitle},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d reviews", len(got))
	}
	for i, w := range want {
		if got[i].ID != w.id || got[i].AnimeTitle != w.title {
			t.Errorf("[%d] = %s %q, want %s %q", i, got[i].ID, got[i].AnimeTitle, w.id, w.title)
		}
	}
}

func TestListFailure(t *testing.T) {
	col := &fakeCollection{err: apperror.NewExternalServiceError("down", nil)}
	a := NewAdapter(col, nil, nil)
	if _, err := a.ListForAuthor(context.Background(), "kim"); !apperror.IsExternal(err) {
		t.Fatalf("got %v", err)
	}
	if _, err := a.ListForSubject(context.Background(), "1"); !apperror.IsExternal(err) {
		t.Fatalf("got %v", err)
	}
}

func TestAuthorImagesAndDelete(t *testing.T) {
	col := sample()
	a := NewAdapter(col, nil, fakeProfiles{{UserID: "kim", ProfileImage: "http://k"}})
	imgs, err := a.AuthorImages(context.Background())
	if err != nil || imgs["kim"] != "http://k" {
		t.Fatalf("AuthorImages = %v, %v", imgs, err)
	}

	r, err := a.Get(context.Background(), "2")
	if err != nil || r.UserID != "lee" {
		t.Fatalf("Get = %+v, %v", r, err)
	}
	if err := a.Delete(context.Background(), "2"); err != nil || len(col.deleted) != 1 {
		t.Fatalf("Delete: %v, %v", err, col.deleted)
	}
}
