package mockapi

import (
	"context"
	"testing"

	"animehub/pkg/database"
)

func newRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := database.Open(database.Config{Path: "file:" + t.Name() + "?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewRepo(db)
}

func TestCreateNeverReusesDeletedIDs(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, "AnimeReview", Record{"title": "a"})
	if err != nil {
		t.Fatalf("Create a: %v", err)
	}
	b, err := repo.Create(ctx, "AnimeReview", Record{"title": "b"})
	if err != nil {
		t.Fatalf("Create b: %v", err)
	}
	if old, err := repo.Delete(ctx, "AnimeReview", b["id"].(string)); err != nil || old == nil {
		t.Fatalf("Delete b = %v, %v", old, err)
	}
	c, err := repo.Create(ctx, "AnimeReview", Record{"title": "c"})
	if err != nil {
		t.Fatalf("Create c: %v", err)
	}

	if a["id"] != "1" || b["id"] != "2" || c["id"] != "3" {
		t.Fatalf("ids a=%v b=%v c=%v", a["id"], b["id"], c["id"])
	}

	// other collections count on their own
	u, err := repo.Create(ctx, "user_info", Record{"userid": "kim"})
	if err != nil || u["id"] != "1" {
		t.Fatalf("user_info Create = %v, %v", u, err)
	}
}

func TestUpdateReplacesWholeRecord(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	rec, err := repo.Create(ctx, "user_info", Record{"userid": "kim", "email": "kim@example.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := rec["id"].(string)

	saved, err := repo.Update(ctx, "user_info", id, Record{"userid": "kim2", "id": "999"})
	if err != nil || saved == nil {
		t.Fatalf("Update = %v, %v", saved, err)
	}

	got, err := repo.Get(ctx, "user_info", id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got["userid"] != "kim2" || got["id"] != id {
		t.Fatalf("got = %v", got)
	}
	if _, ok := got["email"]; ok {
		t.Fatalf("email should be gone after a full replace: %v", got)
	}

	missing, err := repo.Update(ctx, "user_info", "42", Record{"userid": "x"})
	if err != nil || missing != nil {
		t.Fatalf("Update missing = %v, %v", missing, err)
	}
}
