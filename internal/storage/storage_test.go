package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "a", "user"); err != nil || ok {
		t.Fatalf("empty Get = %v, %v", ok, err)
	}
	if err := s.Set(ctx, "a", "user", `{"userid":"kim"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "b", "user", `{"userid":"lee"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "a", "user", `{"userid":"park"}`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	v, ok, err := s.Get(ctx, "a", "user")
	if err != nil || !ok || v != `{"userid":"park"}` {
		t.Fatalf("Get a = %q, %v, %v", v, ok, err)
	}
	v, _, _ = s.Get(ctx, "b", "user")
	if v != `{"userid":"lee"}` {
		t.Fatalf("namespaces leaked: b = %q", v)
	}

	if err := s.Delete(ctx, "a", "user"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "a", "user"); err != nil {
		t.Fatalf("Delete twice: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "a", "user"); ok {
		t.Fatal("value still present after Delete")
	}
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	s, err := Open(context.Background(), "sqlite:"+filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	exercise(t, s)
}

func TestRedis(t *testing.T) {
	url := os.Getenv("ANIMEHUB_TEST_REDIS")
	if url == "" {
		t.Skip("ANIMEHUB_TEST_REDIS not set")
	}
	s, err := Open(context.Background(), url)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	exercise(t, s)
}

func TestOpenUnknown(t *testing.T) {
	if _, err := Open(context.Background(), "etcd://x"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
