// Package storage is the persistent key/value area behind each browser
// session. Values are opaque strings; namespaces keep sessions apart.
package storage

import (
	"context"
	"fmt"
	"strings"

	"animehub/pkg/database"
)

type Store interface {
	Get(ctx context.Context, namespace, key string) (string, bool, error)
	Set(ctx context.Context, namespace, key, value string) error
	Delete(ctx context.Context, namespace, key string) error
	Close() error
}

// Open picks a backend from dsn:
//
//	memory            process-local map
//	sqlite:<path>     kv table in a SQLite file
//	redis://...       Redis, using the URL's address, password and db
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case dsn == "" || dsn == "memory":
		return NewMemory(), nil
	case strings.HasPrefix(dsn, "sqlite:"):
		db, err := database.Open(database.Config{Path: strings.TrimPrefix(dsn, "sqlite:")})
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return NewSQLite(db), nil
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		return OpenRedis(ctx, dsn)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", dsn)
	}
}
