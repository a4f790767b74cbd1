// Package mockapi is a small stand-in for the hosted collection service the
// app talks to. Records are JSON objects stored per collection in SQLite;
// ids are sequential numeric strings.
package mockapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

type Record map[string]any

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) List(ctx context.Context, collection string) ([]Record, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT body FROM records
		WHERE collection = ?
		ORDER BY seq ASC
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		rec, err := decode(body)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Get returns nil, nil when the record does not exist.
func (r *Repo) Get(ctx context.Context, collection, id string) (Record, error) {
	return get(ctx, r.DB, collection, id)
}

// Create stores rec under the next id and returns it with "id" set. Ids of
// deleted records are never handed out again.
func (r *Repo) Create(ctx context.Context, collection string, rec Record) (Record, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq int64
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO seqs (collection, last_id) VALUES (?, 1)
		ON CONFLICT(collection) DO UPDATE SET last_id = last_id + 1
		RETURNING last_id
	`, collection).Scan(&seq); err != nil {
		return nil, fmt.Errorf("next seq: %w", err)
	}

	out := clone(rec)
	out["id"] = strconv.FormatInt(seq, 10)
	body, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO records (collection, id, seq, body) VALUES (?, ?, ?, ?)
	`, collection, out["id"], seq, string(body)); err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// Update replaces the stored record with rec, keeping only its id. It
// returns nil, nil when the record does not exist.
func (r *Repo) Update(ctx context.Context, collection, id string, rec Record) (Record, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := get(ctx, tx, collection, id)
	if err != nil || cur == nil {
		return nil, err
	}
	out := clone(rec)
	out["id"] = id

	body, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE records SET body = ? WHERE collection = ? AND id = ?
	`, string(body), collection, id); err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// Delete removes a record and returns what was stored, or nil, nil when it
// did not exist.
func (r *Repo) Delete(ctx context.Context, collection, id string) (Record, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := get(ctx, tx, collection, id)
	if err != nil || cur == nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM records WHERE collection = ? AND id = ?
	`, collection, id); err != nil {
		return nil, fmt.Errorf("delete record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return cur, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func get(ctx context.Context, q queryer, collection, id string) (Record, error) {
	var body string
	err := q.QueryRowContext(ctx, `
		SELECT body FROM records WHERE collection = ? AND id = ?
	`, collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return decode(body)
}

func decode(body string) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

func clone(rec Record) Record {
	out := make(Record, len(rec)+1)
	for k, v := range rec {
		out[k] = v
	}
	return out
}
