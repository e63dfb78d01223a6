// Package postgres implements the entity-store port on a single JSONB
// entity table. Transactions run at the serializable level; serialization
// failures surface as domain.ErrConcurrentModification so the caller's
// retry loop can replay.
package postgres

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/askaway/backend/internal/core/domain"
	"github.com/askaway/backend/internal/core/ports"
)

type Store struct {
	db *sql.DB
}

var _ ports.Store = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, key string) (*ports.Entity, error) {
	return getEntity(ctx, s.db, key)
}

func (s *Store) GetMulti(ctx context.Context, keys []string) ([]*ports.Entity, error) {
	query := `SELECT key, kind, group_key, data FROM entities WHERE key = ANY($1)`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("failed to get entities: %w", err)
	}
	defer rows.Close()

	byKey := make(map[string]*ports.Entity, len(keys))
	for rows.Next() {
		var ent ports.Entity
		if err := rows.Scan(&ent.Key, &ent.Kind, &ent.Group, &ent.Data); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		byKey[ent.Key] = &ent
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entities: %w", err)
	}

	out := make([]*ports.Entity, len(keys))
	for i, key := range keys {
		out[i] = byKey[key]
	}
	return out, nil
}

func (s *Store) Put(ctx context.Context, entities ...*ports.Entity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := putEntities(ctx, tx, entities...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, q ports.Query) ([]*ports.Entity, ports.Cursor, error) {
	after, err := decodeCursor(q.Cursor)
	if err != nil {
		return nil, "", err
	}

	var sb strings.Builder
	sb.WriteString(`SELECT key, kind, group_key, data FROM entities WHERE kind = $1`)
	args := []any{q.Kind}
	for _, f := range q.Filters {
		args = append(args, f.Field, f.Value)
		fmt.Fprintf(&sb, ` AND data->>$%d = $%d`, len(args)-1, len(args))
	}
	if after != "" {
		args = append(args, after)
		fmt.Fprintf(&sb, ` AND key > $%d`, len(args))
	}
	sb.WriteString(` ORDER BY key`)
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	var out []*ports.Entity
	for rows.Next() {
		var ent ports.Entity
		if err := rows.Scan(&ent.Key, &ent.Kind, &ent.Group, &ent.Data); err != nil {
			return nil, "", fmt.Errorf("failed to scan entity: %w", err)
		}
		out = append(out, &ent)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("failed to read entities: %w", err)
	}

	next := q.Cursor
	if len(out) > 0 {
		next = encodeCursor(out[len(out)-1].Key)
	}
	return out, next, nil
}

func (s *Store) Transact(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(ctx, &storeTx{tx: sqlTx}); err != nil {
		return translateSerializationError(err)
	}

	if err := sqlTx.Commit(); err != nil {
		return translateSerializationError(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

type storeTx struct {
	tx *sql.Tx
}

func (t *storeTx) Get(ctx context.Context, key string) (*ports.Entity, error) {
	return getEntity(ctx, t.tx, key)
}

func (t *storeTx) Put(ctx context.Context, entities ...*ports.Entity) error {
	return putEntities(ctx, t.tx, entities...)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func getEntity(ctx context.Context, q querier, key string) (*ports.Entity, error) {
	query := `SELECT key, kind, group_key, data FROM entities WHERE key = $1`
	var ent ports.Entity
	err := q.QueryRowContext(ctx, query, key).Scan(&ent.Key, &ent.Kind, &ent.Group, &ent.Data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNoSuchEntity, key)
		}
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	return &ent, nil
}

func putEntities(ctx context.Context, q querier, entities ...*ports.Entity) error {
	query := `
		INSERT INTO entities (key, kind, group_key, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET kind = $2, group_key = $3, data = $4
	`
	for _, ent := range entities {
		if _, err := q.ExecContext(ctx, query, ent.Key, ent.Kind, ent.Group, ent.Data); err != nil {
			return fmt.Errorf("failed to put entity %s: %w", ent.Key, err)
		}
	}
	return nil
}

// Postgres class 40 errors: 40001 serialization_failure, 40P01 deadlock.
func translateSerializationError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && (pqErr.Code == "40001" || pqErr.Code == "40P01") {
		return fmt.Errorf("%w: %v", domain.ErrConcurrentModification, err)
	}
	return err
}

func encodeCursor(lastKey string) ports.Cursor {
	return ports.Cursor(base64.RawURLEncoding.EncodeToString([]byte(lastKey)))
}

func decodeCursor(c ports.Cursor) (string, error) {
	if c == "" {
		return "", nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(string(c))
	if err != nil {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidCursor, c)
	}
	return string(raw), nil
}
