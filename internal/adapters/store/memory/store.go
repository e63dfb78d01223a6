// Package memory implements the entity-store port on a process-local map.
// It backs unit tests and local development; semantics match the Postgres
// adapter, including optimistic transaction conflicts.
package memory

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/askaway/backend/internal/core/domain"
	"github.com/askaway/backend/internal/core/ports"
)

// record pairs an entity with its commit version. Records are immutable;
// commits swap in fresh pointers so lock-free readers never see a torn
// entity.
type record struct {
	ent     ports.Entity
	version uint64
}

type Store struct {
	records *xsync.MapOf[string, *record]
	commit  sync.Mutex
}

var _ ports.Store = (*Store)(nil)

func New() *Store {
	return &Store{records: xsync.NewMapOf[string, *record]()}
}

func (s *Store) Get(ctx context.Context, key string) (*ports.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, ok := s.records.Load(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoSuchEntity, key)
	}
	return cloneEntity(&rec.ent), nil
}

func (s *Store) GetMulti(ctx context.Context, keys []string) ([]*ports.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]*ports.Entity, len(keys))
	for i, key := range keys {
		if rec, ok := s.records.Load(key); ok {
			out[i] = cloneEntity(&rec.ent)
		}
	}
	return out, nil
}

func (s *Store) Put(ctx context.Context, entities ...*ports.Entity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.commit.Lock()
	defer s.commit.Unlock()
	for _, ent := range entities {
		s.apply(ent)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, q ports.Query) ([]*ports.Entity, ports.Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	after, err := decodeCursor(q.Cursor)
	if err != nil {
		return nil, "", err
	}

	var keys []string
	s.records.Range(func(key string, rec *record) bool {
		if rec.ent.Kind != q.Kind || key <= after {
			return true
		}
		if matches(&rec.ent, q.Filters) {
			keys = append(keys, key)
		}
		return true
	})
	sort.Strings(keys)

	if q.Limit > 0 && len(keys) > q.Limit {
		keys = keys[:q.Limit]
	}

	out := make([]*ports.Entity, 0, len(keys))
	for _, key := range keys {
		if rec, ok := s.records.Load(key); ok {
			out = append(out, cloneEntity(&rec.ent))
		}
	}

	next := q.Cursor
	if len(keys) > 0 {
		next = encodeCursor(keys[len(keys)-1])
	}
	return out, next, nil
}

// Transact runs fn with snapshot-read tracking and buffered writes. Commit
// revalidates every version read by fn; a concurrent commit to any of those
// keys aborts with domain.ErrConcurrentModification and nothing is applied.
func (s *Store) Transact(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := &tx{
		store:  s,
		reads:  make(map[string]uint64),
		writes: make(map[string]*ports.Entity),
	}
	if err := fn(ctx, t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.commit.Lock()
	defer s.commit.Unlock()
	for key, seen := range t.reads {
		var current uint64
		if rec, ok := s.records.Load(key); ok {
			current = rec.version
		}
		if current != seen {
			return fmt.Errorf("%w: %s", domain.ErrConcurrentModification, key)
		}
	}
	for _, ent := range t.writes {
		s.apply(ent)
	}
	return nil
}

// apply must run under the commit lock.
func (s *Store) apply(ent *ports.Entity) {
	var version uint64
	if prev, ok := s.records.Load(ent.Key); ok {
		version = prev.version
	}
	s.records.Store(ent.Key, &record{ent: *cloneEntity(ent), version: version + 1})
}

type tx struct {
	store  *Store
	reads  map[string]uint64
	writes map[string]*ports.Entity
}

func (t *tx) Get(ctx context.Context, key string) (*ports.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ent, ok := t.writes[key]; ok {
		return cloneEntity(ent), nil
	}
	rec, ok := t.store.records.Load(key)
	if _, tracked := t.reads[key]; !tracked {
		if ok {
			t.reads[key] = rec.version
		} else {
			t.reads[key] = 0
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoSuchEntity, key)
	}
	return cloneEntity(&rec.ent), nil
}

func (t *tx) Put(ctx context.Context, entities ...*ports.Entity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, ent := range entities {
		t.writes[ent.Key] = cloneEntity(ent)
	}
	return nil
}

func cloneEntity(ent *ports.Entity) *ports.Entity {
	out := *ent
	out.Data = append([]byte(nil), ent.Data...)
	return &out
}

func matches(ent *ports.Entity, filters []ports.Filter) bool {
	if len(filters) == 0 {
		return true
	}
	var fields map[string]any
	if err := json.Unmarshal(ent.Data, &fields); err != nil {
		return false
	}
	for _, f := range filters {
		v, ok := fields[f.Field]
		if !ok || fmt.Sprintf("%v", v) != f.Value {
			return false
		}
	}
	return true
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
