package ports

import "context"

// Entity is one row of the backing entity store: an opaque JSON payload
// addressed by a globally unique key. Group records the entity-group
// placement (shards live in their votable's group, vote records in their
// voter's group).
type Entity struct {
	Key   string
	Kind  string
	Group string
	Data  []byte
}

// Cursor is an opaque position in a query's result stream. Callers pass it
// back verbatim to resume; they never inspect it.
type Cursor string

type Filter struct {
	Field string
	Value string
}

// Query selects entities of one kind, optionally filtered on payload
// fields. Results are ordered by key, so a fixed cursor chain visits each
// entity at most once.
type Query struct {
	Kind    string
	Filters []Filter
	Cursor  Cursor
	Limit   int
}

// Tx is the handle passed to a transaction body. Reads through it are
// strongly consistent; writes are buffered until commit.
type Tx interface {
	Get(ctx context.Context, key string) (*Entity, error)
	Put(ctx context.Context, entities ...*Entity) error
}

// Store is the transactional entity-store gateway the voting core runs on.
//
// Get returns domain.ErrNoSuchEntity for a missing key. GetMulti returns a
// slice aligned with keys, with nil holes for missing entities. Query
// returns the cursor positioned after the last row it read, whether or not
// more rows remain. Transact runs fn atomically; either every Put inside
// commits or none does, and a commit lost to a concurrent writer surfaces
// domain.ErrConcurrentModification so the caller can retry.
type Store interface {
	Get(ctx context.Context, key string) (*Entity, error)
	GetMulti(ctx context.Context, keys []string) ([]*Entity, error)
	Put(ctx context.Context, entities ...*Entity) error
	Query(ctx context.Context, q Query) ([]*Entity, Cursor, error)
	Transact(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
