package ports

import (
	"context"

	"github.com/askaway/backend/internal/core/domain"
)

type ShardRepository interface {
	LoadTx(ctx context.Context, tx Tx, key string) (*domain.Shard, error)
	Store(ctx context.Context, tx Tx, shard *domain.Shard) error
	// ListByVotable loads every shard of a votable, however many were
	// allocated when it was created.
	ListByVotable(ctx context.Context, votable domain.VotableKey) ([]*domain.Shard, error)
}

// ShardService hides shard selection and aggregation from the vote
// controller.
type ShardService interface {
	// RandomShardKey picks one of the votable's shards uniformly at
	// random, based on the configured count for the votable's family.
	// No I/O; deterministic under an injected RNG.
	RandomShardKey(votable domain.VotableKey) (string, error)
	// LoadShard re-reads the chosen shard inside the vote transaction.
	// A missing shard is an invariant violation, never auto-created.
	LoadShard(ctx context.Context, tx Tx, key string) (*domain.Shard, error)
	// SumVotes folds all of the votable's shard counters into the net
	// vote total. ErrVotableNotFound when the votable has no shards.
	SumVotes(ctx context.Context, votable domain.VotableKey) (int64, error)
	// ShardCount reports the configured count for a votable kind.
	ShardCount(kind domain.Kind) (int, error)
}
