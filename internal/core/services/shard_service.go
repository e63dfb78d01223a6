package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/askaway/backend/internal/core/domain"
	"github.com/askaway/backend/internal/core/ports"
)

// ShardConfig fixes the number of counter shards allocated per votable for
// each family. Changing a count only affects votables created afterwards;
// existing votables keep the set they were born with.
type ShardConfig struct {
	PostShardCount    int
	CommentShardCount int
}

func DefaultShardConfig() ShardConfig {
	return ShardConfig{PostShardCount: 20, CommentShardCount: 5}
}

type shardService struct {
	shardRepo ports.ShardRepository
	cfg       ShardConfig
	intn      func(n int) int
}

type ShardServiceOption func(*shardService)

// WithShardPicker swaps the RNG behind RandomShardKey. Tests inject a
// seeded source to make shard selection deterministic.
func WithShardPicker(intn func(n int) int) ShardServiceOption {
	return func(s *shardService) {
		s.intn = intn
	}
}

func NewShardService(shardRepo ports.ShardRepository, cfg ShardConfig, opts ...ShardServiceOption) ports.ShardService {
	s := &shardService{
		shardRepo: shardRepo,
		cfg:       cfg,
		intn:      rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *shardService) ShardCount(kind domain.Kind) (int, error) {
	switch kind {
	case domain.KindPost:
		return s.cfg.PostShardCount, nil
	case domain.KindComment:
		return s.cfg.CommentShardCount, nil
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidVotableID, kind)
	}
}

func (s *shardService) RandomShardKey(votable domain.VotableKey) (string, error) {
	count, err := s.ShardCount(votable.Kind)
	if err != nil {
		return "", err
	}
	return domain.ShardKey(votable, s.intn(count)+1), nil
}

func (s *shardService) LoadShard(ctx context.Context, tx ports.Tx, key string) (*domain.Shard, error) {
	shard, err := s.shardRepo.LoadTx(ctx, tx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNoSuchEntity) {
			// Shards are provisioned with the votable; a hole in the
			// family is corruption, not a reason to create one.
			return nil, fmt.Errorf("%w: %s", domain.ErrShardMissing, key)
		}
		return nil, err
	}
	return shard, nil
}

func (s *shardService) SumVotes(ctx context.Context, votable domain.VotableKey) (int64, error) {
	shards, err := s.shardRepo.ListByVotable(ctx, votable)
	if err != nil {
		return 0, err
	}
	if len(shards) == 0 {
		return 0, fmt.Errorf("%w: %s", domain.ErrVotableNotFound, votable)
	}

	var total int64
	for _, shard := range shards {
		total += shard.Votes
	}
	return total, nil
}

// NewShards builds the zeroed shard set written when a votable is created.
func NewShards(votable domain.VotableKey, count int) []*domain.Shard {
	shards := make([]*domain.Shard, count)
	for i := range shards {
		shards[i] = &domain.Shard{VotableKey: votable, Index: i + 1}
	}
	return shards
}
