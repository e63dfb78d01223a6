package services

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askaway/backend/internal/adapters/repository/entity"
	"github.com/askaway/backend/internal/adapters/store/memory"
	"github.com/askaway/backend/internal/core/domain"
	"github.com/askaway/backend/internal/core/ports"
)

func TestShardCountPerFamily(t *testing.T) {
	svc := NewShardService(nil, ShardConfig{PostShardCount: 20, CommentShardCount: 5})

	count, err := svc.ShardCount(domain.KindPost)
	require.NoError(t, err)
	assert.Equal(t, 20, count)

	count, err = svc.ShardCount(domain.KindComment)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	_, err = svc.ShardCount(domain.Kind("article"))
	assert.ErrorIs(t, err, domain.ErrInvalidVotableID)
}

func TestRandomShardKeyIsDeterministicUnderSeededRand(t *testing.T) {
	votable := domain.VotableKey{Kind: domain.KindPost, ID: "p1"}
	cfg := ShardConfig{PostShardCount: 20, CommentShardCount: 5}

	a := NewShardService(nil, cfg, WithShardPicker(rand.New(rand.NewPCG(7, 7)).IntN))
	b := NewShardService(nil, cfg, WithShardPicker(rand.New(rand.NewPCG(7, 7)).IntN))

	for i := 0; i < 50; i++ {
		ka, err := a.RandomShardKey(votable)
		require.NoError(t, err)
		kb, err := b.RandomShardKey(votable)
		require.NoError(t, err)
		assert.Equal(t, ka, kb)
	}
}

func TestRandomShardKeyStaysInFamilyRange(t *testing.T) {
	votable := domain.VotableKey{Kind: domain.KindComment, ID: "c1"}
	svc := NewShardService(nil, ShardConfig{PostShardCount: 20, CommentShardCount: 5})

	valid := map[string]bool{}
	for i := 1; i <= 5; i++ {
		valid[domain.ShardKey(votable, i)] = true
	}
	for i := 0; i < 200; i++ {
		key, err := svc.RandomShardKey(votable)
		require.NoError(t, err)
		assert.True(t, valid[key], "key %s outside allocated range", key)
	}
}

func TestSumVotes(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	shardRepo := entity.NewShardRepository(store)
	svc := NewShardService(shardRepo, ShardConfig{PostShardCount: 3, CommentShardCount: 2})

	votable := domain.VotableKey{Kind: domain.KindPost, ID: "p1"}
	for i, votes := range []int64{2, -1, 4} {
		shard := &domain.Shard{VotableKey: votable, Index: i + 1, Votes: votes}
		ent, err := entity.EncodeShard(shard)
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, ent))
	}

	sum, err := svc.SumVotes(ctx, votable)
	require.NoError(t, err)
	assert.Equal(t, int64(5), sum)
}

func TestSumVotesUnknownVotable(t *testing.T) {
	store := memory.New()
	svc := NewShardService(entity.NewShardRepository(store), DefaultShardConfig())

	_, err := svc.SumVotes(context.Background(), domain.VotableKey{Kind: domain.KindPost, ID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrVotableNotFound)
}

func TestLoadShardMissingIsInvariantViolation(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewShardService(entity.NewShardRepository(store), DefaultShardConfig())

	votable := domain.VotableKey{Kind: domain.KindPost, ID: "p1"}
	err := store.Transact(ctx, func(ctx context.Context, tx ports.Tx) error {
		_, err := svc.LoadShard(ctx, tx, domain.ShardKey(votable, 1))
		return err
	})
	assert.ErrorIs(t, err, domain.ErrShardMissing)
}
