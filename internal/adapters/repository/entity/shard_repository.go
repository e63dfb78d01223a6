package entity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/askaway/backend/internal/core/domain"
	"github.com/askaway/backend/internal/core/ports"
)

const (
	KindPostShard    = "post_shard"
	KindCommentShard = "comment_shard"
)

// ShardKind maps a votable kind onto its shard family.
func ShardKind(kind domain.Kind) string {
	if kind == domain.KindComment {
		return KindCommentShard
	}
	return KindPostShard
}

type shardRow struct {
	VotableKey string `json:"votable_key"`
	Index      int    `json:"index"`
	Votes      int64  `json:"votes"`
}

type shardRepository struct {
	store ports.Store
}

func NewShardRepository(store ports.Store) ports.ShardRepository {
	return &shardRepository{store: store}
}

func (r *shardRepository) LoadTx(ctx context.Context, tx ports.Tx, key string) (*domain.Shard, error) {
	ent, err := tx.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return decodeShard(ent)
}

func (r *shardRepository) Store(ctx context.Context, tx ports.Tx, shard *domain.Shard) error {
	ent, err := EncodeShard(shard)
	if err != nil {
		return err
	}
	if err := tx.Put(ctx, ent); err != nil {
		return fmt.Errorf("failed to store shard: %w", err)
	}
	return nil
}

func (r *shardRepository) ListByVotable(ctx context.Context, votable domain.VotableKey) ([]*domain.Shard, error) {
	ents, _, err := r.store.Query(ctx, ports.Query{
		Kind:    ShardKind(votable.Kind),
		Filters: []ports.Filter{{Field: fieldVotableKey, Value: votable.Encode()}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list shards: %w", err)
	}

	shards := make([]*domain.Shard, 0, len(ents))
	for _, ent := range ents {
		shard, err := decodeShard(ent)
		if err != nil {
			return nil, err
		}
		shards = append(shards, shard)
	}
	return shards, nil
}

// EncodeShard is shared with the votable repository, which writes zeroed
// shards alongside a freshly created votable.
func EncodeShard(shard *domain.Shard) (*ports.Entity, error) {
	data, err := json.Marshal(shardRow{
		VotableKey: shard.VotableKey.Encode(),
		Index:      shard.Index,
		Votes:      shard.Votes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode shard: %w", err)
	}
	return &ports.Entity{
		Key:   shard.Key(),
		Kind:  ShardKind(shard.VotableKey.Kind),
		Group: shard.VotableKey.Encode(),
		Data:  data,
	}, nil
}

func decodeShard(ent *ports.Entity) (*domain.Shard, error) {
	var row shardRow
	if err := json.Unmarshal(ent.Data, &row); err != nil {
		return nil, fmt.Errorf("failed to decode shard %s: %w", ent.Key, err)
	}
	votable, err := domain.DecodeVotableKey(row.VotableKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode shard %s: %w", ent.Key, err)
	}
	return &domain.Shard{
		VotableKey: votable,
		Index:      row.Index,
		Votes:      row.Votes,
	}, nil
}
