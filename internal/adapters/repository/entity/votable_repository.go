package entity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/askaway/backend/internal/core/domain"
	"github.com/askaway/backend/internal/core/ports"
)

const (
	KindPost    = "post"
	KindComment = "comment"
)

type votableRepository struct {
	store ports.Store
}

func NewVotableRepository(store ports.Store) ports.VotableRepository {
	return &votableRepository{store: store}
}

func (r *votableRepository) SavePost(ctx context.Context, post *domain.Post, shards []*domain.Shard) error {
	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("failed to encode post: %w", err)
	}
	key := post.VotableKey().Encode()
	ents := []*ports.Entity{{Key: key, Kind: KindPost, Group: key, Data: data}}
	ents, err = appendShards(ents, shards)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, ents...); err != nil {
		return fmt.Errorf("failed to save post: %w", err)
	}
	return nil
}

func (r *votableRepository) SaveComment(ctx context.Context, comment *domain.Comment, shards []*domain.Shard) error {
	data, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("failed to encode comment: %w", err)
	}
	key := comment.VotableKey().Encode()
	parent := domain.VotableKey{Kind: domain.KindPost, ID: comment.PostID}.Encode()
	ents := []*ports.Entity{{Key: key, Kind: KindComment, Group: parent, Data: data}}
	ents, err = appendShards(ents, shards)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, ents...); err != nil {
		return fmt.Errorf("failed to save comment: %w", err)
	}
	return nil
}

func (r *votableRepository) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	key := domain.VotableKey{Kind: domain.KindPost, ID: id}.Encode()
	ent, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var post domain.Post
	if err := json.Unmarshal(ent.Data, &post); err != nil {
		return nil, fmt.Errorf("failed to decode post %s: %w", ent.Key, err)
	}
	return &post, nil
}

func appendShards(ents []*ports.Entity, shards []*domain.Shard) ([]*ports.Entity, error) {
	for _, shard := range shards {
		ent, err := EncodeShard(shard)
		if err != nil {
			return nil, err
		}
		ents = append(ents, ent)
	}
	return ents, nil
}
