// Package entity maps domain types onto entity-store rows. It is the only
// place that knows the payload layout and kind names of persisted entities.
package entity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/askaway/backend/internal/core/domain"
	"github.com/askaway/backend/internal/core/ports"
)

const KindVote = "vote"

// fieldVotableKey is the payload field vote and shard queries filter on.
const fieldVotableKey = "votable_key"

type voteRow struct {
	VotableKey string    `json:"votable_key"`
	VoterID    string    `json:"voter_id"`
	Dir        int       `json:"dir"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type voteRepository struct {
	store ports.Store
}

func NewVoteRepository(store ports.Store) ports.VoteRepository {
	return &voteRepository{store: store}
}

func (r *voteRepository) Load(ctx context.Context, votable domain.VotableKey, voterID string) (*domain.Vote, error) {
	ent, err := r.store.Get(ctx, domain.VoteKey(votable, voterID))
	if err != nil {
		if errors.Is(err, domain.ErrNoSuchEntity) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load vote: %w", err)
	}
	return decodeVote(ent)
}

func (r *voteRepository) Store(ctx context.Context, tx ports.Tx, vote *domain.Vote) error {
	ent, err := encodeVote(vote)
	if err != nil {
		return err
	}
	if err := tx.Put(ctx, ent); err != nil {
		return fmt.Errorf("failed to store vote: %w", err)
	}
	return nil
}

func (r *voteRepository) ListByVotable(ctx context.Context, votable domain.VotableKey, limit int, cursor ports.Cursor) ([]*domain.Vote, ports.Cursor, error) {
	ents, next, err := r.store.Query(ctx, ports.Query{
		Kind:    KindVote,
		Filters: []ports.Filter{{Field: fieldVotableKey, Value: votable.Encode()}},
		Cursor:  cursor,
		Limit:   limit,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to list votes: %w", err)
	}

	votes := make([]*domain.Vote, 0, len(ents))
	for _, ent := range ents {
		vote, err := decodeVote(ent)
		if err != nil {
			return nil, "", err
		}
		votes = append(votes, vote)
	}
	return votes, next, nil
}

func encodeVote(vote *domain.Vote) (*ports.Entity, error) {
	data, err := json.Marshal(voteRow{
		VotableKey: vote.VotableKey.Encode(),
		VoterID:    vote.VoterID,
		Dir:        int(vote.Dir),
		CreatedAt:  vote.CreatedAt,
		UpdatedAt:  vote.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode vote: %w", err)
	}
	return &ports.Entity{
		Key:   vote.Key(),
		Kind:  KindVote,
		Group: domain.AccountKey(vote.VoterID),
		Data:  data,
	}, nil
}

func decodeVote(ent *ports.Entity) (*domain.Vote, error) {
	var row voteRow
	if err := json.Unmarshal(ent.Data, &row); err != nil {
		return nil, fmt.Errorf("failed to decode vote %s: %w", ent.Key, err)
	}
	votable, err := domain.DecodeVotableKey(row.VotableKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode vote %s: %w", ent.Key, err)
	}
	return &domain.Vote{
		VotableKey: votable,
		VoterID:    row.VoterID,
		Dir:        domain.ParseDirection(row.Dir),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}
