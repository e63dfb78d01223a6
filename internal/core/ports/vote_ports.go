package ports

import (
	"context"

	"github.com/askaway/backend/internal/core/domain"
)

type VoteRepository interface {
	// Load returns the vote a voter holds on a votable, or nil when the
	// voter never voted. A point-get on the deterministic vote key.
	Load(ctx context.Context, votable domain.VotableKey, voterID string) (*domain.Vote, error)
	// Store upserts the vote inside the enclosing transaction.
	Store(ctx context.Context, tx Tx, vote *domain.Vote) error
	// ListByVotable pages through all vote records of a votable, ordered
	// by store key, resuming from cursor when present.
	ListByVotable(ctx context.Context, votable domain.VotableKey, limit int, cursor Cursor) ([]*domain.Vote, Cursor, error)
}

type AccountRepository interface {
	Save(ctx context.Context, account *domain.Account) error
	// GetMulti batch-loads accounts by user id, skipping missing ones.
	GetMulti(ctx context.Context, userIDs []string) ([]*domain.Account, error)
}

type VoteInput struct {
	VotableID string
	Dir       int
	UserID    string
}

type ListVotersInput struct {
	VotableID string
	Limit     int
	Cursor    Cursor
}

type VoterPage struct {
	Items         []*domain.Account `json:"items"`
	NextPageToken Cursor            `json:"nextPageToken"`
}

type VoteService interface {
	Vote(ctx context.Context, input VoteInput) error
	ListVoters(ctx context.Context, input ListVotersInput) (*VoterPage, error)
}
