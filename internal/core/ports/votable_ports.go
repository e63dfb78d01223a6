package ports

import (
	"context"

	"github.com/askaway/backend/internal/core/domain"
)

type VotableRepository interface {
	// SavePost writes the post together with its freshly allocated
	// shards in one atomic put.
	SavePost(ctx context.Context, post *domain.Post, shards []*domain.Shard) error
	SaveComment(ctx context.Context, comment *domain.Comment, shards []*domain.Shard) error
	GetPost(ctx context.Context, id string) (*domain.Post, error)
}

type CreatePostInput struct {
	AuthorID string
	Title    string
	Content  string
}

type CreateCommentInput struct {
	PostID   string
	AuthorID string
	Content  string
}

type VotableService interface {
	CreatePost(ctx context.Context, input CreatePostInput) (*domain.Post, error)
	CreateComment(ctx context.Context, input CreateCommentInput) (*domain.Comment, error)
	// Score sums the votable's shards into its current net vote total.
	Score(ctx context.Context, votableID string) (int64, error)
}
