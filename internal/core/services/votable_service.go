package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/askaway/backend/internal/core/domain"
	"github.com/askaway/backend/internal/core/ports"
)

type votableService struct {
	votableRepo  ports.VotableRepository
	shardService ports.ShardService
}

func NewVotableService(votableRepo ports.VotableRepository, shardService ports.ShardService) ports.VotableService {
	return &votableService{
		votableRepo:  votableRepo,
		shardService: shardService,
	}
}

// CreatePost writes the post and its zeroed shard set in one put. Shards
// are never created lazily: a votable without its full family is broken.
func (s *votableService) CreatePost(ctx context.Context, input ports.CreatePostInput) (*domain.Post, error) {
	post := &domain.Post{
		ID:        uuid.NewString(),
		AuthorID:  input.AuthorID,
		Title:     input.Title,
		Content:   input.Content,
		CreatedAt: time.Now(),
	}

	count, err := s.shardService.ShardCount(domain.KindPost)
	if err != nil {
		return nil, err
	}
	if err := s.votableRepo.SavePost(ctx, post, NewShards(post.VotableKey(), count)); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *votableService) CreateComment(ctx context.Context, input ports.CreateCommentInput) (*domain.Comment, error) {
	if _, err := s.votableRepo.GetPost(ctx, input.PostID); err != nil {
		if errors.Is(err, domain.ErrNoSuchEntity) {
			return nil, fmt.Errorf("%w: post/%s", domain.ErrVotableNotFound, input.PostID)
		}
		return nil, err
	}

	comment := &domain.Comment{
		ID:        uuid.NewString(),
		PostID:    input.PostID,
		AuthorID:  input.AuthorID,
		Content:   input.Content,
		CreatedAt: time.Now(),
	}

	count, err := s.shardService.ShardCount(domain.KindComment)
	if err != nil {
		return nil, err
	}
	if err := s.votableRepo.SaveComment(ctx, comment, NewShards(comment.VotableKey(), count)); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *votableService) Score(ctx context.Context, votableID string) (int64, error) {
	votable, err := domain.DecodeVotableKey(votableID)
	if err != nil {
		return 0, err
	}
	return s.shardService.SumVotes(ctx, votable)
}
