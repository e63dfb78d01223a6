package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askaway/backend/internal/core/domain"
	"github.com/askaway/backend/internal/core/ports"
)

func TestCreatePostAllocatesShardsEagerly(t *testing.T) {
	env := newVoteEnv(t, ShardConfig{PostShardCount: 7, CommentShardCount: 3})
	ctx := context.Background()

	post, err := env.votables.CreatePost(ctx, ports.CreatePostInput{AuthorID: "a", Title: "t"})
	require.NoError(t, err)

	shards, err := env.shardRepo.ListByVotable(ctx, post.VotableKey())
	require.NoError(t, err)
	require.Len(t, shards, 7)
	for _, shard := range shards {
		assert.Zero(t, shard.Votes)
	}

	// a fresh votable is immediately summable
	sum, err := env.shardService.SumVotes(ctx, post.VotableKey())
	require.NoError(t, err)
	assert.Zero(t, sum)
}

func TestCreateCommentAllocatesCommentFamily(t *testing.T) {
	env := newVoteEnv(t, ShardConfig{PostShardCount: 7, CommentShardCount: 3})
	ctx := context.Background()

	post, err := env.votables.CreatePost(ctx, ports.CreatePostInput{AuthorID: "a", Title: "t"})
	require.NoError(t, err)

	comment, err := env.votables.CreateComment(ctx, ports.CreateCommentInput{
		PostID:   post.ID,
		AuthorID: "b",
		Content:  "same question here",
	})
	require.NoError(t, err)

	shards, err := env.shardRepo.ListByVotable(ctx, comment.VotableKey())
	require.NoError(t, err)
	assert.Len(t, shards, 3)
}

func TestCreateCommentOnMissingPost(t *testing.T) {
	env := newVoteEnv(t, DefaultShardConfig())
	_, err := env.votables.CreateComment(context.Background(), ports.CreateCommentInput{
		PostID:   "ghost",
		AuthorID: "b",
		Content:  "c",
	})
	assert.ErrorIs(t, err, domain.ErrVotableNotFound)
}

func TestScore(t *testing.T) {
	env := newVoteEnv(t, ShardConfig{PostShardCount: 3, CommentShardCount: 2})
	ctx := context.Background()
	postID := env.createPost(t)

	require.NoError(t, env.votes.Vote(ctx, ports.VoteInput{VotableID: postID, Dir: 1, UserID: "u1"}))
	require.NoError(t, env.votes.Vote(ctx, ports.VoteInput{VotableID: postID, Dir: 1, UserID: "u2"}))
	require.NoError(t, env.votes.Vote(ctx, ports.VoteInput{VotableID: postID, Dir: -1, UserID: "u3"}))

	score, err := env.votables.Score(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), score)

	_, err = env.votables.Score(ctx, "garbage!!")
	assert.ErrorIs(t, err, domain.ErrInvalidVotableID)
}
