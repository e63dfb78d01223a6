package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/askaway/backend/internal/core/domain"
	"github.com/askaway/backend/internal/core/ports"
	"github.com/askaway/backend/internal/monitoring"
)

// voteTxAttempts bounds the replays of the vote transaction when the store
// reports contention. The shard choice and delta stay fixed across replays;
// only the shard read and the two writes run again.
const voteTxAttempts = 3

const (
	defaultVoterPageSize = 20
	maxVoterPageSize     = 100
)

type voteService struct {
	store        ports.Store
	shardService ports.ShardService
	voteRepo     ports.VoteRepository
	shardRepo    ports.ShardRepository
	accountRepo  ports.AccountRepository
}

func NewVoteService(
	store ports.Store,
	shardService ports.ShardService,
	voteRepo ports.VoteRepository,
	shardRepo ports.ShardRepository,
	accountRepo ports.AccountRepository,
) ports.VoteService {
	return &voteService{
		store:        store,
		shardService: shardService,
		voteRepo:     voteRepo,
		shardRepo:    shardRepo,
		accountRepo:  accountRepo,
	}
}

// Vote applies one voter's direction to a votable: it parses the wire
// direction, picks a shard for the votable, computes the counter delta
// from the prior vote, and commits the updated vote record and the shard
// atomically.
func (s *voteService) Vote(ctx context.Context, input ports.VoteInput) error {
	next := domain.ParseDirection(input.Dir)

	votable, err := domain.DecodeVotableKey(input.VotableID)
	if err != nil {
		return err
	}

	// The shard is rolled once, outside the transaction, so replays after
	// contention land on the same shard.
	shardKey, err := s.shardService.RandomShardKey(votable)
	if err != nil {
		return err
	}

	prior, err := s.voteRepo.Load(ctx, votable, input.UserID)
	if err != nil {
		return err
	}

	prev := domain.DirectionDefault
	now := time.Now()
	vote := prior
	if vote == nil {
		vote = &domain.Vote{VotableKey: votable, VoterID: input.UserID, CreatedAt: now}
	} else {
		prev = vote.Dir
	}
	delta := domain.Delta(prev, next)
	vote.Dir = next
	vote.UpdatedAt = now

	var txErr error
	for attempt := 0; attempt < voteTxAttempts; attempt++ {
		if attempt > 0 {
			monitoring.VoteTxRetries.Inc()
		}
		txErr = s.store.Transact(ctx, func(ctx context.Context, tx ports.Tx) error {
			shard, err := s.shardService.LoadShard(ctx, tx, shardKey)
			if err != nil {
				return err
			}
			shard.Votes += delta
			if err := s.shardRepo.Store(ctx, tx, shard); err != nil {
				return err
			}
			return s.voteRepo.Store(ctx, tx, vote)
		})
		if txErr == nil {
			monitoring.VotesTotal.WithLabelValues(next.String()).Inc()
			return nil
		}
		if errors.Is(txErr, domain.ErrShardMissing) {
			return s.classifyMissingShard(ctx, votable, txErr)
		}
		if !errors.Is(txErr, domain.ErrConcurrentModification) {
			return txErr
		}
	}

	monitoring.VoteConflicts.Inc()
	return fmt.Errorf("%w: %v", domain.ErrConflict, txErr)
}

// classifyMissingShard separates "the votable does not exist" from "the
// votable exists but its shard family has a hole". The former is a client
// error; the latter is a provisioning failure and gets logged.
func (s *voteService) classifyMissingShard(ctx context.Context, votable domain.VotableKey, cause error) error {
	shards, err := s.shardRepo.ListByVotable(ctx, votable)
	if err == nil && len(shards) == 0 {
		return fmt.Errorf("%w: %s", domain.ErrVotableNotFound, votable)
	}
	log.WithField("votable_key", votable.String()).Error("vote shard missing, shard family misprovisioned")
	return cause
}

// ListVoters pages through everyone who ever voted on the votable,
// retracted voters included.
func (s *voteService) ListVoters(ctx context.Context, input ports.ListVotersInput) (*ports.VoterPage, error) {
	votable, err := domain.DecodeVotableKey(input.VotableID)
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultVoterPageSize
	}
	if limit > maxVoterPageSize {
		limit = maxVoterPageSize
	}

	votes, next, err := s.voteRepo.ListByVotable(ctx, votable, limit, input.Cursor)
	if err != nil {
		return nil, err
	}

	voterIDs := make([]string, len(votes))
	for i, vote := range votes {
		voterIDs[i] = vote.VoterID
	}
	accounts, err := s.accountRepo.GetMulti(ctx, voterIDs)
	if err != nil {
		return nil, err
	}

	return &ports.VoterPage{Items: accounts, NextPageToken: next}, nil
}
