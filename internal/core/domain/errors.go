package domain

import "errors"

var (
	ErrInvalidVotableID       = errors.New("invalid votable id")
	ErrInvalidCursor          = errors.New("invalid cursor")
	ErrVotableNotFound        = errors.New("votable not found")
	ErrNoSuchEntity           = errors.New("no such entity")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrConflict               = errors.New("vote transaction retries exhausted")
	ErrShardMissing           = errors.New("vote shard missing for votable")
	ErrUnauthorized           = errors.New("missing or invalid credentials")
	ErrInternal               = errors.New("internal server error")
)
