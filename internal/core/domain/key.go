package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Kind names the family of a votable. The kind decides which shard family
// (and shard count) applies to the votable.
type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
)

func (k Kind) Valid() bool {
	return k == KindPost || k == KindComment
}

// VotableKey is the typed reference to anything that accepts votes.
// The ID is opaque; only the Kind carries meaning for the voting core.
type VotableKey struct {
	Kind Kind
	ID   string
}

var votableEncoding = base64.RawURLEncoding

// Encode renders the key as the URL-safe opaque id used on the wire and as
// the store key of the votable itself. The format is a compatibility
// contract: persisted vote and shard keys embed it.
func (k VotableKey) Encode() string {
	return votableEncoding.EncodeToString([]byte(string(k.Kind) + "/" + k.ID))
}

func (k VotableKey) String() string {
	return string(k.Kind) + "/" + k.ID
}

// DecodeVotableKey reverses Encode. Any undecodable or unknown-kind id is
// rejected with ErrInvalidVotableID.
func DecodeVotableKey(id string) (VotableKey, error) {
	raw, err := votableEncoding.DecodeString(id)
	if err != nil {
		return VotableKey{}, fmt.Errorf("%w: %q", ErrInvalidVotableID, id)
	}
	kind, rest, ok := strings.Cut(string(raw), "/")
	if !ok || rest == "" {
		return VotableKey{}, fmt.Errorf("%w: %q", ErrInvalidVotableID, id)
	}
	key := VotableKey{Kind: Kind(kind), ID: rest}
	if !key.Kind.Valid() {
		return VotableKey{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidVotableID, kind)
	}
	return key, nil
}

// Store-key derivations. The encoded votable key is base64url, so "/" can
// never occur inside it and the compound keys below stay injective. The
// voter id is always the final segment and may contain anything.

// VoteKey derives the deterministic store key of the one vote record a
// voter may hold on a votable. Same pair, same key, always.
func VoteKey(votable VotableKey, voterID string) string {
	return "vote/" + votable.Encode() + "/" + voterID
}

// ShardKey derives the store key of one numbered shard of a votable.
// Indexes are 1-based.
func ShardKey(votable VotableKey, index int) string {
	return fmt.Sprintf("shard/%s/%d", votable.Encode(), index)
}

// AccountKey derives the store key of a voter's account.
func AccountKey(userID string) string {
	return "account/" + userID
}
