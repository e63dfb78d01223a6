package domain

import "time"

// Vote is the single record a voter holds on a votable. It is created on
// the first vote and mutated in place afterwards; retracting flips the
// direction to DirectionDefault but never deletes the record.
type Vote struct {
	VotableKey VotableKey `json:"-"`
	VoterID    string     `json:"voter_id"`
	Dir        Direction  `json:"dir"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Key returns the deterministic store key for this (votable, voter) pair.
func (v *Vote) Key() string {
	return VoteKey(v.VotableKey, v.VoterID)
}
