package domain

// Shard is one slice of a votable's net vote counter. A votable owns a
// fixed set of shards, allocated when the votable is created; writers pick
// one at random so concurrent votes rarely contend, and readers sum all of
// them for the total.
type Shard struct {
	VotableKey VotableKey `json:"-"`
	Index      int        `json:"index"`
	Votes      int64      `json:"votes"`
}

// Key returns the store key of this shard.
func (s *Shard) Key() string {
	return ShardKey(s.VotableKey, s.Index)
}
