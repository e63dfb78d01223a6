package domain

import "time"

// Post and Comment are the two votable entities. The voting core only
// cares about their keys and kinds; content fields exist so the creation
// endpoints have something real to persist.

type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Post) VotableKey() VotableKey {
	return VotableKey{Kind: KindPost, ID: p.ID}
}

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Comment) VotableKey() VotableKey {
	return VotableKey{Kind: KindComment, ID: c.ID}
}
