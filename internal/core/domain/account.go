package domain

import "time"

// Account is a voter as delivered by the auth boundary. The ID is the
// opaque user id from the verified token; the core never calls back into
// auth to enrich it.
type Account struct {
	ID        string    `json:"id"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *Account) Key() string {
	return AccountKey(a.ID)
}
