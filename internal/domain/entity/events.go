package entity

import "time"

// AuthStateChanged is the notification emitted when a visitor signs in or
// out. An empty UserID means signed out.
type AuthStateChanged struct {
	UserID     string    `json:"user_id"`
	GuestID    string    `json:"guest_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e AuthStateChanged) SignedIn() bool {
	return e.UserID != ""
}

type CartReconciled struct {
	UserID      string    `json:"user_id"`
	GuestID     string    `json:"guest_id"`
	MergedLines int       `json:"merged_lines"`
	TotalLines  int       `json:"total_lines"`
	ItemCount   int       `json:"item_count"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type UserSignedIn struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

type UserSignedOut struct {
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type NewsletterSubscribed struct {
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}
