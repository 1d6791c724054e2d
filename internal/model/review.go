package model

import "time"

// Moderation statuses shared by reviews and questions. Only approved content
// appears in public lists.
const (
	ModerationPending  = "pending"
	ModerationApproved = "approved"
	ModerationRejected = "rejected"
)

// Review is a buyer's rating of a breeder or listing.
type Review struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id,omitempty"`
	BreederID string    `json:"breeder_id"`
	AuthorID  string    `json:"author_id"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Question is a public Q&A entry on a listing. Answer is set by the seller.
type Question struct {
	ID         string     `json:"id"`
	ListingID  string     `json:"listing_id"`
	AuthorID   string     `json:"author_id"`
	Text       string     `json:"text"`
	Answer     string     `json:"answer,omitempty"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
}
