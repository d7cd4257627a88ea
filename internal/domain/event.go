package domain

import "time"

// Event is a seminar, workshop or conference listing.
type Event struct {
	ID          int64
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
