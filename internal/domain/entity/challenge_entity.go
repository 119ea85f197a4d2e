package entity

import "time"

// ReadingChallenge is a per-year reading goal, unique on (UserID, Year).
// Completed is a denormalized count; the live figure is derived from the user's books.
type ReadingChallenge struct {
	ID        string
	UserID    string
	Year      int
	Goal      int
	Completed int
	CreatedAt time.Time
}
