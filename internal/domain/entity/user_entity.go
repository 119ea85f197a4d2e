package entity

import (
	"time"
)

// DefaultYearlyGoal is the standing annual target given to new users.
const DefaultYearlyGoal = 12

// User is the aggregate root for the account domain.
// ID is the identity provider's subject; there are no local passwords.
type User struct {
	ID          string
	Email       string
	DisplayName string
	PhotoURL    string
	YearlyGoal  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
