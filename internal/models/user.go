package models

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors the identity provider's subject. Rows exist only so progress
// records have a referential anchor; accounts are managed externally.
type User struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	IsActive   bool      `json:"is_active"`
	DateJoined time.Time `json:"date_joined"`
}
