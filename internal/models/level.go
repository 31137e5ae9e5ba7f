package models

import (
	"time"

	"github.com/google/uuid"
)

type Level struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	OrderIndex      int       `json:"order_index"`
	IsActive        bool      `json:"is_active"`
	UnlockThreshold int       `json:"unlock_threshold"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// LevelStatus is a Level annotated with the caller's unlock state.
type LevelStatus struct {
	Level
	IsUnlocked bool `json:"is_unlocked"`
}

// LevelProgress is one row of the per-user progress summary.
type LevelProgress struct {
	LevelID    uuid.UUID `json:"level_id"`
	Completed  int       `json:"completed"`
	Total      int       `json:"total"`
	Percentage int       `json:"percentage"`
}
