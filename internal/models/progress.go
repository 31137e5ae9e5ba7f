package models

import (
	"time"

	"github.com/google/uuid"
)

type UserProgress struct {
	UserID       uuid.UUID  `json:"user_id"`
	LessonID     uuid.UUID  `json:"lesson_id"`
	IsCompleted  bool       `json:"is_completed"`
	CompletedAt  *time.Time `json:"completed_at"`
	LastAccessed time.Time  `json:"last_accessed"`
	Bookmarked   bool       `json:"bookmarked"`
}

// ProgressPatch is a partial update of a progress record. Nil fields are
// left untouched.
type ProgressPatch struct {
	IsCompleted *bool `json:"is_completed"`
	Bookmarked  *bool `json:"bookmarked"`
}

func (p ProgressPatch) Empty() bool {
	return p.IsCompleted == nil && p.Bookmarked == nil
}

// ApplyPatch mutates the record under the progression rules: completed_at is
// stamped only on a false-to-true completion transition and is never cleared,
// bookmarking is independent of completion, and last_accessed advances on
// every touch. Stores must apply this atomically per (user, lesson) record.
func (up *UserProgress) ApplyPatch(patch ProgressPatch, now time.Time) {
	if patch.IsCompleted != nil {
		if *patch.IsCompleted && !up.IsCompleted {
			completedAt := now
			up.CompletedAt = &completedAt
		}
		up.IsCompleted = *patch.IsCompleted
	}
	if patch.Bookmarked != nil {
		up.Bookmarked = *patch.Bookmarked
	}
	up.LastAccessed = now
}
