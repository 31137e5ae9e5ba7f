package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ContentTypeText  = "text"
	ContentTypeVideo = "video"
	ContentTypeQuiz  = "quiz"
)

func ValidContentType(t string) bool {
	switch t {
	case ContentTypeText, ContentTypeVideo, ContentTypeQuiz:
		return true
	}
	return false
}

type Lesson struct {
	ID          uuid.UUID `json:"id"`
	LevelID     uuid.UUID `json:"level_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentType string    `json:"content_type"`
	Duration    *int      `json:"duration,omitempty"`
	OrderIndex  int       `json:"order_index"`
	VideoURL    *string   `json:"video,omitempty"`
	// VideoObjectKey references uploaded media; VideoURL is resolved from it on reads.
	VideoObjectKey *string   `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LessonDetail is a Lesson plus the caller's progress record, nil when the
// caller is anonymous or has never touched the lesson.
type LessonDetail struct {
	Lesson   Lesson        `json:"lesson"`
	Progress *UserProgress `json:"user_progress"`
}

// BookmarkedLesson carries the owning level's order so bookmark listings can
// be sorted by (level order, lesson order).
type BookmarkedLesson struct {
	Lesson     Lesson `json:"lesson"`
	LevelOrder int    `json:"level_order"`
}
