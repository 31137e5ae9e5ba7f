package catalog

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/HushmKun/SeekerOfLight/internal/app_errors"
	"github.com/HushmKun/SeekerOfLight/internal/models"
)

// CreateLevel inserts an authored level. The store enforces order_index
// contiguity and uniqueness; validation failures name the offending field.
func (s *CatalogService) CreateLevel(ctx context.Context, level models.Level) (*models.Level, error) {
	if level.OrderIndex < 1 {
		return nil, app_errors.ErrInvalidOrderIndex
	}
	if level.UnlockThreshold < 0 {
		level.UnlockThreshold = 0
	}
	return s.repo.CreateLevel(ctx, level)
}

func (s *CatalogService) CreateLesson(ctx context.Context, lesson models.Lesson) (*models.Lesson, error) {
	if lesson.OrderIndex < 1 {
		return nil, app_errors.ErrInvalidOrderIndex
	}
	if lesson.ContentType == "" {
		lesson.ContentType = models.ContentTypeText
	}
	if !models.ValidContentType(lesson.ContentType) {
		return nil, app_errors.ErrInvalidContentType
	}
	if _, err := s.repo.LevelByID(ctx, lesson.LevelID); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateLesson(ctx, lesson)
	if err != nil {
		return nil, err
	}

	if s.search != nil {
		if err := s.search.Index(ctx, *created); err != nil {
			s.log.ErrorErr("failed to index lesson", err, "lesson_id", created.ID)
		}
	}
	return created, nil
}

// UploadLessonVideo stores a video for a video lesson and records its object
// key. The previous object, if any, is replaced in place by key reuse.
func (s *CatalogService) UploadLessonVideo(ctx context.Context, lessonID uuid.UUID, filename string, file io.Reader, size int64, contentType string) (*models.Lesson, error) {
	lesson, err := s.repo.LessonByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.ContentType != models.ContentTypeVideo {
		return nil, app_errors.ErrNotVideoLesson
	}

	objectKey, err := s.media.UploadVideo(ctx, lessonID, filename, file, size, contentType)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetLessonVideo(ctx, lessonID, objectKey); err != nil {
		return nil, err
	}

	lesson.VideoObjectKey = &objectKey
	s.ResolveVideoURL(ctx, &lesson)
	return &lesson, nil
}

func (s *CatalogService) DeleteLesson(ctx context.Context, lessonID uuid.UUID) error {
	lesson, err := s.repo.LessonByID(ctx, lessonID)
	if err != nil {
		return err
	}

	if lesson.VideoObjectKey != nil && s.media != nil {
		if err := s.media.DeleteVideo(ctx, *lesson.VideoObjectKey); err != nil {
			s.log.ErrorErr("failed to delete lesson video", err, "lesson_id", lessonID)
		}
	}

	if err := s.repo.DeleteLessonAndCompact(ctx, lessonID); err != nil {
		return err
	}

	if s.search != nil {
		if err := s.search.Delete(ctx, lessonID); err != nil {
			s.log.ErrorErr("failed to de-index lesson", err, "lesson_id", lessonID)
		}
	}
	return nil
}

// DeleteLevel removes a level and everything under it: lesson media, search
// documents, then the rows themselves via cascade.
func (s *CatalogService) DeleteLevel(ctx context.Context, levelID uuid.UUID) error {
	lessons, err := s.repo.LessonsByLevel(ctx, levelID)
	if err != nil {
		return err
	}

	for _, lesson := range lessons {
		if lesson.VideoObjectKey != nil && s.media != nil {
			if err := s.media.DeleteVideo(ctx, *lesson.VideoObjectKey); err != nil {
				s.log.ErrorErr("failed to delete lesson video", err, "lesson_id", lesson.ID)
			}
		}
		if s.search != nil {
			if err := s.search.Delete(ctx, lesson.ID); err != nil {
				s.log.ErrorErr("failed to de-index lesson", err, "lesson_id", lesson.ID)
			}
		}
	}

	return s.repo.DeleteLevelAndCompact(ctx, levelID)
}
