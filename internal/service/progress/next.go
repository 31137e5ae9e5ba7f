package progress

import (
	"context"

	"github.com/google/uuid"

	"github.com/HushmKun/SeekerOfLight/internal/models"
)

// NextLesson resolves the single lesson a learner should resume with.
// A nil lesson with a nil error means the curriculum is complete.
//
// Rule 1: the most recently accessed incomplete record wins. This rule does
// not re-check the owning level's unlock state: a learner mid-lesson keeps
// their place even if thresholds changed underneath them.
//
// Rule 2: with no in-progress record, scan active levels ascending and return
// the first not-yet-completed lesson of the first unlocked level that has
// one. Locked levels, empty levels and fully completed levels are skipped.
func (s *ProgressService) NextLesson(ctx context.Context, userID uuid.UUID) (*models.Lesson, error) {
	inProgress, err := s.progressRepo.LatestIncomplete(ctx, userID)
	if err != nil {
		return nil, err
	}
	if inProgress != nil {
		lesson, err := s.catalogRepo.LessonByID(ctx, inProgress.LessonID)
		if err != nil {
			return nil, err
		}
		return &lesson, nil
	}

	levels, err := s.catalogRepo.Levels(ctx)
	if err != nil {
		return nil, err
	}
	completed, err := s.progressRepo.CompletedCountsByLevel(ctx, userID)
	if err != nil {
		return nil, err
	}
	done, err := s.progressRepo.CompletedLessonIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, level := range levels {
		if !level.IsActive {
			continue
		}
		if !Unlocked(level, levels, completed) {
			continue
		}

		lessons, err := s.catalogRepo.LessonsByLevel(ctx, level.ID)
		if err != nil {
			return nil, err
		}
		for i := range lessons {
			if !done[lessons[i].ID] {
				return &lessons[i], nil
			}
		}
	}

	return nil, nil
}
