package progress

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/HushmKun/SeekerOfLight/internal/models"
	"github.com/HushmKun/SeekerOfLight/pkg/logger"
)

type catalogRepo interface {
	Levels(ctx context.Context) ([]models.Level, error)
	ActiveLevels(ctx context.Context) ([]models.Level, error)
	LevelByID(ctx context.Context, id uuid.UUID) (models.Level, error)
	LessonByID(ctx context.Context, id uuid.UUID) (models.Lesson, error)
	LessonsByLevel(ctx context.Context, levelID uuid.UUID) ([]models.Lesson, error)
	LessonCountsByLevel(ctx context.Context) (map[uuid.UUID]int, error)
}

type progressRepo interface {
	Upsert(ctx context.Context, userID, lessonID uuid.UUID, patch models.ProgressPatch) (models.UserProgress, error)
	Get(ctx context.Context, userID, lessonID uuid.UUID) (models.UserProgress, error)
	CompletedCountsByLevel(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int, error)
	CompletedLessonIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error)
	LatestIncomplete(ctx context.Context, userID uuid.UUID) (*models.UserProgress, error)
	BookmarkedLessons(ctx context.Context, userID uuid.UUID) ([]models.BookmarkedLesson, error)
}

type summaryCache interface {
	Get(ctx context.Context, userID uuid.UUID) ([]models.LevelProgress, error)
	Set(ctx context.Context, userID uuid.UUID, summary []models.LevelProgress) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// ProgressService owns everything keyed by a learner: unlock evaluation,
// the per-level summary, the next-lesson resolver and progress writes.
type ProgressService struct {
	log          logger.Log
	catalogRepo  catalogRepo
	progressRepo progressRepo
	cache        summaryCache
}

// NewProgressService builds the service. cache may be nil, in which case
// summaries are computed on every call.
func NewProgressService(log logger.Log, c catalogRepo, p progressRepo, cache summaryCache) *ProgressService {
	return &ProgressService{
		log:          log,
		catalogRepo:  c,
		progressRepo: p,
		cache:        cache,
	}
}

// Upsert creates or patches the caller's record for a lesson. The store
// applies the patch atomically against the committed pre-image; completion
// timestamps follow models.UserProgress.ApplyPatch semantics.
func (s *ProgressService) Upsert(ctx context.Context, userID, lessonID uuid.UUID, patch models.ProgressPatch) (models.UserProgress, error) {
	if _, err := s.catalogRepo.LessonByID(ctx, lessonID); err != nil {
		return models.UserProgress{}, err
	}

	up, err := s.progressRepo.Upsert(ctx, userID, lessonID, patch)
	if err != nil {
		return models.UserProgress{}, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			s.log.ErrorErr("failed to invalidate summary cache", err, "user_id", userID)
		}
	}
	return up, nil
}

// Progress reads the caller's record for a lesson without counting as an
// interaction; last_accessed stays put.
func (s *ProgressService) Progress(ctx context.Context, userID, lessonID uuid.UUID) (models.UserProgress, error) {
	return s.progressRepo.Get(ctx, userID, lessonID)
}

// Summary returns one row per active level, ascending by level order.
// A level without lessons reports zero percent rather than failing.
func (s *ProgressService) Summary(ctx context.Context, userID uuid.UUID) ([]models.LevelProgress, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, userID); err == nil {
			return cached, nil
		}
	}

	levels, err := s.catalogRepo.ActiveLevels(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.catalogRepo.LessonCountsByLevel(ctx)
	if err != nil {
		return nil, err
	}
	completed, err := s.progressRepo.CompletedCountsByLevel(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := make([]models.LevelProgress, 0, len(levels))
	for _, level := range levels {
		total := totals[level.ID]
		done := completed[level.ID]
		percentage := 0
		if total > 0 {
			percentage = done * 100 / total
		}
		summary = append(summary, models.LevelProgress{
			LevelID:    level.ID,
			Completed:  done,
			Total:      total,
			Percentage: percentage,
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, summary); err != nil {
			s.log.ErrorErr("failed to cache summary", err, "user_id", userID)
		}
	}
	return summary, nil
}

// Bookmarks returns the caller's bookmarked lessons ordered by level order,
// then lesson order.
func (s *ProgressService) Bookmarks(ctx context.Context, userID uuid.UUID) ([]models.BookmarkedLesson, error) {
	bookmarks, err := s.progressRepo.BookmarkedLessons(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Slice(bookmarks, func(i, j int) bool {
		if bookmarks[i].LevelOrder != bookmarks[j].LevelOrder {
			return bookmarks[i].LevelOrder < bookmarks[j].LevelOrder
		}
		return bookmarks[i].Lesson.OrderIndex < bookmarks[j].Lesson.OrderIndex
	})
	return bookmarks, nil
}
