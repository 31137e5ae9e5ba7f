package catalog

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/HushmKun/SeekerOfLight/internal/models"
	"github.com/HushmKun/SeekerOfLight/pkg/logger"
)

type catalogRepo interface {
	CreateLevel(ctx context.Context, level models.Level) (*models.Level, error)
	LevelByID(ctx context.Context, id uuid.UUID) (models.Level, error)
	DeleteLevelAndCompact(ctx context.Context, levelID uuid.UUID) error
	CreateLesson(ctx context.Context, lesson models.Lesson) (*models.Lesson, error)
	LessonByID(ctx context.Context, id uuid.UUID) (models.Lesson, error)
	LessonsByLevel(ctx context.Context, levelID uuid.UUID) ([]models.Lesson, error)
	LessonsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Lesson, error)
	SetLessonVideo(ctx context.Context, lessonID uuid.UUID, objectKey string) error
	DeleteLessonAndCompact(ctx context.Context, lessonID uuid.UUID) error
}

type progressStore interface {
	Upsert(ctx context.Context, userID, lessonID uuid.UUID, patch models.ProgressPatch) (models.UserProgress, error)
}

type mediaStorage interface {
	UploadVideo(ctx context.Context, lessonID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error)
	GetVideoURL(ctx context.Context, objectKey string) (string, error)
	DeleteVideo(ctx context.Context, objectKey string) error
}

type searchRepo interface {
	Index(ctx context.Context, lesson models.Lesson) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, size int) ([]uuid.UUID, error)
}

// CatalogService serves curriculum reads and authoring writes. Unlock
// annotation lives in the progress service; the catalog never gates reads.
type CatalogService struct {
	log      logger.Log
	repo     catalogRepo
	progress progressStore
	media    mediaStorage
	search   searchRepo
}

func NewCatalogService(log logger.Log, repo catalogRepo, progress progressStore, media mediaStorage, search searchRepo) *CatalogService {
	return &CatalogService{
		log:      log,
		repo:     repo,
		progress: progress,
		media:    media,
		search:   search,
	}
}

// LevelLessons lists a level's lessons in order. Access is advisory: locked
// levels still serve their lesson list.
func (s *CatalogService) LevelLessons(ctx context.Context, levelID uuid.UUID) ([]models.Lesson, error) {
	if _, err := s.repo.LevelByID(ctx, levelID); err != nil {
		return nil, err
	}
	lessons, err := s.repo.LessonsByLevel(ctx, levelID)
	if err != nil {
		return nil, err
	}
	for i := range lessons {
		s.ResolveVideoURL(ctx, &lessons[i])
	}
	return lessons, nil
}

// LessonDetail returns a lesson with the caller's progress record.
// Authenticated views count as an interaction: the record is created lazily
// and last_accessed advances.
func (s *CatalogService) LessonDetail(ctx context.Context, lessonID, userID uuid.UUID) (models.LessonDetail, error) {
	lesson, err := s.repo.LessonByID(ctx, lessonID)
	if err != nil {
		return models.LessonDetail{}, err
	}
	s.ResolveVideoURL(ctx, &lesson)

	detail := models.LessonDetail{Lesson: lesson}
	if userID != uuid.Nil {
		up, err := s.progress.Upsert(ctx, userID, lessonID, models.ProgressPatch{})
		if err != nil {
			return models.LessonDetail{}, err
		}
		detail.Progress = &up
	}
	return detail, nil
}

// ResolveVideoURL swaps an uploaded object key for a presigned URL. External
// video URLs pass through untouched; presign failures leave the lesson as is.
func (s *CatalogService) ResolveVideoURL(ctx context.Context, lesson *models.Lesson) {
	if lesson.VideoObjectKey == nil || s.media == nil {
		return
	}
	url, err := s.media.GetVideoURL(ctx, *lesson.VideoObjectKey)
	if err != nil {
		s.log.ErrorErr("failed to presign lesson video", err, "lesson_id", lesson.ID)
		return
	}
	lesson.VideoURL = &url
}
