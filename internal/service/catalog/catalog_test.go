package catalog

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HushmKun/SeekerOfLight/internal/app_errors"
	"github.com/HushmKun/SeekerOfLight/internal/models"
	"github.com/HushmKun/SeekerOfLight/pkg/logger"
)

type fakeCatalogRepo struct {
	levels  map[uuid.UUID]models.Level
	lessons map[uuid.UUID]models.Lesson

	deletedLevels  []uuid.UUID
	deletedLessons []uuid.UUID
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		levels:  make(map[uuid.UUID]models.Level),
		lessons: make(map[uuid.UUID]models.Lesson),
	}
}

func (f *fakeCatalogRepo) CreateLevel(_ context.Context, level models.Level) (*models.Level, error) {
	level.ID = uuid.New()
	f.levels[level.ID] = level
	return &level, nil
}

func (f *fakeCatalogRepo) LevelByID(_ context.Context, id uuid.UUID) (models.Level, error) {
	if level, ok := f.levels[id]; ok && level.IsActive {
		return level, nil
	}
	return models.Level{}, app_errors.ErrLevelNotFound
}

func (f *fakeCatalogRepo) DeleteLevelAndCompact(_ context.Context, levelID uuid.UUID) error {
	if _, ok := f.levels[levelID]; !ok {
		return app_errors.ErrLevelNotFound
	}
	delete(f.levels, levelID)
	f.deletedLevels = append(f.deletedLevels, levelID)
	return nil
}

func (f *fakeCatalogRepo) CreateLesson(_ context.Context, lesson models.Lesson) (*models.Lesson, error) {
	lesson.ID = uuid.New()
	f.lessons[lesson.ID] = lesson
	return &lesson, nil
}

func (f *fakeCatalogRepo) LessonByID(_ context.Context, id uuid.UUID) (models.Lesson, error) {
	if lesson, ok := f.lessons[id]; ok {
		return lesson, nil
	}
	return models.Lesson{}, app_errors.ErrLessonNotFound
}

func (f *fakeCatalogRepo) LessonsByLevel(_ context.Context, levelID uuid.UUID) ([]models.Lesson, error) {
	var out []models.Lesson
	for _, lesson := range f.lessons {
		if lesson.LevelID == levelID {
			out = append(out, lesson)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) LessonsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Lesson, error) {
	out := make([]models.Lesson, 0, len(ids))
	for _, id := range ids {
		if lesson, ok := f.lessons[id]; ok {
			out = append(out, lesson)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) SetLessonVideo(_ context.Context, lessonID uuid.UUID, objectKey string) error {
	lesson, ok := f.lessons[lessonID]
	if !ok {
		return app_errors.ErrLessonNotFound
	}
	lesson.VideoObjectKey = &objectKey
	f.lessons[lessonID] = lesson
	return nil
}

func (f *fakeCatalogRepo) DeleteLessonAndCompact(_ context.Context, lessonID uuid.UUID) error {
	if _, ok := f.lessons[lessonID]; !ok {
		return app_errors.ErrLessonNotFound
	}
	delete(f.lessons, lessonID)
	f.deletedLessons = append(f.deletedLessons, lessonID)
	return nil
}

type fakeProgressStore struct {
	upserts []uuid.UUID
}

func (f *fakeProgressStore) Upsert(_ context.Context, userID, lessonID uuid.UUID, patch models.ProgressPatch) (models.UserProgress, error) {
	f.upserts = append(f.upserts, lessonID)
	up := models.UserProgress{UserID: userID, LessonID: lessonID}
	up.ApplyPatch(patch, up.LastAccessed)
	return up, nil
}

type fakeMediaStorage struct {
	objects map[string][]byte
	deleted []string
}

func newFakeMediaStorage() *fakeMediaStorage {
	return &fakeMediaStorage{objects: make(map[string][]byte)}
}

func (f *fakeMediaStorage) UploadVideo(_ context.Context, lessonID uuid.UUID, _ string, reader io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	key := "lessons/" + lessonID.String() + "/video"
	f.objects[key] = data
	return key, nil
}

func (f *fakeMediaStorage) GetVideoURL(_ context.Context, objectKey string) (string, error) {
	return "https://media.test/" + objectKey, nil
}

func (f *fakeMediaStorage) DeleteVideo(_ context.Context, objectKey string) error {
	delete(f.objects, objectKey)
	f.deleted = append(f.deleted, objectKey)
	return nil
}

type fakeSearchRepo struct {
	indexed map[uuid.UUID]models.Lesson
	removed []uuid.UUID
	hits    []uuid.UUID
}

func newFakeSearchRepo() *fakeSearchRepo {
	return &fakeSearchRepo{indexed: make(map[uuid.UUID]models.Lesson)}
}

func (f *fakeSearchRepo) Index(_ context.Context, lesson models.Lesson) error {
	f.indexed[lesson.ID] = lesson
	return nil
}

func (f *fakeSearchRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.indexed, id)
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeSearchRepo) Search(_ context.Context, _ string, _ int) ([]uuid.UUID, error) {
	return f.hits, nil
}

type catalogFixture struct {
	repo     *fakeCatalogRepo
	progress *fakeProgressStore
	media    *fakeMediaStorage
	search   *fakeSearchRepo
	service  *CatalogService
	level    models.Level
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	repo := newFakeCatalogRepo()
	progress := &fakeProgressStore{}
	media := newFakeMediaStorage()
	search := newFakeSearchRepo()
	service := NewCatalogService(logger.New("local"), repo, progress, media, search)

	level, err := service.CreateLevel(context.Background(), models.Level{Title: "Beginner", OrderIndex: 1, IsActive: true})
	require.NoError(t, err)

	return &catalogFixture{
		repo:     repo,
		progress: progress,
		media:    media,
		search:   search,
		service:  service,
		level:    *level,
	}
}

func TestCreateLevel_RejectsNonPositiveOrder(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.service.CreateLevel(context.Background(), models.Level{Title: "Bad", OrderIndex: 0})
	assert.ErrorIs(t, err, app_errors.ErrInvalidOrderIndex)
}

func TestCreateLevel_ClampsNegativeThreshold(t *testing.T) {
	f := newCatalogFixture(t)

	level, err := f.service.CreateLevel(context.Background(), models.Level{Title: "Next", OrderIndex: 2, UnlockThreshold: -3})
	require.NoError(t, err)
	assert.Equal(t, 0, level.UnlockThreshold)
}

func TestCreateLesson_DefaultsToText(t *testing.T) {
	f := newCatalogFixture(t)

	lesson, err := f.service.CreateLesson(context.Background(), models.Lesson{
		LevelID:    f.level.ID,
		Title:      "Intro",
		OrderIndex: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ContentTypeText, lesson.ContentType)
	assert.Contains(t, f.search.indexed, lesson.ID)
}

func TestCreateLesson_RejectsUnknownContentType(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.service.CreateLesson(context.Background(), models.Lesson{
		LevelID:     f.level.ID,
		Title:       "Podcast",
		ContentType: "audio",
		OrderIndex:  1,
	})
	assert.ErrorIs(t, err, app_errors.ErrInvalidContentType)
}

func TestCreateLesson_RequiresExistingLevel(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.service.CreateLesson(context.Background(), models.Lesson{
		LevelID:    uuid.New(),
		Title:      "Orphan",
		OrderIndex: 1,
	})
	assert.ErrorIs(t, err, app_errors.ErrLevelNotFound)
}

func TestLessonDetail_AnonymousDoesNotTouchProgress(t *testing.T) {
	f := newCatalogFixture(t)
	lesson, err := f.service.CreateLesson(context.Background(), models.Lesson{LevelID: f.level.ID, Title: "Intro", OrderIndex: 1})
	require.NoError(t, err)

	detail, err := f.service.LessonDetail(context.Background(), lesson.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Nil(t, detail.Progress)
	assert.Empty(t, f.progress.upserts)
}

func TestLessonDetail_AuthenticatedViewCountsAsInteraction(t *testing.T) {
	f := newCatalogFixture(t)
	lesson, err := f.service.CreateLesson(context.Background(), models.Lesson{LevelID: f.level.ID, Title: "Intro", OrderIndex: 1})
	require.NoError(t, err)

	userID := uuid.New()
	detail, err := f.service.LessonDetail(context.Background(), lesson.ID, userID)
	require.NoError(t, err)
	require.NotNil(t, detail.Progress)
	assert.Equal(t, userID, detail.Progress.UserID)
	assert.Equal(t, []uuid.UUID{lesson.ID}, f.progress.upserts)
}

func TestUploadLessonVideo(t *testing.T) {
	f := newCatalogFixture(t)
	lesson, err := f.service.CreateLesson(context.Background(), models.Lesson{
		LevelID:     f.level.ID,
		Title:       "Setup",
		ContentType: models.ContentTypeVideo,
		OrderIndex:  1,
	})
	require.NoError(t, err)

	payload := []byte("mp4 bytes")
	updated, err := f.service.UploadLessonVideo(context.Background(), lesson.ID, "setup.mp4", bytes.NewReader(payload), int64(len(payload)), "video/mp4")
	require.NoError(t, err)
	require.NotNil(t, updated.VideoObjectKey)
	require.NotNil(t, updated.VideoURL)
	assert.Contains(t, *updated.VideoURL, *updated.VideoObjectKey)

	stored, err := f.repo.LessonByID(context.Background(), lesson.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.VideoObjectKey)
}

func TestUploadLessonVideo_RejectsNonVideoLesson(t *testing.T) {
	f := newCatalogFixture(t)
	lesson, err := f.service.CreateLesson(context.Background(), models.Lesson{LevelID: f.level.ID, Title: "Intro", OrderIndex: 1})
	require.NoError(t, err)

	_, err = f.service.UploadLessonVideo(context.Background(), lesson.ID, "x.mp4", bytes.NewReader(nil), 0, "video/mp4")
	assert.ErrorIs(t, err, app_errors.ErrNotVideoLesson)
}

func TestResolveVideoURL_PresignsUploadedObject(t *testing.T) {
	f := newCatalogFixture(t)

	key := "lessons/abc/video.mp4"
	lesson := models.Lesson{ID: uuid.New(), ContentType: models.ContentTypeVideo, VideoObjectKey: &key}
	f.service.ResolveVideoURL(context.Background(), &lesson)

	require.NotNil(t, lesson.VideoURL)
	assert.Contains(t, *lesson.VideoURL, key)
}

func TestResolveVideoURL_ExternalURLPassesThrough(t *testing.T) {
	f := newCatalogFixture(t)

	external := "http://example.com/video1"
	lesson := models.Lesson{ID: uuid.New(), ContentType: models.ContentTypeVideo, VideoURL: &external}
	f.service.ResolveVideoURL(context.Background(), &lesson)

	require.NotNil(t, lesson.VideoURL)
	assert.Equal(t, external, *lesson.VideoURL)
}

func TestDeleteLesson_CleansUpMediaAndIndex(t *testing.T) {
	f := newCatalogFixture(t)
	lesson, err := f.service.CreateLesson(context.Background(), models.Lesson{
		LevelID:     f.level.ID,
		Title:       "Setup",
		ContentType: models.ContentTypeVideo,
		OrderIndex:  1,
	})
	require.NoError(t, err)

	payload := []byte("mp4 bytes")
	_, err = f.service.UploadLessonVideo(context.Background(), lesson.ID, "setup.mp4", bytes.NewReader(payload), int64(len(payload)), "video/mp4")
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteLesson(context.Background(), lesson.ID))

	assert.Equal(t, []uuid.UUID{lesson.ID}, f.repo.deletedLessons)
	assert.Equal(t, []uuid.UUID{lesson.ID}, f.search.removed)
	assert.Len(t, f.media.deleted, 1)
	assert.Empty(t, f.media.objects)
}

func TestDeleteLevel_CascadesCleanup(t *testing.T) {
	f := newCatalogFixture(t)
	first, err := f.service.CreateLesson(context.Background(), models.Lesson{LevelID: f.level.ID, Title: "One", OrderIndex: 1})
	require.NoError(t, err)
	second, err := f.service.CreateLesson(context.Background(), models.Lesson{LevelID: f.level.ID, Title: "Two", OrderIndex: 2})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteLevel(context.Background(), f.level.ID))

	assert.Equal(t, []uuid.UUID{f.level.ID}, f.repo.deletedLevels)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, f.search.removed)
}

func TestSearchLessons_PreservesRelevanceOrder(t *testing.T) {
	f := newCatalogFixture(t)
	first, err := f.service.CreateLesson(context.Background(), models.Lesson{LevelID: f.level.ID, Title: "One", OrderIndex: 1})
	require.NoError(t, err)
	second, err := f.service.CreateLesson(context.Background(), models.Lesson{LevelID: f.level.ID, Title: "Two", OrderIndex: 2})
	require.NoError(t, err)

	f.search.hits = []uuid.UUID{second.ID, first.ID}

	lessons, err := f.service.SearchLessons(context.Background(), "lesson", 10)
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, second.ID, lessons[0].ID)
	assert.Equal(t, first.ID, lessons[1].ID)
}
