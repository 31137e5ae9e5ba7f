package progress

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/HushmKun/SeekerOfLight/internal/app_errors"
	"github.com/HushmKun/SeekerOfLight/internal/models"
	"github.com/HushmKun/SeekerOfLight/pkg/logger"
)

func boolPtr(v bool) *bool { return &v }

type fakeCatalogRepo struct {
	levels  []models.Level
	lessons map[uuid.UUID][]models.Lesson
}

func (f *fakeCatalogRepo) Levels(_ context.Context) ([]models.Level, error) {
	out := make([]models.Level, len(f.levels))
	copy(out, f.levels)
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (f *fakeCatalogRepo) ActiveLevels(ctx context.Context) ([]models.Level, error) {
	all, _ := f.Levels(ctx)
	out := make([]models.Level, 0, len(all))
	for _, level := range all {
		if level.IsActive {
			out = append(out, level)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) LevelByID(_ context.Context, id uuid.UUID) (models.Level, error) {
	for _, level := range f.levels {
		if level.ID == id && level.IsActive {
			return level, nil
		}
	}
	return models.Level{}, app_errors.ErrLevelNotFound
}

func (f *fakeCatalogRepo) LessonByID(_ context.Context, id uuid.UUID) (models.Lesson, error) {
	for _, lessons := range f.lessons {
		for _, lesson := range lessons {
			if lesson.ID == id {
				return lesson, nil
			}
		}
	}
	return models.Lesson{}, app_errors.ErrLessonNotFound
}

func (f *fakeCatalogRepo) LessonsByLevel(_ context.Context, levelID uuid.UUID) ([]models.Lesson, error) {
	lessons := make([]models.Lesson, len(f.lessons[levelID]))
	copy(lessons, f.lessons[levelID])
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].OrderIndex < lessons[j].OrderIndex })
	return lessons, nil
}

func (f *fakeCatalogRepo) LessonCountsByLevel(_ context.Context) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(f.lessons))
	for levelID, lessons := range f.lessons {
		counts[levelID] = len(lessons)
	}
	return counts, nil
}

func (f *fakeCatalogRepo) levelOf(lessonID uuid.UUID) uuid.UUID {
	for levelID, lessons := range f.lessons {
		for _, lesson := range lessons {
			if lesson.ID == lessonID {
				return levelID
			}
		}
	}
	return uuid.Nil
}

type fakeProgressRepo struct {
	catalog *fakeCatalogRepo
	records map[uuid.UUID]map[uuid.UUID]*models.UserProgress
	clock   time.Time
}

func newFakeProgressRepo(catalog *fakeCatalogRepo) *fakeProgressRepo {
	return &fakeProgressRepo{
		catalog: catalog,
		records: make(map[uuid.UUID]map[uuid.UUID]*models.UserProgress),
		clock:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (f *fakeProgressRepo) Upsert(_ context.Context, userID, lessonID uuid.UUID, patch models.ProgressPatch) (models.UserProgress, error) {
	userRecords, ok := f.records[userID]
	if !ok {
		userRecords = make(map[uuid.UUID]*models.UserProgress)
		f.records[userID] = userRecords
	}
	record, ok := userRecords[lessonID]
	if !ok {
		record = &models.UserProgress{UserID: userID, LessonID: lessonID}
		userRecords[lessonID] = record
	}
	f.clock = f.clock.Add(time.Second)
	record.ApplyPatch(patch, f.clock)
	return *record, nil
}

func (f *fakeProgressRepo) Get(_ context.Context, userID, lessonID uuid.UUID) (models.UserProgress, error) {
	if record, ok := f.records[userID][lessonID]; ok {
		return *record, nil
	}
	return models.UserProgress{}, app_errors.ErrProgressNotFound
}

func (f *fakeProgressRepo) CompletedCountsByLevel(_ context.Context, userID uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int)
	for lessonID, record := range f.records[userID] {
		if record.IsCompleted {
			counts[f.catalog.levelOf(lessonID)]++
		}
	}
	return counts, nil
}

func (f *fakeProgressRepo) CompletedLessonIDs(_ context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	done := make(map[uuid.UUID]bool)
	for lessonID, record := range f.records[userID] {
		if record.IsCompleted {
			done[lessonID] = true
		}
	}
	return done, nil
}

func (f *fakeProgressRepo) LatestIncomplete(_ context.Context, userID uuid.UUID) (*models.UserProgress, error) {
	var latest *models.UserProgress
	for _, record := range f.records[userID] {
		if record.IsCompleted {
			continue
		}
		if latest == nil || record.LastAccessed.After(latest.LastAccessed) {
			copied := *record
			latest = &copied
		}
	}
	return latest, nil
}

func (f *fakeProgressRepo) BookmarkedLessons(_ context.Context, userID uuid.UUID) ([]models.BookmarkedLesson, error) {
	var out []models.BookmarkedLesson
	for lessonID, record := range f.records[userID] {
		if !record.Bookmarked {
			continue
		}
		lesson, err := f.catalog.LessonByID(context.Background(), lessonID)
		if err != nil {
			return nil, err
		}
		var levelOrder int
		for _, level := range f.catalog.levels {
			if level.ID == lesson.LevelID {
				levelOrder = level.OrderIndex
			}
		}
		out = append(out, models.BookmarkedLesson{Lesson: lesson, LevelOrder: levelOrder})
	}
	return out, nil
}

var errCacheMiss = errors.New("cache miss")

type fakeSummaryCache struct {
	entries       map[uuid.UUID][]models.LevelProgress
	invalidations int
}

func newFakeSummaryCache() *fakeSummaryCache {
	return &fakeSummaryCache{entries: make(map[uuid.UUID][]models.LevelProgress)}
}

func (f *fakeSummaryCache) Get(_ context.Context, userID uuid.UUID) ([]models.LevelProgress, error) {
	if summary, ok := f.entries[userID]; ok {
		return summary, nil
	}
	return nil, errCacheMiss
}

func (f *fakeSummaryCache) Set(_ context.Context, userID uuid.UUID, summary []models.LevelProgress) error {
	f.entries[userID] = summary
	return nil
}

func (f *fakeSummaryCache) Invalidate(_ context.Context, userID uuid.UUID) error {
	delete(f.entries, userID)
	f.invalidations++
	return nil
}

// fixture builds the demo curriculum: Beginner (5 lessons, threshold 0),
// Intermediate (5 lessons, threshold 3), Advanced (3 lessons, threshold 2).
type fixture struct {
	catalog  *fakeCatalogRepo
	progress *fakeProgressRepo
	cache    *fakeSummaryCache
	service  *ProgressService

	beginner     models.Level
	intermediate models.Level
	advanced     models.Level
}

func newFixture() *fixture {
	beginner := models.Level{ID: uuid.New(), Title: "Beginner", OrderIndex: 1, IsActive: true, UnlockThreshold: 0}
	intermediate := models.Level{ID: uuid.New(), Title: "Intermediate", OrderIndex: 2, IsActive: true, UnlockThreshold: 3}
	advanced := models.Level{ID: uuid.New(), Title: "Advanced", OrderIndex: 3, IsActive: true, UnlockThreshold: 2}

	catalog := &fakeCatalogRepo{
		levels:  []models.Level{beginner, intermediate, advanced},
		lessons: make(map[uuid.UUID][]models.Lesson),
	}
	for levelID, count := range map[uuid.UUID]int{beginner.ID: 5, intermediate.ID: 5, advanced.ID: 3} {
		for i := 1; i <= count; i++ {
			catalog.lessons[levelID] = append(catalog.lessons[levelID], models.Lesson{
				ID:          uuid.New(),
				LevelID:     levelID,
				ContentType: models.ContentTypeText,
				OrderIndex:  i,
			})
		}
	}

	progress := newFakeProgressRepo(catalog)
	cache := newFakeSummaryCache()
	return &fixture{
		catalog:      catalog,
		progress:     progress,
		cache:        cache,
		service:      NewProgressService(logger.New("local"), catalog, progress, cache),
		beginner:     beginner,
		intermediate: intermediate,
		advanced:     advanced,
	}
}

// complete marks the first n lessons of a level done for the user.
func (f *fixture) complete(userID uuid.UUID, level models.Level, n int) {
	lessons, _ := f.catalog.LessonsByLevel(context.Background(), level.ID)
	for i := 0; i < n; i++ {
		if _, err := f.progress.Upsert(context.Background(), userID, lessons[i].ID, models.ProgressPatch{IsCompleted: boolPtr(true)}); err != nil {
			panic(err)
		}
	}
}
