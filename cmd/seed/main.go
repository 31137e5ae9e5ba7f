// Command seed resets the database and loads a small demo curriculum: three
// levels with unlock thresholds 0/3/2, their lessons, four demo learners and
// progress far enough along to exercise level unlocking.
package main

import (
	"context"
	"math/rand"

	"github.com/google/uuid"

	"github.com/HushmKun/SeekerOfLight/internal/config"
	"github.com/HushmKun/SeekerOfLight/internal/models"
	"github.com/HushmKun/SeekerOfLight/internal/storage/postgres"
	"github.com/HushmKun/SeekerOfLight/pkg/logger"
)

const filler = "Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua."

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

type seedLevel struct {
	level   models.Level
	lessons []models.Lesson
}

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	ctx := context.Background()

	pg, err := postgres.NewPostgresPool(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()

	if err := pg.Migrate(ctx); err != nil {
		log.FatalErr("error applying migrations", err)
	}

	log.Info("clearing existing data")
	for _, table := range []string{"user_progress", "lessons", "levels", "users"} {
		if _, err := pg.Pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			log.FatalErr("error clearing table "+table, err)
		}
	}

	users := postgres.NewUserPostgres(pg.Pool)
	catalog := postgres.NewCatalogPostgres(pg.Pool)
	progress := postgres.NewProgressPostgres(pg.Pool)

	hussein := seedUser(ctx, log, users, "HushmKun@outlook.com", "Hussein", "Mukhtar")
	alice := seedUser(ctx, log, users, "alice@example.com", "Alice", "Summers")
	bob := seedUser(ctx, log, users, "bob@example.com", "Bob", "Summers")
	charlie := seedUser(ctx, log, users, "charlie@example.com", "Charlie", "Summers")

	curriculum := []seedLevel{
		{
			level: models.Level{
				Title:           "Beginner",
				Description:     "Start your journey with the fundamentals.",
				OrderIndex:      1,
				IsActive:        true,
				UnlockThreshold: 0,
			},
			lessons: []models.Lesson{
				{Title: "Introduction to the Course", Content: filler, ContentType: models.ContentTypeText, Duration: intPtr(5)},
				{Title: "Setting Up Your Environment", Content: filler, ContentType: models.ContentTypeVideo, Duration: intPtr(15), VideoURL: strPtr("http://example.com/video1")},
				{Title: "Basic Concepts Part 1", Content: filler, ContentType: models.ContentTypeText, Duration: intPtr(10)},
				{Title: "Basic Concepts Part 2", Content: filler, ContentType: models.ContentTypeVideo, Duration: intPtr(12), VideoURL: strPtr("http://example.com/video2")},
				{Title: "Knowledge Check: Basics", Content: filler, ContentType: models.ContentTypeQuiz, Duration: intPtr(8)},
			},
		},
		{
			level: models.Level{
				Title:           "Intermediate",
				Description:     "Build on your foundational knowledge with more advanced topics.",
				OrderIndex:      2,
				IsActive:        true,
				UnlockThreshold: 3,
			},
			lessons: []models.Lesson{
				{Title: "Design Patterns", Content: filler, ContentType: models.ContentTypeText, Duration: intPtr(5)},
				{Title: "Software Development Life Cycles", Content: filler, ContentType: models.ContentTypeVideo, Duration: intPtr(15), VideoURL: strPtr("http://example.com/video1")},
				{Title: "How to think", Content: filler, ContentType: models.ContentTypeText, Duration: intPtr(10)},
				{Title: "Best Practices", Content: filler, ContentType: models.ContentTypeVideo, Duration: intPtr(12), VideoURL: strPtr("http://example.com/video2")},
				{Title: "Knowledge Check: Intermediate", Content: filler, ContentType: models.ContentTypeQuiz, Duration: intPtr(8)},
			},
		},
		{
			level: models.Level{
				Title:           "Advanced",
				Description:     "Master the subject with expert-level insights and complex projects.",
				OrderIndex:      3,
				IsActive:        true,
				UnlockThreshold: 2,
			},
			lessons: []models.Lesson{
				{Title: "Performance Optimization", Content: filler, ContentType: models.ContentTypeText, Duration: intPtr(10)},
				{Title: "Scaling Your Application", Content: filler, ContentType: models.ContentTypeVideo, Duration: intPtr(12), VideoURL: strPtr("http://example.com/video2")},
				{Title: "Final Project: Build a Full-Scale App", Content: filler, ContentType: models.ContentTypeQuiz, Duration: intPtr(8)},
			},
		},
	}

	var lessons []models.Lesson
	var levelOrders []int
	for _, sl := range curriculum {
		created, err := catalog.CreateLevel(ctx, sl.level)
		if err != nil {
			log.FatalErr("error creating level "+sl.level.Title, err)
		}
		for i, lesson := range sl.lessons {
			lesson.LevelID = created.ID
			lesson.OrderIndex = i + 1
			createdLesson, err := catalog.CreateLesson(ctx, lesson)
			if err != nil {
				log.FatalErr("error creating lesson "+lesson.Title, err)
			}
			lessons = append(lessons, *createdLesson)
			levelOrders = append(levelOrders, created.OrderIndex)
		}
		log.Info("created level", "title", created.Title, "lessons", len(sl.lessons))
	}

	complete := models.ProgressPatch{IsCompleted: boolPtr(true)}

	// Hussein and Alice are deep into the curriculum: first eight lessons
	// done, currently on the ninth.
	for _, userID := range []uuid.UUID{hussein, alice} {
		for i, lesson := range lessons {
			switch {
			case i < 8:
				mustUpsert(ctx, log, progress, userID, lesson.ID, complete)
			case i == 8:
				mustUpsert(ctx, log, progress, userID, lesson.ID, models.ProgressPatch{})
			}
		}
	}

	// Bob finished the first level and opened the second.
	for i, lesson := range lessons {
		switch {
		case levelOrders[i] == 1:
			mustUpsert(ctx, log, progress, bob, lesson.ID, complete)
		case i == 5:
			mustUpsert(ctx, log, progress, bob, lesson.ID, models.ProgressPatch{})
		}
	}

	// Charlie is just starting out, with a couple of bookmarks.
	for _, lesson := range lessons[:2] {
		mustUpsert(ctx, log, progress, charlie, lesson.ID, models.ProgressPatch{
			IsCompleted: boolPtr(true),
			Bookmarked:  boolPtr(rand.Intn(2) == 0),
		})
	}
	mustUpsert(ctx, log, progress, charlie, lessons[2].ID, models.ProgressPatch{Bookmarked: boolPtr(true)})

	log.Info("database populated", "lessons", len(lessons))
}

func seedUser(ctx context.Context, log logger.Log, users *postgres.UserPostgres, email, firstName, lastName string) uuid.UUID {
	user := models.User{
		ID:        uuid.New(),
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  true,
	}
	if err := users.EnsureUser(ctx, user); err != nil {
		log.FatalErr("error creating user "+email, err)
	}
	return user.ID
}

func mustUpsert(ctx context.Context, log logger.Log, progress *postgres.ProgressPostgres, userID, lessonID uuid.UUID, patch models.ProgressPatch) {
	if _, err := progress.Upsert(ctx, userID, lessonID, patch); err != nil {
		log.FatalErr("error creating progress record", err)
	}
}
