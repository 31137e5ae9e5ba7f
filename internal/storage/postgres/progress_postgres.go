package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HushmKun/SeekerOfLight/internal/app_errors"
	"github.com/HushmKun/SeekerOfLight/internal/models"
)

type ProgressPostgres struct {
	db *pgxpool.Pool
}

func NewProgressPostgres(db *pgxpool.Pool) *ProgressPostgres {
	return &ProgressPostgres{db: db}
}

const progressColumns = `user_id, lesson_id, is_completed, completed_at, last_accessed, bookmarked`

func scanProgress(row pgx.Row) (models.UserProgress, error) {
	var up models.UserProgress
	err := row.Scan(
		&up.UserID, &up.LessonID, &up.IsCompleted,
		&up.CompletedAt, &up.LastAccessed, &up.Bookmarked,
	)
	return up, err
}

// Upsert creates or patches the (user, lesson) record in one statement, so
// concurrent first touches cannot race into duplicate rows and each patch
// applies to the committed pre-image. completed_at is stamped only when
// is_completed flips from false to true and is never cleared here, matching
// models.UserProgress.ApplyPatch.
func (r *ProgressPostgres) Upsert(ctx context.Context, userID, lessonID uuid.UUID, patch models.ProgressPatch) (models.UserProgress, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO user_progress (user_id, lesson_id, is_completed, completed_at, last_accessed, bookmarked)
		VALUES (
			$1, $2,
			COALESCE($3, FALSE),
			CASE WHEN COALESCE($3, FALSE) THEN $5::timestamptz END,
			$5,
			COALESCE($4, FALSE)
		)
		ON CONFLICT (user_id, lesson_id) DO UPDATE SET
			is_completed = COALESCE($3, user_progress.is_completed),
			completed_at = CASE
				WHEN COALESCE($3, FALSE) AND NOT user_progress.is_completed THEN $5::timestamptz
				ELSE user_progress.completed_at
			END,
			bookmarked = COALESCE($4, user_progress.bookmarked),
			last_accessed = $5
		RETURNING ` + progressColumns

	up, err := scanProgress(r.db.QueryRow(ctx, query, userID, lessonID, patch.IsCompleted, patch.Bookmarked, now))
	if err != nil {
		return models.UserProgress{}, fmt.Errorf("failed to upsert progress: %w", err)
	}
	return up, nil
}

func (r *ProgressPostgres) Get(ctx context.Context, userID, lessonID uuid.UUID) (models.UserProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		  FROM user_progress
		 WHERE user_id = $1 AND lesson_id = $2
	`
	up, err := scanProgress(r.db.QueryRow(ctx, query, userID, lessonID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.UserProgress{}, app_errors.ErrProgressNotFound
		}
		return models.UserProgress{}, fmt.Errorf("failed to get progress: %w", err)
	}
	return up, nil
}

// CompletedCountsByLevel returns the user's completed-lesson counts keyed by
// level id. Levels without completions are absent from the map.
func (r *ProgressPostgres) CompletedCountsByLevel(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int, error) {
	query := `
		SELECT l.level_id, COUNT(*)
		  FROM user_progress up
		  JOIN lessons l ON l.id = up.lesson_id
		 WHERE up.user_id = $1 AND up.is_completed
		 GROUP BY l.level_id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed lessons: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var levelID uuid.UUID
		var count int
		if err := rows.Scan(&levelID, &count); err != nil {
			return nil, err
		}
		counts[levelID] = count
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *ProgressPostgres) CompletedLessonIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	query := `SELECT lesson_id FROM user_progress WHERE user_id = $1 AND is_completed`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed lessons: %w", err)
	}
	defer rows.Close()

	done := make(map[uuid.UUID]bool)
	for rows.Next() {
		var lessonID uuid.UUID
		if err := rows.Scan(&lessonID); err != nil {
			return nil, err
		}
		done[lessonID] = true
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return done, nil
}

// LatestIncomplete returns the user's most recently touched incomplete
// record, nil when the user has none.
func (r *ProgressPostgres) LatestIncomplete(ctx context.Context, userID uuid.UUID) (*models.UserProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		  FROM user_progress
		 WHERE user_id = $1 AND NOT is_completed
		 ORDER BY last_accessed DESC
		 LIMIT 1
	`
	up, err := scanProgress(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest incomplete progress: %w", err)
	}
	return &up, nil
}

// BookmarkedLessons returns the user's bookmarked lessons joined with the
// owning level's order. Callers sort.
func (r *ProgressPostgres) BookmarkedLessons(ctx context.Context, userID uuid.UUID) ([]models.BookmarkedLesson, error) {
	query := `
		SELECT ls.id, ls.level_id, ls.title, ls.content, ls.content_type,
		       ls.duration, ls.order_index, ls.video_url, ls.video_object_key,
		       ls.created_at, ls.updated_at, lv.order_index
		  FROM user_progress up
		  JOIN lessons ls ON ls.id = up.lesson_id
		  JOIN levels lv ON lv.id = ls.level_id
		 WHERE up.user_id = $1 AND up.bookmarked
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarked lessons: %w", err)
	}
	defer rows.Close()

	var bookmarks []models.BookmarkedLesson
	for rows.Next() {
		var b models.BookmarkedLesson
		err := rows.Scan(
			&b.Lesson.ID, &b.Lesson.LevelID, &b.Lesson.Title, &b.Lesson.Content, &b.Lesson.ContentType,
			&b.Lesson.Duration, &b.Lesson.OrderIndex, &b.Lesson.VideoURL, &b.Lesson.VideoObjectKey,
			&b.Lesson.CreatedAt, &b.Lesson.UpdatedAt, &b.LevelOrder,
		)
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bookmarks, nil
}
