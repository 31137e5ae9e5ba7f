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

type CatalogPostgres struct {
	db *pgxpool.Pool
}

func NewCatalogPostgres(db *pgxpool.Pool) *CatalogPostgres {
	return &CatalogPostgres{db: db}
}

// The shift and compact updates move rows through intermediate duplicate
// orders; with the unique checks immediate the first shifted row would abort
// the statement, so the transactions defer them to commit.
const (
	deferLevelOrderCheck  = `SET CONSTRAINTS ` + levelOrderConstraint + ` DEFERRED`
	deferLessonOrderCheck = `SET CONSTRAINTS ` + lessonOrderConstraint + ` DEFERRED`
)

const levelColumns = `id, title, description, order_index, is_active, unlock_threshold, created_at, updated_at`

func scanLevel(row pgx.Row) (models.Level, error) {
	var l models.Level
	err := row.Scan(
		&l.ID, &l.Title, &l.Description, &l.OrderIndex,
		&l.IsActive, &l.UnlockThreshold, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

// CreateLevel inserts a level keeping order_index contiguous: an index past
// max+1 is rejected, an index inside the sequence shifts the tail up by one.
func (r *CatalogPostgres) CreateLevel(ctx context.Context, level models.Level) (*models.Level, error) {
	if level.OrderIndex < 1 {
		return nil, app_errors.ErrInvalidOrderIndex
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var max int
	if err = tx.QueryRow(ctx, `SELECT COALESCE(MAX(order_index), 0) FROM levels`).Scan(&max); err != nil {
		return nil, fmt.Errorf("failed to get max level order: %w", err)
	}
	if level.OrderIndex > max+1 {
		return nil, app_errors.ErrOrderIndexGap
	}

	if _, err = tx.Exec(ctx, deferLevelOrderCheck); err != nil {
		return nil, err
	}

	updateQuery := `
        UPDATE levels SET order_index = order_index + 1
         WHERE order_index >= $1
    `
	if _, err = tx.Exec(ctx, updateQuery, level.OrderIndex); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if level.ID == uuid.Nil {
		level.ID = uuid.New()
	}
	level.CreatedAt = now
	level.UpdatedAt = now

	insertQuery := `
    INSERT INTO levels (
        id, title, description, order_index,
        is_active, unlock_threshold, created_at, updated_at
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err = tx.Exec(ctx, insertQuery,
		level.ID, level.Title, level.Description, level.OrderIndex,
		level.IsActive, level.UnlockThreshold, level.CreatedAt, level.UpdatedAt,
	)
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == uniqueViolation {
			return nil, app_errors.ErrDuplicateLevelOrder
		}
		return nil, err
	}

	// Deferred checks fire here; concurrent creates racing into the same
	// slot surface as a unique violation on commit.
	if err = tx.Commit(ctx); err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == uniqueViolation {
			return nil, app_errors.ErrDuplicateLevelOrder
		}
		return nil, err
	}
	return &level, nil
}

// Levels returns every level, active or not, ascending by order_index.
// Predecessor resolution for the unlock gate needs the full sequence.
func (r *CatalogPostgres) Levels(ctx context.Context) ([]models.Level, error) {
	query := `SELECT ` + levelColumns + ` FROM levels ORDER BY order_index`
	return r.queryLevels(ctx, query)
}

func (r *CatalogPostgres) ActiveLevels(ctx context.Context) ([]models.Level, error) {
	query := `SELECT ` + levelColumns + ` FROM levels WHERE is_active ORDER BY order_index`
	return r.queryLevels(ctx, query)
}

func (r *CatalogPostgres) queryLevels(ctx context.Context, query string) ([]models.Level, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query levels: %w", err)
	}
	defer rows.Close()

	var levels []models.Level
	for rows.Next() {
		l, err := scanLevel(rows)
		if err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return levels, nil
}

// LevelByID looks up an active level. Inactive levels are absent, not errors.
func (r *CatalogPostgres) LevelByID(ctx context.Context, id uuid.UUID) (models.Level, error) {
	query := `SELECT ` + levelColumns + ` FROM levels WHERE id = $1 AND is_active`
	l, err := scanLevel(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Level{}, app_errors.ErrLevelNotFound
		}
		return models.Level{}, fmt.Errorf("failed to get level: %w", err)
	}
	return l, nil
}

func (r *CatalogPostgres) DeleteLevelAndCompact(ctx context.Context, levelID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var orderIndex int
	err = tx.QueryRow(ctx, `SELECT order_index FROM levels WHERE id = $1`, levelID).Scan(&orderIndex)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return app_errors.ErrLevelNotFound
		}
		return fmt.Errorf("failed to get level order: %w", err)
	}

	if _, err = tx.Exec(ctx, deferLevelOrderCheck); err != nil {
		return err
	}

	// Lessons and progress rows go with the level via FK cascade.
	if _, err = tx.Exec(ctx, `DELETE FROM levels WHERE id = $1`, levelID); err != nil {
		return err
	}

	updateQuery := `
        UPDATE levels SET order_index = order_index - 1
         WHERE order_index > $1
    `
	if _, err = tx.Exec(ctx, updateQuery, orderIndex); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const lessonColumns = `id, level_id, title, content, content_type, duration, order_index, video_url, video_object_key, created_at, updated_at`

func scanLesson(row pgx.Row) (models.Lesson, error) {
	var l models.Lesson
	err := row.Scan(
		&l.ID, &l.LevelID, &l.Title, &l.Content, &l.ContentType,
		&l.Duration, &l.OrderIndex, &l.VideoURL, &l.VideoObjectKey,
		&l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

// CreateLesson inserts a lesson with the same contiguity rules as CreateLevel,
// scoped to the owning level.
func (r *CatalogPostgres) CreateLesson(ctx context.Context, lesson models.Lesson) (*models.Lesson, error) {
	if lesson.OrderIndex < 1 {
		return nil, app_errors.ErrInvalidOrderIndex
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var max int
	err = tx.QueryRow(ctx, `SELECT COALESCE(MAX(order_index), 0) FROM lessons WHERE level_id = $1`, lesson.LevelID).Scan(&max)
	if err != nil {
		return nil, fmt.Errorf("failed to get max lesson order: %w", err)
	}
	if lesson.OrderIndex > max+1 {
		return nil, app_errors.ErrOrderIndexGap
	}

	if _, err = tx.Exec(ctx, deferLessonOrderCheck); err != nil {
		return nil, err
	}

	updateQuery := `
        UPDATE lessons SET order_index = order_index + 1
         WHERE level_id = $1 AND order_index >= $2
    `
	if _, err = tx.Exec(ctx, updateQuery, lesson.LevelID, lesson.OrderIndex); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if lesson.ID == uuid.Nil {
		lesson.ID = uuid.New()
	}
	lesson.CreatedAt = now
	lesson.UpdatedAt = now

	insertQuery := `
    INSERT INTO lessons (
        id, level_id, title, content, content_type,
        duration, order_index, video_url, video_object_key, created_at, updated_at
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
	_, err = tx.Exec(ctx, insertQuery,
		lesson.ID, lesson.LevelID, lesson.Title, lesson.Content, lesson.ContentType,
		lesson.Duration, lesson.OrderIndex, lesson.VideoURL, lesson.VideoObjectKey,
		lesson.CreatedAt, lesson.UpdatedAt,
	)
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == uniqueViolation {
			return nil, app_errors.ErrDuplicateLessonOrder
		}
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == uniqueViolation {
			return nil, app_errors.ErrDuplicateLessonOrder
		}
		return nil, err
	}
	return &lesson, nil
}

func (r *CatalogPostgres) LessonByID(ctx context.Context, id uuid.UUID) (models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`
	l, err := scanLesson(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Lesson{}, app_errors.ErrLessonNotFound
		}
		return models.Lesson{}, fmt.Errorf("failed to get lesson: %w", err)
	}
	return l, nil
}

func (r *CatalogPostgres) LessonsByLevel(ctx context.Context, levelID uuid.UUID) ([]models.Lesson, error) {
	query := `
        SELECT ` + lessonColumns + `
          FROM lessons
         WHERE level_id = $1
         ORDER BY order_index
    `
	rows, err := r.db.Query(ctx, query, levelID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons by level: %w", err)
	}
	defer rows.Close()

	var lessons []models.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *CatalogPostgres) LessonsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Lesson, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]models.Lesson, len(ids))
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		byID[l.ID] = l
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	// Preserve the requested (relevance) order.
	lessons := make([]models.Lesson, 0, len(byID))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			lessons = append(lessons, l)
		}
	}
	return lessons, nil
}

// LessonCountsByLevel returns lesson totals keyed by level id.
func (r *CatalogPostgres) LessonCountsByLevel(ctx context.Context) (map[uuid.UUID]int, error) {
	rows, err := r.db.Query(ctx, `SELECT level_id, COUNT(*) FROM lessons GROUP BY level_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to count lessons: %w", err)
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

func (r *CatalogPostgres) SetLessonVideo(ctx context.Context, lessonID uuid.UUID, objectKey string) error {
	query := `
        UPDATE lessons SET video_object_key = $1, updated_at = $2
         WHERE id = $3
    `
	tag, err := r.db.Exec(ctx, query, objectKey, time.Now().UTC(), lessonID)
	if err != nil {
		return fmt.Errorf("failed to set lesson video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrLessonNotFound
	}
	return nil
}

func (r *CatalogPostgres) DeleteLessonAndCompact(ctx context.Context, lessonID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var levelID uuid.UUID
	var orderIndex int
	err = tx.QueryRow(ctx, `SELECT level_id, order_index FROM lessons WHERE id = $1`, lessonID).Scan(&levelID, &orderIndex)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return app_errors.ErrLessonNotFound
		}
		return fmt.Errorf("failed to get lesson order: %w", err)
	}

	if _, err = tx.Exec(ctx, deferLessonOrderCheck); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM lessons WHERE id = $1`, lessonID); err != nil {
		return err
	}

	updateQuery := `
        UPDATE lessons SET order_index = order_index - 1
         WHERE level_id = $1 AND order_index > $2
    `
	if _, err = tx.Exec(ctx, updateQuery, levelID, orderIndex); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
