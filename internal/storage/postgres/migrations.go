package postgres

import (
	"context"
	"fmt"
)

// Ordering uniqueness is deferrable: shift-inserts and compaction move rows
// through intermediate duplicate orders inside one transaction, so the check
// must wait for commit when those paths defer it.
const (
	levelOrderConstraint  = "levels_order_index_key"
	lessonOrderConstraint = "lessons_level_order_key"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    email VARCHAR(254) NOT NULL DEFAULT '',
    first_name VARCHAR(30) NOT NULL DEFAULT '',
    last_name VARCHAR(30) NOT NULL DEFAULT '',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    date_joined TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS levels (
    id UUID PRIMARY KEY,
    title VARCHAR(100) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    order_index INTEGER NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    unlock_threshold INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT levels_order_index_key UNIQUE (order_index) DEFERRABLE INITIALLY IMMEDIATE,
    CONSTRAINT valid_level_order CHECK (order_index >= 1),
    CONSTRAINT valid_unlock_threshold CHECK (unlock_threshold >= 0)
);

CREATE TABLE IF NOT EXISTS lessons (
    id UUID PRIMARY KEY,
    level_id UUID NOT NULL REFERENCES levels(id) ON DELETE CASCADE,
    title VARCHAR(100) NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    content_type VARCHAR(20) NOT NULL DEFAULT 'text',
    duration INTEGER,
    order_index INTEGER NOT NULL,
    video_url VARCHAR(250),
    video_object_key VARCHAR(250),
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT lessons_level_order_key UNIQUE (level_id, order_index) DEFERRABLE INITIALLY IMMEDIATE,
    CONSTRAINT valid_lesson_order CHECK (order_index >= 1),
    CONSTRAINT valid_content_type CHECK (content_type IN ('text', 'video', 'quiz'))
);

CREATE INDEX IF NOT EXISTS idx_lessons_level_order ON lessons(level_id, order_index);

CREATE TABLE IF NOT EXISTS user_progress (
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    lesson_id UUID NOT NULL REFERENCES lessons(id) ON DELETE CASCADE,
    is_completed BOOLEAN NOT NULL DEFAULT FALSE,
    completed_at TIMESTAMP WITH TIME ZONE,
    last_accessed TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    bookmarked BOOLEAN NOT NULL DEFAULT FALSE,

    PRIMARY KEY (user_id, lesson_id)
);

CREATE INDEX IF NOT EXISTS idx_progress_user_accessed ON user_progress(user_id, last_accessed DESC) WHERE NOT is_completed;
CREATE INDEX IF NOT EXISTS idx_progress_user_completed ON user_progress(user_id) WHERE is_completed;
CREATE INDEX IF NOT EXISTS idx_progress_user_bookmarked ON user_progress(user_id) WHERE bookmarked;
`

// Migrate bootstraps the schema. Statements are idempotent so startup can run
// this unconditionally.
func (p *Storage) Migrate(ctx context.Context) error {
	if _, err := p.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
