package persistence

import (
	"database/sql"
	"fmt"

	"post-radar/infrastructure/logger"
)

// EnsurePostSchema creates the PostgreSQL tables for ingested posts and run
// audit logs if they do not exist.
func EnsurePostSchema(db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS posts (
        id TEXT NOT NULL,
        tracked_account_id BIGINT NOT NULL,
        member_id TEXT NOT NULL,
        author_username TEXT NOT NULL,
        text TEXT NOT NULL,
        quoted_text TEXT,
        is_retweet BOOLEAN NOT NULL DEFAULT FALSE,
        is_reply BOOLEAN NOT NULL DEFAULT FALSE,
        is_quote BOOLEAN NOT NULL DEFAULT FALSE,
        reply_to_id TEXT,
        likes BIGINT NOT NULL DEFAULT 0,
        reposts BIGINT NOT NULL DEFAULT 0,
        replies BIGINT NOT NULL DEFAULT 0,
        quotes BIGINT NOT NULL DEFAULT 0,
        views BIGINT NOT NULL DEFAULT 0,
        bookmarks BIGINT NOT NULL DEFAULT 0,
        translated_text TEXT,
        comment_text TEXT,
        quoted_translated_text TEXT,
        translated_at TIMESTAMPTZ,
        created_at TIMESTAMPTZ NOT NULL,
        fetched_at TIMESTAMPTZ NOT NULL,
        raw_json JSONB,
        PRIMARY KEY (tracked_account_id, id)
    )`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_posts_member_created ON posts(member_id, created_at DESC)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_posts_member_created")
	}
	// Partial index keeps the backlog query cheap.
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_posts_member_backlog ON posts(member_id, created_at) WHERE translated_at IS NULL`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_posts_member_backlog")
	}

	fetchLogs := `CREATE TABLE IF NOT EXISTS fetch_logs (
        id BIGSERIAL PRIMARY KEY,
        member_id TEXT NOT NULL,
        fetched_accounts INT NOT NULL DEFAULT 0,
        new_posts INT NOT NULL DEFAULT 0,
        skipped_old INT NOT NULL DEFAULT 0,
        purged_expired INT NOT NULL DEFAULT 0,
        purged_orphans INT NOT NULL DEFAULT 0,
        error_count INT NOT NULL DEFAULT 0,
        errors JSONB,
        created_at TIMESTAMPTZ NOT NULL
    )`
	if _, err := db.Exec(fetchLogs); err != nil {
		return fmt.Errorf("create fetch_logs table: %w", err)
	}

	translateLogs := `CREATE TABLE IF NOT EXISTS translate_logs (
        id BIGSERIAL PRIMARY KEY,
        member_id TEXT NOT NULL,
        attempted INT NOT NULL DEFAULT 0,
        translated INT NOT NULL DEFAULT 0,
        error_count INT NOT NULL DEFAULT 0,
        errors JSONB,
        aborted BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMPTZ NOT NULL
    )`
	if _, err := db.Exec(translateLogs); err != nil {
		return fmt.Errorf("create translate_logs table: %w", err)
	}
	return nil
}
