package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"post-radar/domain/model"
)

// RunLogRepository persists append-only fetch/translate audit rows on
// PostgreSQL. Error lists are stored as JSONB.
type RunLogRepository struct {
	db *sql.DB
}

func NewRunLogRepository(db *sql.DB) *RunLogRepository { return &RunLogRepository{db: db} }

func (r *RunLogRepository) CreateFetchLog(ctx context.Context, log *model.FetchLog) error {
	errs, err := json.Marshal(log.Errors)
	if err != nil {
		return err
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	q := `INSERT INTO fetch_logs (member_id, fetched_accounts, new_posts, skipped_old, purged_expired, purged_orphans, error_count, errors, created_at)
          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`
	return r.db.QueryRowContext(ctx, q,
		log.MemberID, log.FetchedAccounts, log.NewPosts, log.SkippedOld,
		log.PurgedExpired, log.PurgedOrphans, log.ErrorCount, errs, log.CreatedAt,
	).Scan(&log.ID)
}

func (r *RunLogRepository) CreateTranslateLog(ctx context.Context, log *model.TranslateLog) error {
	errs, err := json.Marshal(log.Errors)
	if err != nil {
		return err
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	q := `INSERT INTO translate_logs (member_id, attempted, translated, error_count, errors, aborted, created_at)
          VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`
	return r.db.QueryRowContext(ctx, q,
		log.MemberID, log.Attempted, log.Translated, log.ErrorCount, errs, log.Aborted, log.CreatedAt,
	).Scan(&log.ID)
}

func (r *RunLogRepository) ListFetchLogs(ctx context.Context, memberID string, limit int) ([]model.FetchLog, error) {
	q := `SELECT id, member_id, fetched_accounts, new_posts, skipped_old, purged_expired, purged_orphans, error_count, errors, created_at
          FROM fetch_logs WHERE member_id=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, memberID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []model.FetchLog
	for rows.Next() {
		var l model.FetchLog
		var errs []byte
		if err := rows.Scan(&l.ID, &l.MemberID, &l.FetchedAccounts, &l.NewPosts, &l.SkippedOld,
			&l.PurgedExpired, &l.PurgedOrphans, &l.ErrorCount, &errs, &l.CreatedAt); err != nil {
			return nil, err
		}
		if len(errs) > 0 {
			_ = json.Unmarshal(errs, &l.Errors)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *RunLogRepository) ListTranslateLogs(ctx context.Context, memberID string, limit int) ([]model.TranslateLog, error) {
	q := `SELECT id, member_id, attempted, translated, error_count, errors, aborted, created_at
          FROM translate_logs WHERE member_id=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, memberID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []model.TranslateLog
	for rows.Next() {
		var l model.TranslateLog
		var errs []byte
		if err := rows.Scan(&l.ID, &l.MemberID, &l.Attempted, &l.Translated, &l.ErrorCount, &errs, &l.Aborted, &l.CreatedAt); err != nil {
			return nil, err
		}
		if len(errs) > 0 {
			_ = json.Unmarshal(errs, &l.Errors)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
