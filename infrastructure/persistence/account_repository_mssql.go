package persistence

import (
	"context"
	"database/sql"

	"post-radar/domain/model"
)

// MSSQL variants of the member-side repositories, used when the production
// vendor is SQL Server.

type MemberRepositoryMSSQL struct {
	db *sql.DB
}

func NewMemberRepositoryMSSQL(db *sql.DB) *MemberRepositoryMSSQL {
	return &MemberRepositoryMSSQL{db: db}
}

func (r *MemberRepositoryMSSQL) GetByID(ctx context.Context, id string) (*model.Member, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_name, created_at, updated_at FROM members WHERE id = @p1`, id)
	var m model.Member
	if err := row.Scan(&m.ID, &m.UserName, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

type TrackedAccountRepositoryMSSQL struct {
	db *sql.DB
}

func NewTrackedAccountRepositoryMSSQL(db *sql.DB) *TrackedAccountRepositoryMSSQL {
	return &TrackedAccountRepositoryMSSQL{db: db}
}

func (r *TrackedAccountRepositoryMSSQL) ListByMember(ctx context.Context, memberID string) ([]model.TrackedAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, member_id, username, display_name, created_at, updated_at
         FROM tracked_accounts WHERE member_id = @p1 ORDER BY created_at ASC`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []model.TrackedAccount
	for rows.Next() {
		var a model.TrackedAccount
		if err := rows.Scan(&a.ID, &a.MemberID, &a.Username, &a.DisplayName, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *TrackedAccountRepositoryMSSQL) GetByID(ctx context.Context, id int64) (*model.TrackedAccount, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, member_id, username, display_name, created_at, updated_at
         FROM tracked_accounts WHERE id = @p1`, id)
	var a model.TrackedAccount
	if err := row.Scan(&a.ID, &a.MemberID, &a.Username, &a.DisplayName, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

type SettingsRepositoryMSSQL struct {
	db *sql.DB
}

func NewSettingsRepositoryMSSQL(db *sql.DB) *SettingsRepositoryMSSQL {
	return &SettingsRepositoryMSSQL{db: db}
}

func (r *SettingsRepositoryMSSQL) GetByMember(ctx context.Context, memberID string) (*model.MemberSettings, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT member_id, retention_days, source_mode, source_api_url, source_token,
                ai_provider, ai_api_key, ai_model, ai_endpoint, ai_sdk, target_lang, updated_at
         FROM member_settings WHERE member_id = @p1`, memberID)
	var s model.MemberSettings
	err := row.Scan(&s.MemberID, &s.RetentionDays, &s.SourceMode, &s.SourceAPIURL, &s.SourceToken,
		&s.AIProvider, &s.AIAPIKey, &s.AIModel, &s.AIEndpoint, &s.AISDK, &s.TargetLang, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return &model.MemberSettings{
			MemberID:      memberID,
			RetentionDays: model.DefaultRetentionDays,
			SourceMode:    model.SourceModeMock,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
