package persistence

import (
	"context"
	"errors"

	"post-radar/domain/model"

	"gorm.io/gorm"
)

// Gorm-backed repositories for the member/account side (local MySQL vendor).

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository { return &MemberRepository{db: db} }

func (r *MemberRepository) GetByID(ctx context.Context, id string) (*model.Member, error) {
	var m model.Member
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

type TrackedAccountRepository struct {
	db *gorm.DB
}

func NewTrackedAccountRepository(db *gorm.DB) *TrackedAccountRepository {
	return &TrackedAccountRepository{db: db}
}

func (r *TrackedAccountRepository) ListByMember(ctx context.Context, memberID string) ([]model.TrackedAccount, error) {
	var accounts []model.TrackedAccount
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *TrackedAccountRepository) GetByID(ctx context.Context, id int64) (*model.TrackedAccount, error) {
	var a model.TrackedAccount
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository { return &SettingsRepository{db: db} }

// GetByMember returns the member's settings, falling back to defaults when
// no row exists yet.
func (r *SettingsRepository) GetByMember(ctx context.Context, memberID string) (*model.MemberSettings, error) {
	var s model.MemberSettings
	err := r.db.WithContext(ctx).First(&s, "member_id = ?", memberID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
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
