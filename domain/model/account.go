package model

import "time"

// Retention window bounds in days. The per-member setting defaults to
// DefaultRetentionDays and is always capped at MaxRetentionDays.
const (
	DefaultRetentionDays = 1
	MaxRetentionDays     = 7
)

// Source modes for the tracked account provider.
const (
	SourceModeLive = "live"
	SourceModeMock = "mock"
)

// TranslatorSDK kinds supported by the translation client.
const (
	TranslatorSDKOpenAI = "openai"
	TranslatorSDKGemini = "gemini"
)

// Member is the minimal identity the auth middleware resolves tokens to.
// Full account management lives outside this service.
type Member struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id"`
	UserName  string    `json:"user_name" gorm:"column:user_name"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Member) TableName() string { return "members" }

// TrackedAccount is a social media identity whose posts are periodically
// fetched for a member. The core only reads it; CRUD belongs to the
// surrounding application.
type TrackedAccount struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	MemberID    string    `json:"member_id" gorm:"column:member_id;index"`
	Username    string    `json:"username" gorm:"column:username"`
	DisplayName string    `json:"display_name" gorm:"column:display_name"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (TrackedAccount) TableName() string { return "tracked_accounts" }

// MemberSettings holds the per-member pipeline configuration: retention
// window, source provider mode/credentials and AI translator credentials.
type MemberSettings struct {
	MemberID      string `json:"member_id" gorm:"primaryKey;column:member_id"`
	RetentionDays int    `json:"retention_days" gorm:"column:retention_days"`

	SourceMode   string `json:"source_mode" gorm:"column:source_mode"`
	SourceAPIURL string `json:"source_api_url" gorm:"column:source_api_url"`
	SourceToken  string `json:"-" gorm:"column:source_token"`

	AIProvider string `json:"ai_provider" gorm:"column:ai_provider"`
	AIAPIKey   string `json:"-" gorm:"column:ai_api_key"`
	AIModel    string `json:"ai_model" gorm:"column:ai_model"`
	AIEndpoint string `json:"ai_endpoint" gorm:"column:ai_endpoint"`
	AISDK      string `json:"ai_sdk" gorm:"column:ai_sdk"`
	TargetLang string `json:"target_lang" gorm:"column:target_lang"`

	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (MemberSettings) TableName() string { return "member_settings" }

// EffectiveRetentionDays applies the default and the system-wide cap.
func (s *MemberSettings) EffectiveRetentionDays() int {
	days := DefaultRetentionDays
	if s != nil && s.RetentionDays > 0 {
		days = s.RetentionDays
	}
	if days > MaxRetentionDays {
		days = MaxRetentionDays
	}
	return days
}
