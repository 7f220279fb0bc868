package repository

import (
	"context"

	"post-radar/domain/model"
)

// IRunLog appends audit rows for finished pipeline runs.
type IRunLog interface {
	CreateFetchLog(ctx context.Context, log *model.FetchLog) error
	CreateTranslateLog(ctx context.Context, log *model.TranslateLog) error
	ListFetchLogs(ctx context.Context, memberID string, limit int) ([]model.FetchLog, error)
	ListTranslateLogs(ctx context.Context, memberID string, limit int) ([]model.TranslateLog, error)
}
