package repository

import (
	"context"
	"errors"

	"post-radar/domain/model"
)

// Distinguishable source failure conditions.
var (
	ErrAccountNotFound = errors.New("source: account not found")
	ErrRateLimited     = errors.New("source: rate limited")
	ErrForbidden       = errors.New("source: elevated credentials required")
)

// ISource is the provider capability that fetches an account's recent posts.
// Implementations wrap either the live upstream API or canned mock data;
// the factory picks one per request from stored member settings.
type ISource interface {
	FetchRecentPosts(ctx context.Context, accountHandle string, limit int) ([]model.Post, error)
}
