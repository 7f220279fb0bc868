package repository

import (
	"context"
	"time"

	"post-radar/domain/model"
)

// IPost is the post store capability consumed by the fetch and translation
// orchestrators. Implementations must treat a duplicate
// (tracked_account_id, id) pair as a silent no-op, never an error.
type IPost interface {
	// InsertMany writes posts and returns how many rows were actually
	// inserted; duplicates are skipped.
	InsertMany(ctx context.Context, posts []model.Post) (int, error)

	// FindUntranslated returns the oldest untranslated posts for a member,
	// up to limit.
	FindUntranslated(ctx context.Context, memberID string, limit int) ([]model.Post, error)

	// CountUntranslated returns the size of the member's backlog.
	CountUntranslated(ctx context.Context, memberID string) (int, error)

	// GetByID returns one post or nil when absent.
	GetByID(ctx context.Context, memberID, postID string) (*model.Post, error)

	// UpdateTranslation stores the translation fields and stamps
	// translated_at. The write is member-scoped: distinct members may store
	// rows sharing a provider post id.
	UpdateTranslation(ctx context.Context, memberID, postID, translatedText, commentText string, quotedTranslatedText *string) error

	// PurgeOlderThan deletes the member's posts created before cutoff and
	// returns the number of rows removed.
	PurgeOlderThan(ctx context.Context, memberID string, cutoff time.Time) (int, error)

	// PurgeOrphaned deletes the member's posts whose owning account is no
	// longer tracked.
	PurgeOrphaned(ctx context.Context, memberID string, activeAccountIDs []int64) (int, error)

	// ListByMember returns the member's stored posts, newest first.
	ListByMember(ctx context.Context, memberID string, limit int) ([]model.Post, error)
}
