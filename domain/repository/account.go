package repository

import (
	"context"

	"post-radar/domain/model"
)

// IMember resolves authenticated identities for the middleware contract.
type IMember interface {
	GetByID(ctx context.Context, id string) (*model.Member, error)
}

// ITrackedAccount reads the accounts monitored for a member. Mutation is
// owned by the surrounding application.
type ITrackedAccount interface {
	ListByMember(ctx context.Context, memberID string) ([]model.TrackedAccount, error)
	GetByID(ctx context.Context, id int64) (*model.TrackedAccount, error)
}

// ISettings reads the member's pipeline settings (retention window, source
// and translator credentials).
type ISettings interface {
	GetByMember(ctx context.Context, memberID string) (*model.MemberSettings, error)
}
