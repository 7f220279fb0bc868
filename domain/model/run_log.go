package model

import "time"

// FetchLog is an append-only audit record for one fetch run. Created once
// per orchestrator invocation and immutable thereafter.
type FetchLog struct {
	ID              int64     `json:"id"`
	MemberID        string    `json:"member_id"`
	FetchedAccounts int       `json:"fetched_accounts"`
	NewPosts        int       `json:"new_posts"`
	SkippedOld      int       `json:"skipped_old"`
	PurgedExpired   int       `json:"purged_expired"`
	PurgedOrphans   int       `json:"purged_orphans"`
	ErrorCount      int       `json:"error_count"`
	Errors          []string  `json:"errors,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// TranslateLog is the append-only audit record for one translation run.
type TranslateLog struct {
	ID         int64     `json:"id"`
	MemberID   string    `json:"member_id"`
	Attempted  int       `json:"attempted"`
	Translated int       `json:"translated"`
	ErrorCount int       `json:"error_count"`
	Errors     []string  `json:"errors,omitempty"`
	Aborted    bool      `json:"aborted"`
	CreatedAt  time.Time `json:"created_at"`
}
