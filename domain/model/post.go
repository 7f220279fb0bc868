package model

import "time"

// EngagementMetrics is the snapshot of public counters taken at fetch time.
// Counters are immutable once fetched.
type EngagementMetrics struct {
	Likes     int64 `json:"likes"`
	Reposts   int64 `json:"reposts"`
	Replies   int64 `json:"replies"`
	Quotes    int64 `json:"quotes"`
	Views     int64 `json:"views"`
	Bookmarks int64 `json:"bookmarks"`
}

// Add accumulates counters from another snapshot.
func (m *EngagementMetrics) Add(other EngagementMetrics) {
	m.Likes += other.Likes
	m.Reposts += other.Reposts
	m.Replies += other.Replies
	m.Quotes += other.Quotes
	m.Views += other.Views
	m.Bookmarks += other.Bookmarks
}

// Post represents one ingested social media item.
// (tracked_account_id, id) is unique: a post is never duplicated for the same
// tracked account. Only the translation step mutates it after insert.
type Post struct {
	ID               string  `json:"id"`
	TrackedAccountID int64   `json:"tracked_account_id"`
	MemberID         string  `json:"member_id"`
	AuthorUsername   string  `json:"author_username"`
	Text             string  `json:"text"`
	QuotedText       *string `json:"quoted_text,omitempty"`
	IsRetweet        bool    `json:"is_retweet"`
	IsReply          bool    `json:"is_reply"`
	IsQuote          bool    `json:"is_quote"`
	ReplyToID        *string `json:"reply_to_id,omitempty"`

	Metrics EngagementMetrics `json:"metrics"`

	TranslatedText       *string    `json:"translated_text,omitempty"`
	CommentText          *string    `json:"comment_text,omitempty"`
	QuotedTranslatedText *string    `json:"quoted_translated_text,omitempty"`
	TranslatedAt         *time.Time `json:"translated_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	FetchedAt time.Time `json:"fetched_at"`

	// RawJSON is the full provider payload kept verbatim as a display cache.
	// It is never authoritative for filtering or dedup; those use the
	// normalized fields above.
	RawJSON []byte `json:"-"`
}

// Translated reports whether the post has been through the translation step.
func (p *Post) Translated() bool {
	return p.TranslatedAt != nil
}

// ThreadSeparator joins root and reply texts in Thread.CombinedText.
const ThreadSeparator = "\n\n---\n\n"

// Thread is a reconstructed chain of self-replies rooted at one original
// post. Threads are derived views, built fresh on each read and never
// persisted.
type Thread struct {
	RootID            string            `json:"root_id"`
	Root              Post              `json:"root"`
	Replies           []Post            `json:"replies"`
	ReplyCount        int               `json:"reply_count"`
	CombinedText      string            `json:"combined_text"`
	AggregatedMetrics EngagementMetrics `json:"aggregated_metrics"`
}
