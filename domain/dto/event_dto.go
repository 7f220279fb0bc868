package dto

// Progress event names for the streaming protocol.
const (
	EventCleanup    = "cleanup"
	EventProgress   = "progress"
	EventTranslated = "translated"
	EventError      = "error"
	EventDone       = "done"
)

// CleanupEvent is emitted once, before any account is processed, and only
// when at least one row was purged.
type CleanupEvent struct {
	PurgedExpired int `json:"purged_expired"`
	PurgedOrphans int `json:"purged_orphans"`
}

// FetchProgressEvent is emitted once per tracked account, in processing order.
type FetchProgressEvent struct {
	Current        int    `json:"current"`
	Total          int    `json:"total"`
	Account        string `json:"account"`
	TweetsReceived int    `json:"tweets_received"`
	Filtered       int    `json:"filtered"`
	NewPosts       int    `json:"new_posts"`
	Error          string `json:"error,omitempty"`
}

// TranslatedEvent is emitted after each successfully translated post.
type TranslatedEvent struct {
	PostID               string  `json:"post_id"`
	TranslatedText       string  `json:"translated_text"`
	CommentText          string  `json:"comment_text"`
	QuotedTranslatedText *string `json:"quoted_translated_text,omitempty"`
	Current              int     `json:"current"`
	Total                int     `json:"total"`
}

// TranslateErrorEvent is emitted after each failed post.
type TranslateErrorEvent struct {
	PostID  string `json:"post_id"`
	Error   string `json:"error"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
}
