package dto

// Res is the envelope used by handlers for error responses.
type Res struct {
	ResponseCode    string      `json:"response_code"`
	ResponseMessage string      `json:"response_message"`
	Data            interface{} `json:"data,omitempty"`
}

// FetchRunResult is the aggregate outcome of one fetch run.
type FetchRunResult struct {
	FetchedAccounts int      `json:"fetched_accounts"`
	NewPosts        int      `json:"new_posts"`
	SkippedOld      int      `json:"skipped_old"`
	PurgedExpired   int      `json:"purged_expired"`
	PurgedOrphans   int      `json:"purged_orphans"`
	Errors          []string `json:"errors"`
}

// TranslateRunResult is the aggregate outcome of one translation run.
// len(Translated)+len(Errors) equals the number of posts attempted; every
// post id appears in exactly one of the two lists.
type TranslateRunResult struct {
	Attempted  int                `json:"attempted"`
	Translated []TranslatedPost   `json:"translated"`
	Errors     []TranslationError `json:"errors"`
	Aborted    bool               `json:"aborted,omitempty"`
}

// TranslatedPost carries the parsed translation fields for one post.
type TranslatedPost struct {
	PostID               string  `json:"post_id"`
	TranslatedText       string  `json:"translated_text"`
	CommentText          string  `json:"comment_text"`
	QuotedTranslatedText *string `json:"quoted_translated_text,omitempty"`
}

// TranslationError records one failed post within a run.
type TranslationError struct {
	PostID string `json:"post_id"`
	Error  string `json:"error"`
}
