package twitter

import (
	"encoding/json"
	"time"

	"post-radar/domain/model"
)

// listOptions is the query string for the recent-posts endpoint.
type listOptions struct {
	Handle string `url:"handle"`
	Limit  int    `url:"limit,omitempty"`
}

// apiPost is the normalized item shape returned by the upstream API.
type apiPost struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Text          string    `json:"text"`
	QuotedText    *string   `json:"quoted_text,omitempty"`
	IsRetweet     bool      `json:"is_retweet"`
	IsReply       bool      `json:"is_reply"`
	IsQuote       bool      `json:"is_quote"`
	ReplyToID     *string   `json:"reply_to_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	LikeCount     int64     `json:"like_count"`
	RetweetCount  int64     `json:"retweet_count"`
	ReplyCount    int64     `json:"reply_count"`
	QuoteCount    int64     `json:"quote_count"`
	ViewCount     int64     `json:"view_count"`
	BookmarkCount int64     `json:"bookmark_count"`
}

type apiResponse struct {
	Posts []json.RawMessage `json:"posts"`
}

// toModel maps one wire item onto the domain post, keeping the verbatim
// payload as the display-cache snapshot.
func toModel(raw json.RawMessage) (model.Post, error) {
	var item apiPost
	if err := json.Unmarshal(raw, &item); err != nil {
		return model.Post{}, err
	}
	return model.Post{
		ID:             item.ID,
		AuthorUsername: item.Username,
		Text:           item.Text,
		QuotedText:     item.QuotedText,
		IsRetweet:      item.IsRetweet,
		IsReply:        item.IsReply,
		IsQuote:        item.IsQuote,
		ReplyToID:      item.ReplyToID,
		CreatedAt:      item.CreatedAt,
		Metrics: model.EngagementMetrics{
			Likes:     item.LikeCount,
			Reposts:   item.RetweetCount,
			Replies:   item.ReplyCount,
			Quotes:    item.QuoteCount,
			Views:     item.ViewCount,
			Bookmarks: item.BookmarkCount,
		},
		RawJSON: append([]byte(nil), raw...),
	}, nil
}
