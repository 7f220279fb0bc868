package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"post-radar/domain/model"
	"post-radar/domain/repository"
)

// MockClient serves deterministic canned data for demos and for members
// without live credentials. Each handle gets one standalone post and one
// three-post self-reply chain within the last few hours.
type MockClient struct {
	now func() time.Time
}

func NewMockClient() *MockClient { return &MockClient{now: time.Now} }

var _ repository.ISource = (*MockClient)(nil)

func (c *MockClient) FetchRecentPosts(_ context.Context, accountHandle string, limit int) ([]model.Post, error) {
	now := c.now().UTC()
	quoted := "Shipping beats perfection."
	items := []apiPost{
		{
			ID:           fmt.Sprintf("mock-%s-100", accountHandle),
			Username:     accountHandle,
			Text:         fmt.Sprintf("Big release day for @%s! Details in the thread below. #golang", accountHandle),
			CreatedAt:    now.Add(-3 * time.Hour),
			LikeCount:    42,
			RetweetCount: 7,
			ReplyCount:   3,
			ViewCount:    1800,
		},
		{
			ID:        fmt.Sprintf("mock-%s-101", accountHandle),
			Username:  accountHandle,
			Text:      "First: the API is now twice as fast on cold start.",
			IsReply:   true,
			ReplyToID: strptr(fmt.Sprintf("mock-%s-100", accountHandle)),
			CreatedAt: now.Add(-170 * time.Minute),
			LikeCount: 11,
			ViewCount: 900,
		},
		{
			ID:        fmt.Sprintf("mock-%s-102", accountHandle),
			Username:  accountHandle,
			Text:      "Second: streaming progress events land next week.",
			IsReply:   true,
			ReplyToID: strptr(fmt.Sprintf("mock-%s-101", accountHandle)),
			CreatedAt: now.Add(-160 * time.Minute),
			LikeCount: 9,
			ViewCount: 720,
		},
		{
			ID:         fmt.Sprintf("mock-%s-200", accountHandle),
			Username:   accountHandle,
			Text:       "Could not agree more with this one.",
			IsQuote:    true,
			QuotedText: &quoted,
			CreatedAt:  now.Add(-1 * time.Hour),
			LikeCount:  5,
			ViewCount:  300,
		},
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	posts := make([]model.Post, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		post, err := toModel(raw)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func strptr(s string) *string { return &s }
