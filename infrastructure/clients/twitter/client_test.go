package twitter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"post-radar/domain/model"
	"post-radar/domain/repository"
	"post-radar/usecase"
)

func TestClient_FetchRecentPosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/posts", r.URL.Path)
		assert.Equal(t, "alice", r.URL.Query().Get("handle"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"posts":[
			{"id":"p1","username":"alice","text":"hello","created_at":"2026-03-10T12:00:00Z","like_count":5,"view_count":100},
			{"id":"p2","username":"alice","text":"reply","is_reply":true,"reply_to_id":"p1","created_at":"2026-03-10T12:05:00Z"}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-123")
	posts, err := client.FetchRecentPosts(context.Background(), "alice", 10)

	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "p1", posts[0].ID)
	assert.Equal(t, int64(5), posts[0].Metrics.Likes)
	assert.NotEmpty(t, posts[0].RawJSON)
	require.NotNil(t, posts[1].ReplyToID)
	assert.Equal(t, "p1", *posts[1].ReplyToID)
}

func TestClient_FetchRecentPosts_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, repository.ErrAccountNotFound},
		{http.StatusTooManyRequests, repository.ErrRateLimited},
		{http.StatusUnauthorized, repository.ErrForbidden},
		{http.StatusForbidden, repository.ErrForbidden},
	}
	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		client := NewClient(server.URL, "token-123")
		_, err := client.FetchRecentPosts(context.Background(), "alice", 10)
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
		server.Close()
	}
}

func TestClient_FetchRecentPosts_SkipsMalformedItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"posts":[
			{"id":"good","username":"alice","text":"ok","created_at":"2026-03-10T12:00:00Z"},
			{"id":"bad","created_at":"not a timestamp"}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-123")
	posts, err := client.FetchRecentPosts(context.Background(), "alice", 10)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "good", posts[0].ID)
}

func TestMockClient_BuildsSelfReplyChain(t *testing.T) {
	client := NewMockClient()
	posts, err := client.FetchRecentPosts(context.Background(), "alice", 0)

	require.NoError(t, err)
	require.Len(t, posts, 4)

	// All posts belong to the requested handle and carry raw snapshots.
	for _, p := range posts {
		assert.Equal(t, "alice", p.AuthorUsername)
		assert.NotEmpty(t, p.RawJSON)
		assert.WithinDuration(t, time.Now().UTC(), p.CreatedAt, 4*time.Hour)
	}

	// The canned chain reconstructs into one thread of two replies.
	threads, err := usecase.BuildThreads(posts)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	var chain *model.Thread
	for i := range threads {
		if threads[i].ReplyCount > 0 {
			chain = &threads[i]
		}
	}
	require.NotNil(t, chain)
	assert.Equal(t, 2, chain.ReplyCount)
}

func TestSourceFactory_SelectsVariantFromSettings(t *testing.T) {
	factory := NewSourceFactory("https://api.example.com")

	_, err := factory(nil)
	assert.ErrorIs(t, err, usecase.ErrSourceNotConfigured)

	source, err := factory(&model.MemberSettings{SourceMode: model.SourceModeMock})
	require.NoError(t, err)
	assert.IsType(t, &MockClient{}, source)

	// Unset mode falls back to mock.
	source, err = factory(&model.MemberSettings{})
	require.NoError(t, err)
	assert.IsType(t, &MockClient{}, source)

	// Live mode without a token is a configuration error, not a network one.
	_, err = factory(&model.MemberSettings{SourceMode: model.SourceModeLive})
	assert.ErrorIs(t, err, usecase.ErrSourceNotConfigured)

	source, err = factory(&model.MemberSettings{SourceMode: model.SourceModeLive, SourceToken: "token"})
	require.NoError(t, err)
	assert.IsType(t, &Client{}, source)

	_, err = factory(&model.MemberSettings{SourceMode: "carrier-pigeon"})
	assert.ErrorIs(t, err, usecase.ErrSourceNotConfigured)
}
