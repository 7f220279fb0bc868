package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"post-radar/domain/model"
	"post-radar/usecase"
)

// Mock implementations
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) InsertMany(ctx context.Context, posts []model.Post) (int, error) {
	args := m.Called(ctx, posts)
	return args.Int(0), args.Error(1)
}

func (m *MockPostRepository) FindUntranslated(ctx context.Context, memberID string, limit int) ([]model.Post, error) {
	args := m.Called(ctx, memberID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Post), args.Error(1)
}

func (m *MockPostRepository) CountUntranslated(ctx context.Context, memberID string) (int, error) {
	args := m.Called(ctx, memberID)
	return args.Int(0), args.Error(1)
}

func (m *MockPostRepository) GetByID(ctx context.Context, memberID, postID string) (*model.Post, error) {
	args := m.Called(ctx, memberID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) UpdateTranslation(ctx context.Context, memberID, postID, translatedText, commentText string, quotedTranslatedText *string) error {
	args := m.Called(ctx, memberID, postID, translatedText, commentText, quotedTranslatedText)
	return args.Error(0)
}

func (m *MockPostRepository) PurgeOlderThan(ctx context.Context, memberID string, cutoff time.Time) (int, error) {
	args := m.Called(ctx, memberID, cutoff)
	return args.Int(0), args.Error(1)
}

func (m *MockPostRepository) PurgeOrphaned(ctx context.Context, memberID string, activeAccountIDs []int64) (int, error) {
	args := m.Called(ctx, memberID, activeAccountIDs)
	return args.Int(0), args.Error(1)
}

func (m *MockPostRepository) ListByMember(ctx context.Context, memberID string, limit int) ([]model.Post, error) {
	args := m.Called(ctx, memberID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Post), args.Error(1)
}

func post(id, author string, createdAt time.Time, replyTo *string) model.Post {
	return model.Post{
		ID:             id,
		AuthorUsername: author,
		Text:           "text of " + id,
		ReplyToID:      replyTo,
		IsReply:        replyTo != nil,
		CreatedAt:      createdAt,
	}
}

func strPtr(s string) *string { return &s }

func TestBuildThreads_LinearChainIsChronological(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	posts := []model.Post{
		post("r2", "alice", t0.Add(2*time.Minute), strPtr("r1")),
		post("root", "alice", t0, nil),
		post("r1", "alice", t0.Add(time.Minute), strPtr("root")),
	}
	posts[1].Metrics = model.EngagementMetrics{Likes: 10, Views: 100}
	posts[2].Metrics = model.EngagementMetrics{Likes: 3, Views: 50}
	posts[0].Metrics = model.EngagementMetrics{Likes: 1, Views: 20}

	threads, err := usecase.BuildThreads(posts)
	require.NoError(t, err)
	require.Len(t, threads, 1)

	th := threads[0]
	assert.Equal(t, "root", th.RootID)
	assert.Equal(t, 2, th.ReplyCount)
	require.Len(t, th.Replies, 2)
	assert.Equal(t, "r1", th.Replies[0].ID)
	assert.Equal(t, "r2", th.Replies[1].ID)

	expected := "text of root" + model.ThreadSeparator + "text of r1" + model.ThreadSeparator + "text of r2"
	assert.Equal(t, expected, th.CombinedText)
	assert.Equal(t, model.EngagementMetrics{Likes: 14, Views: 170}, th.AggregatedMetrics)
}

func TestBuildThreads_CrossAuthorReplyStaysSeparate(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	posts := []model.Post{
		post("a1", "alice", t0, nil),
		post("b1", "bob", t0.Add(time.Minute), strPtr("a1")),
	}

	threads, err := usecase.BuildThreads(posts)
	require.NoError(t, err)
	require.Len(t, threads, 2)

	// Newest root first.
	assert.Equal(t, "b1", threads[0].RootID)
	assert.Equal(t, "a1", threads[1].RootID)
	assert.Equal(t, 0, threads[0].ReplyCount)
	assert.Equal(t, 0, threads[1].ReplyCount)
}

func TestBuildThreads_MissingParentBecomesRoot(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	posts := []model.Post{
		post("orphan", "alice", t0, strPtr("gone")),
	}

	threads, err := usecase.BuildThreads(posts)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "orphan", threads[0].RootID)
	assert.Empty(t, threads[0].Replies)
}

// Branching self-reply trees come out depth-first: the newest sibling branch
// is walked to exhaustion before older siblings, so sibling subtrees may
// interleave out of strict chronological order.
func TestBuildThreads_BranchingWalksNewestBranchFirst(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	posts := []model.Post{
		post("root", "alice", t0, nil),
		post("a", "alice", t0.Add(1*time.Minute), strPtr("root")),
		post("b", "alice", t0.Add(2*time.Minute), strPtr("root")),
		post("a1", "alice", t0.Add(3*time.Minute), strPtr("a")),
	}

	threads, err := usecase.BuildThreads(posts)
	require.NoError(t, err)
	require.Len(t, threads, 1)

	got := make([]string, 0, len(threads[0].Replies))
	for _, r := range threads[0].Replies {
		got = append(got, r.ID)
	}
	assert.Equal(t, []string{"b", "a", "a1"}, got)
}

func TestBuildThreads_RootsOrderedNewestFirst(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	posts := []model.Post{
		post("old", "alice", t0, nil),
		post("new", "alice", t0.Add(time.Hour), nil),
		post("mid", "alice", t0.Add(time.Minute), nil),
	}

	threads, err := usecase.BuildThreads(posts)
	require.NoError(t, err)
	require.Len(t, threads, 3)
	assert.Equal(t, "new", threads[0].RootID)
	assert.Equal(t, "mid", threads[1].RootID)
	assert.Equal(t, "old", threads[2].RootID)
}

// Every input post must land in exactly one thread, whatever mix of roots,
// branches, orphans and cross-author replies the collection holds.
func TestBuildThreads_EveryPostAppearsExactlyOnce(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	posts := []model.Post{
		// alice: root with a branching self-reply tree.
		post("a-root", "alice", t0, nil),
		post("a-1", "alice", t0.Add(1*time.Minute), strPtr("a-root")),
		post("a-2", "alice", t0.Add(2*time.Minute), strPtr("a-root")),
		post("a-1-1", "alice", t0.Add(3*time.Minute), strPtr("a-1")),
		// bob: reply to alice stays a separate root, with its own chain.
		post("b-1", "bob", t0.Add(4*time.Minute), strPtr("a-root")),
		post("b-2", "bob", t0.Add(5*time.Minute), strPtr("b-1")),
		// standalone root and an orphan whose parent is absent.
		post("c-root", "carol", t0.Add(6*time.Minute), nil),
		post("d-orphan", "dave", t0.Add(7*time.Minute), strPtr("missing")),
	}

	threads, err := usecase.BuildThreads(posts)
	require.NoError(t, err)

	seen := map[string]int{}
	for _, th := range threads {
		seen[th.RootID]++
		for _, r := range th.Replies {
			seen[r.ID]++
		}
	}

	require.Len(t, seen, len(posts))
	for _, p := range posts {
		assert.Equal(t, 1, seen[p.ID], "post %s", p.ID)
	}
}

func TestBuildThreads_InvalidPostFails(t *testing.T) {
	posts := []model.Post{
		{ID: "", AuthorUsername: "alice", CreatedAt: time.Now()},
	}
	_, err := usecase.BuildThreads(posts)
	assert.ErrorIs(t, err, usecase.ErrInvalidPost)
}

func TestThreadUsecase_List(t *testing.T) {
	mockPostRepo := new(MockPostRepository)
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	stored := []model.Post{post("p1", "alice", t0, nil)}
	mockPostRepo.On("ListByMember", mock.Anything, "member-1", 100).Return(stored, nil)

	uc := usecase.NewThreadUsecase(mockPostRepo)
	threads, err := uc.List(context.Background(), "member-1", 100)

	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "p1", threads[0].RootID)
	mockPostRepo.AssertExpectations(t)
}

func TestThreadUsecase_List_RepositoryError(t *testing.T) {
	mockPostRepo := new(MockPostRepository)
	mockPostRepo.On("ListByMember", mock.Anything, "member-1", 10).Return(nil, errors.New("db down"))

	uc := usecase.NewThreadUsecase(mockPostRepo)
	_, err := uc.List(context.Background(), "member-1", 10)

	assert.Error(t, err)
}
