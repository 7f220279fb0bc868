package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"post-radar/domain/dto"
	"post-radar/domain/model"
	"post-radar/domain/repository"
	"post-radar/usecase"
)

type MockTrackedAccountRepository struct {
	mock.Mock
}

func (m *MockTrackedAccountRepository) ListByMember(ctx context.Context, memberID string) ([]model.TrackedAccount, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TrackedAccount), args.Error(1)
}

func (m *MockTrackedAccountRepository) GetByID(ctx context.Context, id int64) (*model.TrackedAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TrackedAccount), args.Error(1)
}

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) GetByMember(ctx context.Context, memberID string) (*model.MemberSettings, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MemberSettings), args.Error(1)
}

type MockRunLogRepository struct {
	mock.Mock
}

func (m *MockRunLogRepository) CreateFetchLog(ctx context.Context, log *model.FetchLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockRunLogRepository) CreateTranslateLog(ctx context.Context, log *model.TranslateLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockRunLogRepository) ListFetchLogs(ctx context.Context, memberID string, limit int) ([]model.FetchLog, error) {
	args := m.Called(ctx, memberID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FetchLog), args.Error(1)
}

func (m *MockRunLogRepository) ListTranslateLogs(ctx context.Context, memberID string, limit int) ([]model.TranslateLog, error) {
	args := m.Called(ctx, memberID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TranslateLog), args.Error(1)
}

type MockSource struct {
	mock.Mock
}

func (m *MockSource) FetchRecentPosts(ctx context.Context, accountHandle string, limit int) ([]model.Post, error) {
	args := m.Called(ctx, accountHandle, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Post), args.Error(1)
}

type MockRunLocker struct {
	mock.Mock
}

func (m *MockRunLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockRunLocker) Release(ctx context.Context, key string) {
	m.Called(ctx, key)
}

type eventRecorder struct {
	names    []string
	payloads []interface{}
}

func (r *eventRecorder) emit(name string, payload interface{}) {
	r.names = append(r.names, name)
	r.payloads = append(r.payloads, payload)
}

func fixedSource(source repository.ISource) usecase.SourceFactory {
	return func(*model.MemberSettings) (repository.ISource, error) {
		return source, nil
	}
}

func newFetchMocks() (*MockPostRepository, *MockTrackedAccountRepository, *MockSettingsRepository, *MockRunLogRepository) {
	return new(MockPostRepository), new(MockTrackedAccountRepository), new(MockSettingsRepository), new(MockRunLogRepository)
}

func TestFetchUsecase_Run_SkipsPostsOlderThanRetention(t *testing.T) {
	postRepo, accountRepo, settingsRepo, runLogRepo := newFetchMocks()
	source := new(MockSource)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cutoff := now.AddDate(0, 0, -1)

	settingsRepo.On("GetByMember", mock.Anything, "member-1").
		Return(&model.MemberSettings{MemberID: "member-1", RetentionDays: 1, SourceMode: model.SourceModeMock}, nil)
	accountRepo.On("ListByMember", mock.Anything, "member-1").
		Return([]model.TrackedAccount{{ID: 7, MemberID: "member-1", Username: "alice"}}, nil)
	postRepo.On("PurgeOlderThan", mock.Anything, "member-1", mock.Anything).Return(0, nil)
	postRepo.On("PurgeOrphaned", mock.Anything, "member-1", []int64{7}).Return(0, nil)

	fresh := post("new", "alice", cutoff.Add(time.Hour), nil)
	stale := post("old", "alice", cutoff.Add(-time.Hour), nil)
	source.On("FetchRecentPosts", mock.Anything, "alice", 50).
		Return([]model.Post{fresh, stale}, nil)

	postRepo.On("InsertMany", mock.Anything, mock.MatchedBy(func(posts []model.Post) bool {
		return len(posts) == 1 && posts[0].ID == "new" &&
			posts[0].TrackedAccountID == 7 && posts[0].MemberID == "member-1" &&
			posts[0].FetchedAt.Equal(now)
	})).Return(1, nil)
	runLogRepo.On("CreateFetchLog", mock.Anything, mock.Anything).Return(nil)

	uc := usecase.NewFetchUsecase(postRepo, accountRepo, settingsRepo, runLogRepo,
		fixedSource(source), usecase.WithClock(func() time.Time { return now }))

	rec := &eventRecorder{}
	result, err := uc.Run(context.Background(), "member-1", rec.emit)

	require.NoError(t, err)
	assert.Equal(t, 1, result.FetchedAccounts)
	assert.Equal(t, 1, result.NewPosts)
	assert.Equal(t, 1, result.SkippedOld)
	assert.Empty(t, result.Errors)

	// Nothing purged, so the only event is the per-account progress.
	require.Equal(t, []string{dto.EventProgress}, rec.names)
	progress := rec.payloads[0].(dto.FetchProgressEvent)
	assert.Equal(t, 1, progress.Current)
	assert.Equal(t, 1, progress.Total)
	assert.Equal(t, "alice", progress.Account)
	assert.Equal(t, 2, progress.TweetsReceived)
	assert.Equal(t, 1, progress.Filtered)
	assert.Equal(t, 1, progress.NewPosts)

	postRepo.AssertExpectations(t)
}

func TestFetchUsecase_Run_AccountFailureDoesNotAbortRun(t *testing.T) {
	postRepo, accountRepo, settingsRepo, runLogRepo := newFetchMocks()
	source := new(MockSource)

	settingsRepo.On("GetByMember", mock.Anything, "member-1").
		Return(&model.MemberSettings{MemberID: "member-1"}, nil)
	accountRepo.On("ListByMember", mock.Anything, "member-1").
		Return([]model.TrackedAccount{
			{ID: 1, Username: "flaky"},
			{ID: 2, Username: "steady"},
		}, nil)
	postRepo.On("PurgeOlderThan", mock.Anything, "member-1", mock.Anything).Return(0, nil)
	postRepo.On("PurgeOrphaned", mock.Anything, "member-1", []int64{1, 2}).Return(0, nil)

	source.On("FetchRecentPosts", mock.Anything, "flaky", 50).
		Return(nil, repository.ErrRateLimited)
	source.On("FetchRecentPosts", mock.Anything, "steady", 50).
		Return([]model.Post{post("p1", "steady", time.Now().UTC(), nil)}, nil)
	postRepo.On("InsertMany", mock.Anything, mock.Anything).Return(1, nil)
	runLogRepo.On("CreateFetchLog", mock.Anything, mock.MatchedBy(func(log *model.FetchLog) bool {
		return log.ErrorCount == 1 && log.NewPosts == 1 && log.FetchedAccounts == 1
	})).Return(nil)

	uc := usecase.NewFetchUsecase(postRepo, accountRepo, settingsRepo, runLogRepo, fixedSource(source))

	rec := &eventRecorder{}
	result, err := uc.Run(context.Background(), "member-1", rec.emit)

	require.NoError(t, err)
	assert.Equal(t, 1, result.FetchedAccounts)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "flaky")

	require.Len(t, rec.names, 2)
	first := rec.payloads[0].(dto.FetchProgressEvent)
	assert.Equal(t, "flaky", first.Account)
	assert.NotEmpty(t, first.Error)
	second := rec.payloads[1].(dto.FetchProgressEvent)
	assert.Equal(t, "steady", second.Account)
	assert.Empty(t, second.Error)

	runLogRepo.AssertExpectations(t)
}

func TestFetchUsecase_Run_SourceNotConfiguredIsFatal(t *testing.T) {
	postRepo, accountRepo, settingsRepo, runLogRepo := newFetchMocks()

	settingsRepo.On("GetByMember", mock.Anything, "member-1").
		Return(&model.MemberSettings{MemberID: "member-1"}, nil)

	factory := func(*model.MemberSettings) (repository.ISource, error) {
		return nil, usecase.ErrSourceNotConfigured
	}
	uc := usecase.NewFetchUsecase(postRepo, accountRepo, settingsRepo, runLogRepo, factory)

	_, err := uc.Run(context.Background(), "member-1", nil)
	assert.ErrorIs(t, err, usecase.ErrSourceNotConfigured)

	// No account was touched and no log row written.
	accountRepo.AssertNotCalled(t, "ListByMember", mock.Anything, mock.Anything)
	runLogRepo.AssertNotCalled(t, "CreateFetchLog", mock.Anything, mock.Anything)
}

func TestFetchUsecase_Run_EmitsCleanupBeforeProgress(t *testing.T) {
	postRepo, accountRepo, settingsRepo, runLogRepo := newFetchMocks()
	source := new(MockSource)

	settingsRepo.On("GetByMember", mock.Anything, "member-1").
		Return(&model.MemberSettings{MemberID: "member-1"}, nil)
	accountRepo.On("ListByMember", mock.Anything, "member-1").
		Return([]model.TrackedAccount{{ID: 1, Username: "alice"}}, nil)
	postRepo.On("PurgeOlderThan", mock.Anything, "member-1", mock.Anything).Return(3, nil)
	postRepo.On("PurgeOrphaned", mock.Anything, "member-1", []int64{1}).Return(2, nil)
	source.On("FetchRecentPosts", mock.Anything, "alice", 50).Return([]model.Post{}, nil)
	runLogRepo.On("CreateFetchLog", mock.Anything, mock.Anything).Return(nil)

	uc := usecase.NewFetchUsecase(postRepo, accountRepo, settingsRepo, runLogRepo, fixedSource(source))

	rec := &eventRecorder{}
	result, err := uc.Run(context.Background(), "member-1", rec.emit)

	require.NoError(t, err)
	assert.Equal(t, 3, result.PurgedExpired)
	assert.Equal(t, 2, result.PurgedOrphans)

	require.Equal(t, []string{dto.EventCleanup, dto.EventProgress}, rec.names)
	cleanup := rec.payloads[0].(dto.CleanupEvent)
	assert.Equal(t, 3, cleanup.PurgedExpired)
	assert.Equal(t, 2, cleanup.PurgedOrphans)
}

func TestFetchUsecase_Run_LockHeldReturnsRunInProgress(t *testing.T) {
	postRepo, accountRepo, settingsRepo, runLogRepo := newFetchMocks()
	locker := new(MockRunLocker)

	locker.On("Acquire", mock.Anything, "fetch:member-1", mock.Anything).Return(false, nil)

	uc := usecase.NewFetchUsecase(postRepo, accountRepo, settingsRepo, runLogRepo,
		fixedSource(new(MockSource)), usecase.WithRunLocker(locker))

	_, err := uc.Run(context.Background(), "member-1", nil)
	assert.ErrorIs(t, err, usecase.ErrRunInProgress)
	settingsRepo.AssertNotCalled(t, "GetByMember", mock.Anything, mock.Anything)
}

func TestFetchUsecase_Run_ReleasesLockAfterRun(t *testing.T) {
	postRepo, accountRepo, settingsRepo, runLogRepo := newFetchMocks()
	locker := new(MockRunLocker)

	locker.On("Acquire", mock.Anything, "fetch:member-1", mock.Anything).Return(true, nil)
	locker.On("Release", mock.Anything, "fetch:member-1").Return()
	settingsRepo.On("GetByMember", mock.Anything, "member-1").
		Return(&model.MemberSettings{MemberID: "member-1"}, nil)
	accountRepo.On("ListByMember", mock.Anything, "member-1").
		Return([]model.TrackedAccount{}, nil)
	postRepo.On("PurgeOlderThan", mock.Anything, "member-1", mock.Anything).Return(0, nil)
	postRepo.On("PurgeOrphaned", mock.Anything, "member-1", []int64{}).Return(0, nil)
	runLogRepo.On("CreateFetchLog", mock.Anything, mock.Anything).Return(nil)

	uc := usecase.NewFetchUsecase(postRepo, accountRepo, settingsRepo, runLogRepo,
		fixedSource(new(MockSource)), usecase.WithRunLocker(locker))

	_, err := uc.Run(context.Background(), "member-1", nil)
	require.NoError(t, err)
	locker.AssertExpectations(t)
}

func TestFetchUsecase_Run_LogsSurviveClientDisconnect(t *testing.T) {
	postRepo, accountRepo, settingsRepo, runLogRepo := newFetchMocks()
	source := new(MockSource)

	ctx, cancel := context.WithCancel(context.Background())

	settingsRepo.On("GetByMember", mock.Anything, "member-1").
		Return(&model.MemberSettings{MemberID: "member-1"}, nil)
	accountRepo.On("ListByMember", mock.Anything, "member-1").
		Return([]model.TrackedAccount{
			{ID: 1, Username: "alice"},
			{ID: 2, Username: "bob"},
		}, nil)
	postRepo.On("PurgeOlderThan", mock.Anything, "member-1", mock.Anything).Return(0, nil)
	postRepo.On("PurgeOrphaned", mock.Anything, "member-1", []int64{1, 2}).Return(0, nil)

	// The consumer drops away while the first account streams in.
	source.On("FetchRecentPosts", mock.Anything, "alice", 50).
		Run(func(mock.Arguments) { cancel() }).
		Return([]model.Post{post("p1", "alice", time.Now().UTC(), nil)}, nil)
	postRepo.On("InsertMany", mock.Anything, mock.Anything).Return(1, nil)

	var logCtx context.Context
	runLogRepo.On("CreateFetchLog", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { logCtx = args.Get(0).(context.Context) }).
		Return(nil)

	uc := usecase.NewFetchUsecase(postRepo, accountRepo, settingsRepo, runLogRepo, fixedSource(source))

	result, err := uc.Run(ctx, "member-1", nil)

	require.NoError(t, err)
	assert.Equal(t, 1, result.FetchedAccounts)
	source.AssertNotCalled(t, "FetchRecentPosts", mock.Anything, "bob", mock.Anything)

	// The audit row is still written, with a context the disconnect
	// cannot cancel.
	runLogRepo.AssertNumberOfCalls(t, "CreateFetchLog", 1)
	require.NotNil(t, logCtx)
	assert.NoError(t, logCtx.Err())
}

func TestFetchUsecase_Run_SettingsFailurePropagates(t *testing.T) {
	postRepo, accountRepo, settingsRepo, runLogRepo := newFetchMocks()

	settingsRepo.On("GetByMember", mock.Anything, "member-1").Return(nil, errors.New("db down"))

	uc := usecase.NewFetchUsecase(postRepo, accountRepo, settingsRepo, runLogRepo, fixedSource(new(MockSource)))
	_, err := uc.Run(context.Background(), "member-1", nil)
	assert.Error(t, err)
	accountRepo.AssertNotCalled(t, "ListByMember", mock.Anything, mock.Anything)
}
