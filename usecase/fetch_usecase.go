package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"post-radar/domain/dto"
	"post-radar/domain/model"
	"post-radar/domain/repository"
	"post-radar/infrastructure/logger"
)

var (
	// ErrSourceNotConfigured is fatal: no provider is configured at all, so
	// the run aborts before any account is processed.
	ErrSourceNotConfigured = errors.New("fetch: source provider not configured")

	// ErrRunInProgress means another fetch run for the same member holds
	// the run lock.
	ErrRunInProgress = errors.New("fetch: run already in progress")
)

// EventEmitter receives streaming progress events. A nil emitter disables
// streaming (single-shot mode).
type EventEmitter func(name string, payload interface{})

// SourceFactory resolves the provider variant (live or mock) for a member's
// stored settings. It returns ErrSourceNotConfigured when nothing usable is
// configured.
type SourceFactory func(settings *model.MemberSettings) (repository.ISource, error)

// RunLocker guards against overlapping runs for the same member.
type RunLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string)
}

// RunNotifier fans run summaries out to the configured message buses.
type RunNotifier interface {
	NotifyFetch(ctx context.Context, log *model.FetchLog)
	NotifyTranslate(ctx context.Context, log *model.TranslateLog)
}

type IFetchUsecase interface {
	// Run synchronizes all tracked accounts of a member, emitting one
	// progress event per account when emit is non-nil.
	Run(ctx context.Context, memberID string, emit EventEmitter) (*dto.FetchRunResult, error)
}

type fetchUsecase struct {
	postRepo     repository.IPost
	accountRepo  repository.ITrackedAccount
	settingsRepo repository.ISettings
	runLogRepo   repository.IRunLog
	newSource    SourceFactory
	archive      repository.IRawArchive
	locker       RunLocker
	notifier     RunNotifier
	fetchLimit   int
	now          func() time.Time
}

// FetchOption tweaks optional collaborators; all of them are nil-safe.
type FetchOption func(*fetchUsecase)

func WithRawArchive(a repository.IRawArchive) FetchOption {
	return func(u *fetchUsecase) { u.archive = a }
}

func WithRunLocker(l RunLocker) FetchOption {
	return func(u *fetchUsecase) { u.locker = l }
}

func WithRunNotifier(n RunNotifier) FetchOption {
	return func(u *fetchUsecase) { u.notifier = n }
}

func WithFetchLimit(limit int) FetchOption {
	return func(u *fetchUsecase) { u.fetchLimit = limit }
}

func WithClock(now func() time.Time) FetchOption {
	return func(u *fetchUsecase) { u.now = now }
}

func NewFetchUsecase(
	postRepo repository.IPost,
	accountRepo repository.ITrackedAccount,
	settingsRepo repository.ISettings,
	runLogRepo repository.IRunLog,
	newSource SourceFactory,
	opts ...FetchOption,
) IFetchUsecase {
	u := &fetchUsecase{
		postRepo:     postRepo,
		accountRepo:  accountRepo,
		settingsRepo: settingsRepo,
		runLogRepo:   runLogRepo,
		newSource:    newSource,
		fetchLimit:   50,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *fetchUsecase) Run(ctx context.Context, memberID string, emit EventEmitter) (*dto.FetchRunResult, error) {
	if u.locker != nil {
		key := "fetch:" + memberID
		ok, err := u.locker.Acquire(ctx, key, 5*time.Minute)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("run lock unavailable - continuing without it")
		} else if !ok {
			return nil, ErrRunInProgress
		} else {
			defer u.locker.Release(ctx, key)
		}
	}

	settings, err := u.settingsRepo.GetByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	source, err := u.newSource(settings)
	if err != nil {
		return nil, err
	}

	accounts, err := u.accountRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	result := &dto.FetchRunResult{Errors: []string{}}

	// Hard purge first: bounds storage growth independent of the per-member
	// retention setting.
	purgeCutoff := now.AddDate(0, 0, -model.MaxRetentionDays)
	result.PurgedExpired, err = u.postRepo.PurgeOlderThan(ctx, memberID, purgeCutoff)
	if err != nil {
		return nil, err
	}
	activeIDs := make([]int64, 0, len(accounts))
	for _, a := range accounts {
		activeIDs = append(activeIDs, a.ID)
	}
	result.PurgedOrphans, err = u.postRepo.PurgeOrphaned(ctx, memberID, activeIDs)
	if err != nil {
		return nil, err
	}
	if emit != nil && result.PurgedExpired+result.PurgedOrphans > 0 {
		emit(dto.EventCleanup, dto.CleanupEvent{
			PurgedExpired: result.PurgedExpired,
			PurgedOrphans: result.PurgedOrphans,
		})
	}

	retentionCutoff := now.AddDate(0, 0, -settings.EffectiveRetentionDays())

	// Accounts are processed sequentially so progress events arrive in a
	// stable, client-observable order.
	for i, account := range accounts {
		if ctx.Err() != nil {
			break
		}
		event := dto.FetchProgressEvent{
			Current: i + 1,
			Total:   len(accounts),
			Account: account.Username,
		}

		fetched, err := source.FetchRecentPosts(ctx, account.Username, u.fetchLimit)
		if err != nil {
			// One account's failure never aborts the run.
			msg := fmt.Sprintf("%s: %v", account.Username, err)
			result.Errors = append(result.Errors, msg)
			logger.GetLogger().
				WithField("member_id", memberID).
				WithField("account", account.Username).
				WithField("error", err).
				Warn("account fetch failed")
			event.Error = err.Error()
			if emit != nil {
				emit(dto.EventProgress, event)
			}
			continue
		}

		fresh := make([]model.Post, 0, len(fetched))
		for _, p := range fetched {
			if p.CreatedAt.Before(retentionCutoff) {
				result.SkippedOld++
				continue
			}
			p.TrackedAccountID = account.ID
			p.MemberID = memberID
			p.FetchedAt = now
			fresh = append(fresh, p)
		}

		inserted := 0
		if len(fresh) > 0 {
			inserted, err = u.postRepo.InsertMany(ctx, fresh)
			if err != nil {
				msg := fmt.Sprintf("%s: %v", account.Username, err)
				result.Errors = append(result.Errors, msg)
				event.Error = err.Error()
				if emit != nil {
					emit(dto.EventProgress, event)
				}
				continue
			}
			if u.archive != nil {
				if aerr := u.archive.ArchiveRaw(ctx, fresh); aerr != nil {
					logger.GetLogger().WithField("error", aerr).Warn("raw snapshot archive failed")
				}
			}
		}

		result.FetchedAccounts++
		result.NewPosts += inserted
		event.TweetsReceived = len(fetched)
		event.Filtered = len(fetched) - len(fresh)
		event.NewPosts = inserted
		if emit != nil {
			emit(dto.EventProgress, event)
		}
	}

	runLog := &model.FetchLog{
		MemberID:        memberID,
		FetchedAccounts: result.FetchedAccounts,
		NewPosts:        result.NewPosts,
		SkippedOld:      result.SkippedOld,
		PurgedExpired:   result.PurgedExpired,
		PurgedOrphans:   result.PurgedOrphans,
		ErrorCount:      len(result.Errors),
		Errors:          result.Errors,
		CreatedAt:       now,
	}
	// The audit row outlives the consumer: a run cut short by a client
	// disconnect is still recorded.
	logCtx := context.WithoutCancel(ctx)
	if err := u.runLogRepo.CreateFetchLog(logCtx, runLog); err != nil {
		logger.GetLogger().WithField("error", err).Error("failed persisting fetch log")
	}
	if u.notifier != nil {
		u.notifier.NotifyFetch(logCtx, runLog)
	}
	return result, nil
}
