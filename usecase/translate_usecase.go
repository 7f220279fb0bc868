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

// DefaultTranslateConcurrency caps the number of in-flight completion calls
// within one wave.
const DefaultTranslateConcurrency = 3

// ErrPostNotFound is returned by single-post translation when the id does
// not belong to the member.
var ErrPostNotFound = errors.New("translate: post not found")

type ITranslateUsecase interface {
	// RunBacklog pulls up to limit untranslated posts and translates them.
	RunBacklog(ctx context.Context, memberID string, limit int, emit EventEmitter) (*dto.TranslateRunResult, error)

	// RunBatch translates the given posts in sequential waves of bounded
	// concurrency, emitting one event per post when emit is non-nil.
	RunBatch(ctx context.Context, memberID string, posts []model.Post, emit EventEmitter) (*dto.TranslateRunResult, error)

	// TranslateOne re-translates a single stored post without streaming.
	TranslateOne(ctx context.Context, memberID, postID string) (*dto.TranslatedPost, error)

	// CountBacklog reports the member's untranslated backlog size.
	CountBacklog(ctx context.Context, memberID string) (int, error)
}

type translateUsecase struct {
	postRepo    repository.IPost
	runLogRepo  repository.IRunLog
	translator  repository.ITranslator
	notifier    RunNotifier
	concurrency int
	now         func() time.Time
}

type TranslateOption func(*translateUsecase)

func WithTranslateConcurrency(n int) TranslateOption {
	return func(u *translateUsecase) {
		if n > 0 {
			u.concurrency = n
		}
	}
}

func WithTranslateNotifier(n RunNotifier) TranslateOption {
	return func(u *translateUsecase) { u.notifier = n }
}

func WithTranslateClock(now func() time.Time) TranslateOption {
	return func(u *translateUsecase) { u.now = now }
}

func NewTranslateUsecase(
	postRepo repository.IPost,
	runLogRepo repository.IRunLog,
	translator repository.ITranslator,
	opts ...TranslateOption,
) ITranslateUsecase {
	u := &translateUsecase{
		postRepo:    postRepo,
		runLogRepo:  runLogRepo,
		translator:  translator,
		concurrency: DefaultTranslateConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *translateUsecase) CountBacklog(ctx context.Context, memberID string) (int, error) {
	return u.postRepo.CountUntranslated(ctx, memberID)
}

func (u *translateUsecase) RunBacklog(ctx context.Context, memberID string, limit int, emit EventEmitter) (*dto.TranslateRunResult, error) {
	if limit <= 0 {
		limit = 20
	}
	posts, err := u.postRepo.FindUntranslated(ctx, memberID, limit)
	if err != nil {
		return nil, err
	}
	return u.RunBatch(ctx, memberID, posts, emit)
}

type translateOutcome struct {
	result *repository.TranslationResult
	err    error
}

func (u *translateUsecase) RunBatch(ctx context.Context, memberID string, posts []model.Post, emit EventEmitter) (*dto.TranslateRunResult, error) {
	total := len(posts)
	result := &dto.TranslateRunResult{
		Attempted:  total,
		Translated: []dto.TranslatedPost{},
		Errors:     []dto.TranslationError{},
	}

	// An in-flight wave is allowed to finish even when the consumer
	// disconnects: the calls themselves run on a detached context, while
	// the request context only gates the start of the next wave.
	workCtx := context.WithoutCancel(ctx)

	current := 0
	for start := 0; start < total; start += u.concurrency {
		// Wave boundaries are the cancellation checkpoints: a wave already
		// in flight finishes, but no further wave starts.
		if ctx.Err() != nil {
			result.Aborted = true
			break
		}
		end := start + u.concurrency
		if end > total {
			end = total
		}
		wave := posts[start:end]

		outcomes := make([]translateOutcome, len(wave))
		done := make([]chan struct{}, len(wave))
		for i := range wave {
			done[i] = make(chan struct{})
			go func(i int, post model.Post) {
				defer close(done[i])
				res, err := u.translator.Translate(workCtx, memberID, post.Text, post.QuotedText)
				if err == nil {
					// Write back as soon as the call resolves.
					err = u.postRepo.UpdateTranslation(workCtx, memberID, post.ID, res.TranslatedText, res.CommentText, res.QuotedTranslatedText)
				}
				outcomes[i] = translateOutcome{result: res, err: err}
			}(i, wave[i])
		}

		// Emission follows array position, not completion order: event i is
		// emitted once item i resolves, even while later wave-mates run.
		for i := range wave {
			<-done[i]
			current++
			out := outcomes[i]
			if out.err != nil {
				result.Errors = append(result.Errors, dto.TranslationError{
					PostID: wave[i].ID,
					Error:  out.err.Error(),
				})
				logger.GetLogger().
					WithField("member_id", memberID).
					WithField("post_id", wave[i].ID).
					WithField("error", out.err).
					Warn("post translation failed")
				if emit != nil {
					emit(dto.EventError, dto.TranslateErrorEvent{
						PostID:  wave[i].ID,
						Error:   out.err.Error(),
						Current: current,
						Total:   total,
					})
				}
				continue
			}
			result.Translated = append(result.Translated, dto.TranslatedPost{
				PostID:               wave[i].ID,
				TranslatedText:       out.result.TranslatedText,
				CommentText:          out.result.CommentText,
				QuotedTranslatedText: out.result.QuotedTranslatedText,
			})
			if emit != nil {
				emit(dto.EventTranslated, dto.TranslatedEvent{
					PostID:               wave[i].ID,
					TranslatedText:       out.result.TranslatedText,
					CommentText:          out.result.CommentText,
					QuotedTranslatedText: out.result.QuotedTranslatedText,
					Current:              current,
					Total:                total,
				})
			}
		}
	}

	errs := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		errs = append(errs, fmt.Sprintf("%s: %s", e.PostID, e.Error))
	}
	runLog := &model.TranslateLog{
		MemberID:   memberID,
		Attempted:  total,
		Translated: len(result.Translated),
		ErrorCount: len(result.Errors),
		Errors:     errs,
		Aborted:    result.Aborted,
		CreatedAt:  u.now().UTC(),
	}
	if err := u.runLogRepo.CreateTranslateLog(workCtx, runLog); err != nil {
		logger.GetLogger().WithField("error", err).Error("failed persisting translate log")
	}
	if u.notifier != nil {
		u.notifier.NotifyTranslate(workCtx, runLog)
	}
	return result, nil
}

func (u *translateUsecase) TranslateOne(ctx context.Context, memberID, postID string) (*dto.TranslatedPost, error) {
	post, err := u.postRepo.GetByID(ctx, memberID, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	res, err := u.translator.Translate(ctx, memberID, post.Text, post.QuotedText)
	if err != nil {
		return nil, err
	}
	if err := u.postRepo.UpdateTranslation(ctx, memberID, post.ID, res.TranslatedText, res.CommentText, res.QuotedTranslatedText); err != nil {
		return nil, err
	}
	return &dto.TranslatedPost{
		PostID:               post.ID,
		TranslatedText:       res.TranslatedText,
		CommentText:          res.CommentText,
		QuotedTranslatedText: res.QuotedTranslatedText,
	}, nil
}
