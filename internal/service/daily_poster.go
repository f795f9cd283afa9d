package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/devlog-poster/internal/domain"
	"github.com/ricirt/devlog-poster/internal/publisher"
	"github.com/ricirt/devlog-poster/internal/repository"
)

// Outcome labels how a single run ended. Values double as metric labels.
type Outcome string

const (
	OutcomeIdle             Outcome = "idle"
	OutcomeStoreFailed      Outcome = "store_failed"
	OutcomeGenerationFailed Outcome = "generation_failed"
	OutcomeSkipped          Outcome = "skipped"
	OutcomePosted           Outcome = "posted"
	OutcomePublishFailed    Outcome = "publish_failed"
)

// RunResult describes one RunOnce call. Err is set for every outcome
// except idle and posted.
type RunResult struct {
	Outcome  Outcome
	Item     *domain.WorkItem
	PostID   string
	Err      error
	Duration time.Duration
}

// PostGenerator produces post text for a work item.
type PostGenerator interface {
	Generate(ctx context.Context, item *domain.WorkItem) (string, error)
}

// Hooks are optional metric callbacks; nil fields are no-ops. OnPending
// costs one Counts read per run, which is skipped when it is nil.
type Hooks struct {
	OnRun           func(outcome string, elapsed time.Duration)
	OnPublishFailed func()
	OnPending       func(n int)
}

// DailyPoster takes the next pending work item, turns it into a post and
// publishes it. Triggers (cron, HTTP, CLI) depend on this, not on each other.
type DailyPoster struct {
	repo   repository.WorkItemRepository
	gen    PostGenerator
	pub    publisher.Publisher
	logger *zap.Logger
	hooks  Hooks
	now    func() time.Time
}

func NewDailyPoster(
	repo repository.WorkItemRepository,
	gen PostGenerator,
	pub publisher.Publisher,
	logger *zap.Logger,
	hooks Hooks,
) *DailyPoster {
	if hooks.OnRun == nil {
		hooks.OnRun = func(string, time.Duration) {}
	}
	if hooks.OnPublishFailed == nil {
		hooks.OnPublishFailed = func() {}
	}
	return &DailyPoster{
		repo: repo, gen: gen, pub: pub, logger: logger, hooks: hooks,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// RunOnce performs at most one post. It never returns an error: failures are
// logged and reported in RunResult, and the item stays pending unless it was
// claimed.
//
// The item is claimed (pending -> posted, conditionally) before publishing,
// so overlapping runs cannot publish the same item twice. A publish failure
// after the claim leaves the item posted; it is logged and counted.
func (s *DailyPoster) RunOnce(ctx context.Context) RunResult {
	start := time.Now()
	res := s.run(ctx)
	res.Duration = time.Since(start)

	s.hooks.OnRun(string(res.Outcome), res.Duration)
	if res.Outcome == OutcomePublishFailed {
		s.hooks.OnPublishFailed()
	}
	if s.hooks.OnPending != nil {
		if pending, _, err := s.repo.Counts(ctx); err == nil {
			s.hooks.OnPending(pending)
		}
	}
	return res
}

func (s *DailyPoster) run(ctx context.Context) RunResult {
	item, err := s.repo.FindNextPending(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Info("no pending work item")
		return RunResult{Outcome: OutcomeIdle}
	}
	if err != nil {
		s.logger.Error("failed to load next work item", zap.Error(err))
		return RunResult{Outcome: OutcomeStoreFailed, Err: err}
	}

	log := s.logger.With(zap.String("item_id", item.ID), zap.Int("sequence", item.Sequence))

	text, err := s.gen.Generate(ctx, item)
	if err != nil {
		log.Error("post generation failed", zap.Error(err))
		return RunResult{Outcome: OutcomeGenerationFailed, Item: item, Err: err}
	}

	now := s.now()
	if err := s.repo.MarkPosted(ctx, item.ID, now); err != nil {
		if errors.Is(err, domain.ErrAlreadyPosted) {
			log.Warn("work item was claimed by another run")
			return RunResult{Outcome: OutcomeSkipped, Item: item, Err: err}
		}
		log.Error("failed to mark work item posted", zap.Error(err))
		return RunResult{Outcome: OutcomeStoreFailed, Item: item, Err: err}
	}
	item.Status = domain.StatusPosted
	item.PostedAt = &now
	item.UpdatedAt = now

	postID, err := s.pub.Publish(ctx, text)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		var pe *domain.PublishError
		if errors.As(err, &pe) && pe.Body != "" {
			fields = append(fields, zap.Int("status_code", pe.StatusCode), zap.String("response_body", pe.Body))
		}
		log.Error("publish failed; work item stays posted", fields...)
		return RunResult{Outcome: OutcomePublishFailed, Item: item, Err: err}
	}

	log.Info("posted work item", zap.String("post_id", postID))
	return RunResult{Outcome: OutcomePosted, Item: item, PostID: postID}
}
