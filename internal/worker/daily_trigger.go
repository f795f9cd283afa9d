package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ricirt/devlog-poster/internal/service"
)

// DefaultSchedule fires once a day at 09:00.
const DefaultSchedule = "0 9 * * *"

// Runner is the workflow the trigger fires; *service.DailyPoster satisfies it.
type Runner interface {
	RunOnce(ctx context.Context) service.RunResult
}

// DailyTrigger invokes the runner on a cron schedule evaluated in a fixed
// time zone. A firing that comes while the previous run is still going is
// skipped rather than queued.
type DailyTrigger struct {
	spec     string
	loc      *time.Location
	schedule cron.Schedule
	runner   Runner
	logger   *zap.Logger
}

// NewDailyTrigger parses a standard 5-field cron expression (descriptors such
// as @daily are accepted too).
func NewDailyTrigger(spec string, loc *time.Location, runner Runner, logger *zap.Logger) (*DailyTrigger, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	if loc == nil {
		loc = time.Local
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return &DailyTrigger{spec: spec, loc: loc, schedule: schedule, runner: runner, logger: logger}, nil
}

// Next returns the first firing strictly after t.
func (dt *DailyTrigger) Next(t time.Time) time.Time {
	return dt.schedule.Next(t.In(dt.loc))
}

// Run blocks until ctx is cancelled, then stops the scheduler and waits for
// an in-flight run to return.
func (dt *DailyTrigger) Run(ctx context.Context) {
	logger := cronLogger{dt.logger.Sugar()}
	c := cron.New(
		cron.WithLocation(dt.loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	c.Schedule(dt.schedule, cron.FuncJob(func() { dt.fire(ctx) }))
	c.Start()

	dt.logger.Info("daily trigger started",
		zap.String("schedule", dt.spec),
		zap.String("timezone", dt.loc.String()),
		zap.Time("next_run", dt.Next(time.Now())),
	)

	<-ctx.Done()
	dt.logger.Info("daily trigger stopping")
	<-c.Stop().Done()
}

func (dt *DailyTrigger) fire(ctx context.Context) {
	dt.logger.Info("scheduled run starting")
	res := dt.runner.RunOnce(ctx)
	dt.logger.Info("scheduled run finished",
		zap.String("outcome", string(res.Outcome)),
		zap.Duration("duration", res.Duration),
		zap.Time("next_run", dt.Next(time.Now())),
	)
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
