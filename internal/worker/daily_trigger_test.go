package worker_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/devlog-poster/internal/service"
	"github.com/ricirt/devlog-poster/internal/worker"
)

type countingRunner struct {
	calls atomic.Int32
	fired chan struct{}
}

func (r *countingRunner) RunOnce(context.Context) service.RunResult {
	if r.calls.Add(1) == 1 {
		close(r.fired)
	}
	return service.RunResult{Outcome: service.OutcomeIdle}
}

func TestDailyTrigger_Next(t *testing.T) {
	plus3 := time.FixedZone("UTC+3", 3*3600)
	dt, err := worker.NewDailyTrigger("0 9 * * *", plus3, &countingRunner{}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewDailyTrigger: %v", err)
	}

	tests := []struct {
		name  string
		after time.Time
		want  time.Time
	}{
		{
			name:  "later the same day",
			after: time.Date(2026, 10, 17, 5, 0, 0, 0, time.UTC), // 08:00 local
			want:  time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC),
		},
		{
			name:  "already past today",
			after: time.Date(2026, 10, 17, 7, 0, 0, 0, time.UTC), // 10:00 local
			want:  time.Date(2026, 10, 18, 6, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := dt.Next(tc.after); !got.Equal(tc.want) {
				t.Fatalf("want %s, got %s", tc.want, got.UTC())
			}
		})
	}
}

func TestDailyTrigger_DefaultSchedule(t *testing.T) {
	dt, err := worker.NewDailyTrigger("", time.UTC, &countingRunner{}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewDailyTrigger: %v", err)
	}
	got := dt.Next(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if want := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("want %s, got %s", want, got)
	}
}

func TestDailyTrigger_InvalidSchedule(t *testing.T) {
	if _, err := worker.NewDailyTrigger("every morning", time.UTC, &countingRunner{}, zap.NewNop()); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestDailyTrigger_RunFiresAndStops(t *testing.T) {
	runner := &countingRunner{fired: make(chan struct{})}
	dt, err := worker.NewDailyTrigger("@every 1s", time.UTC, runner, zap.NewNop())
	if err != nil {
		t.Fatalf("NewDailyTrigger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		dt.Run(ctx)
		close(done)
	}()

	select {
	case <-runner.fired:
	case <-time.After(5 * time.Second):
		t.Fatal("trigger never fired")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
