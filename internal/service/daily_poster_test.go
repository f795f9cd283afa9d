package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/devlog-poster/internal/domain"
	"github.com/ricirt/devlog-poster/internal/repository"
	"github.com/ricirt/devlog-poster/internal/service"
)

type fakeGenerator struct {
	mu    sync.Mutex
	text  string
	err   error
	calls []int // sequences requested
}

func (f *fakeGenerator) Generate(_ context.Context, item *domain.WorkItem) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, item.Sequence)
	return f.text, f.err
}

type fakePublisher struct {
	mu    sync.Mutex
	err   error
	texts []string
}

func (f *fakePublisher) Publish(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	if f.err != nil {
		return "", f.err
	}
	return "urn:li:share:1", nil
}

func item(id string, seq int, status domain.Status) *domain.WorkItem {
	return &domain.WorkItem{
		ID: id, Sequence: seq, Phase: "Backend", Topic: "Auth",
		PreviousDaySummary: domain.NoPreviousDay, TodayTask: "Built login.",
		Challenges: "Token expiry.", Status: status,
	}
}

func newPoster(repo *repository.MockWorkItemRepository, gen *fakeGenerator, pub *fakePublisher) *service.DailyPoster {
	return service.NewDailyPoster(repo, gen, pub, zap.NewNop(), service.Hooks{})
}

func TestDailyPoster_SelectsLowestPendingSequence(t *testing.T) {
	repo := repository.NewMockWorkItemRepository()
	repo.Seed(
		item("a", 1, domain.StatusPosted),
		item("b", 4, domain.StatusPending),
		item("c", 2, domain.StatusPending),
		item("d", 3, domain.StatusPending),
	)
	gen := &fakeGenerator{text: "post"}
	pub := &fakePublisher{}

	res := newPoster(repo, gen, pub).RunOnce(context.Background())

	if res.Outcome != service.OutcomePosted {
		t.Fatalf("outcome: want posted, got %s (err=%v)", res.Outcome, res.Err)
	}
	if res.Item.ID != "c" {
		t.Fatalf("expected item c (sequence 2), got %s", res.Item.ID)
	}
	if len(gen.calls) != 1 || gen.calls[0] != 2 {
		t.Fatalf("generator calls: %v", gen.calls)
	}
	if got := repo.Get("c"); got.Status != domain.StatusPosted || got.PostedAt == nil {
		t.Fatalf("item c: status=%s postedAt=%v", got.Status, got.PostedAt)
	}
	for _, id := range []string{"b", "d"} {
		if got := repo.Get(id); got.Status != domain.StatusPending {
			t.Fatalf("item %s changed to %s", id, got.Status)
		}
	}
	if len(pub.texts) != 1 || pub.texts[0] != "post" {
		t.Fatalf("published texts: %v", pub.texts)
	}
	if res.PostID != "urn:li:share:1" {
		t.Errorf("post id: got %q", res.PostID)
	}
}

func TestDailyPoster_DuplicateSequencesFollowInsertionOrder(t *testing.T) {
	repo := repository.NewMockWorkItemRepository()
	repo.Seed(item("first", 5, domain.StatusPending), item("second", 5, domain.StatusPending))

	res := newPoster(repo, &fakeGenerator{text: "p"}, &fakePublisher{}).RunOnce(context.Background())
	if res.Item == nil || res.Item.ID != "first" {
		t.Fatalf("expected first-inserted item, got %+v", res.Item)
	}
}

func TestDailyPoster_NoPendingIsNoOp(t *testing.T) {
	tests := []struct {
		name  string
		items []*domain.WorkItem
	}{
		{"empty store", nil},
		{"all posted", []*domain.WorkItem{item("a", 1, domain.StatusPosted), item("b", 2, domain.StatusPosted)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := repository.NewMockWorkItemRepository()
			repo.Seed(tc.items...)
			gen := &fakeGenerator{text: "p"}
			pub := &fakePublisher{}

			res := newPoster(repo, gen, pub).RunOnce(context.Background())

			if res.Outcome != service.OutcomeIdle {
				t.Fatalf("outcome: want idle, got %s", res.Outcome)
			}
			if res.Err != nil {
				t.Fatalf("idle run should carry no error, got %v", res.Err)
			}
			if len(gen.calls) != 0 || len(pub.texts) != 0 {
				t.Fatalf("expected no generate/publish calls, got %d/%d", len(gen.calls), len(pub.texts))
			}
			if repo.Writes != 0 {
				t.Fatalf("expected no writes, got %d", repo.Writes)
			}
		})
	}
}

func TestDailyPoster_GenerationErrorLeavesPending(t *testing.T) {
	repo := repository.NewMockWorkItemRepository()
	repo.Seed(item("a", 1, domain.StatusPending))
	gen := &fakeGenerator{err: &domain.GenerationError{Reason: "empty post"}}
	pub := &fakePublisher{}

	res := newPoster(repo, gen, pub).RunOnce(context.Background())

	if res.Outcome != service.OutcomeGenerationFailed {
		t.Fatalf("outcome: want generation_failed, got %s", res.Outcome)
	}
	if !domain.IsGenerationError(res.Err) {
		t.Fatalf("expected GenerationError, got %v", res.Err)
	}
	if got := repo.Get("a"); got.Status != domain.StatusPending {
		t.Fatalf("status: want pending, got %s", got.Status)
	}
	if len(pub.texts) != 0 {
		t.Fatal("publisher must not be called after a generation failure")
	}
}

// A failed publish happens after the claim, so the item stays posted.
func TestDailyPoster_PublishErrorStillMarksPosted(t *testing.T) {
	repo := repository.NewMockWorkItemRepository()
	repo.Seed(item("a", 1, domain.StatusPending), item("b", 2, domain.StatusPending))
	pub := &fakePublisher{err: &domain.PublishError{StatusCode: 401, Body: "expired token"}}

	var publishFailures int
	var outcomes []string
	poster := service.NewDailyPoster(repo, &fakeGenerator{text: "p"}, pub, zap.NewNop(), service.Hooks{
		OnRun:           func(o string, _ time.Duration) { outcomes = append(outcomes, o) },
		OnPublishFailed: func() { publishFailures++ },
	})

	res := poster.RunOnce(context.Background())

	if res.Outcome != service.OutcomePublishFailed {
		t.Fatalf("outcome: want publish_failed, got %s", res.Outcome)
	}
	var pe *domain.PublishError
	if !errors.As(res.Err, &pe) || pe.StatusCode != 401 {
		t.Fatalf("expected PublishError 401, got %v", res.Err)
	}
	if got := repo.Get("a"); got.Status != domain.StatusPosted {
		t.Fatalf("status: want posted, got %s", got.Status)
	}
	if got := repo.Get("b"); got.Status != domain.StatusPending {
		t.Fatalf("item b changed to %s", got.Status)
	}
	if publishFailures != 1 {
		t.Errorf("publish failure hook: want 1 call, got %d", publishFailures)
	}
	if len(outcomes) != 1 || outcomes[0] != "publish_failed" {
		t.Errorf("run hook outcomes: %v", outcomes)
	}
}

func TestDailyPoster_StoreErrors(t *testing.T) {
	t.Run("find fails", func(t *testing.T) {
		repo := repository.NewMockWorkItemRepository()
		repo.Seed(item("a", 1, domain.StatusPending))
		repo.FindNextPendingErr = &domain.StoreError{Op: "find next pending", Err: errors.New("connection refused")}
		gen := &fakeGenerator{text: "p"}

		res := newPoster(repo, gen, &fakePublisher{}).RunOnce(context.Background())

		if res.Outcome != service.OutcomeStoreFailed {
			t.Fatalf("outcome: want store_failed, got %s", res.Outcome)
		}
		if len(gen.calls) != 0 {
			t.Fatal("generator must not be called when the store read fails")
		}
	})

	t.Run("claim fails", func(t *testing.T) {
		repo := repository.NewMockWorkItemRepository()
		repo.Seed(item("a", 1, domain.StatusPending))
		repo.MarkPostedErr = &domain.StoreError{Op: "mark posted", Err: errors.New("timeout")}
		pub := &fakePublisher{}

		res := newPoster(repo, &fakeGenerator{text: "p"}, pub).RunOnce(context.Background())

		if res.Outcome != service.OutcomeStoreFailed {
			t.Fatalf("outcome: want store_failed, got %s", res.Outcome)
		}
		if got := repo.Get("a"); got.Status != domain.StatusPending {
			t.Fatalf("status: want pending, got %s", got.Status)
		}
		if len(pub.texts) != 0 {
			t.Fatal("publisher must not be called when the claim fails")
		}
	})
}

func TestDailyPoster_LostClaimIsSkipped(t *testing.T) {
	repo := repository.NewMockWorkItemRepository()
	repo.Seed(item("a", 1, domain.StatusPending))
	repo.MarkPostedErr = domain.ErrAlreadyPosted
	pub := &fakePublisher{}

	res := newPoster(repo, &fakeGenerator{text: "p"}, pub).RunOnce(context.Background())

	if res.Outcome != service.OutcomeSkipped {
		t.Fatalf("outcome: want skipped, got %s", res.Outcome)
	}
	if len(pub.texts) != 0 {
		t.Fatal("publisher must not be called for a lost claim")
	}
}

// Overlapping runs select the same item; the conditional claim lets only one publish.
func TestDailyPoster_ConcurrentRunsPublishOnce(t *testing.T) {
	repo := repository.NewMockWorkItemRepository()
	repo.Seed(item("a", 1, domain.StatusPending))
	pub := &fakePublisher{}
	poster := newPoster(repo, &fakeGenerator{text: "p"}, pub)

	const runs = 8
	results := make([]service.RunResult, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = poster.RunOnce(context.Background())
		}(i)
	}
	wg.Wait()

	if len(pub.texts) != 1 {
		t.Fatalf("expected exactly one publish, got %d", len(pub.texts))
	}
	posted := 0
	for _, r := range results {
		switch r.Outcome {
		case service.OutcomePosted:
			posted++
		case service.OutcomeSkipped, service.OutcomeIdle:
		default:
			t.Fatalf("unexpected outcome %s", r.Outcome)
		}
	}
	if posted != 1 {
		t.Fatalf("expected one posted outcome, got %d", posted)
	}
}

func TestDailyPoster_ReportsPendingCount(t *testing.T) {
	repo := repository.NewMockWorkItemRepository()
	repo.Seed(item("a", 1, domain.StatusPending), item("b", 2, domain.StatusPending))

	pending := -1
	poster := service.NewDailyPoster(repo, &fakeGenerator{text: "p"}, &fakePublisher{}, zap.NewNop(), service.Hooks{
		OnPending: func(n int) { pending = n },
	})
	poster.RunOnce(context.Background())

	if pending != 1 {
		t.Fatalf("pending gauge: want 1, got %d", pending)
	}
	if repo.CountsCalls != 1 {
		t.Fatalf("Counts reads: want 1 per run, got %d", repo.CountsCalls)
	}
}

func TestDailyPoster_SkipsCountsWithoutPendingHook(t *testing.T) {
	repo := repository.NewMockWorkItemRepository()
	repo.Seed(item("a", 1, domain.StatusPending), item("b", 2, domain.StatusPending))

	res := newPoster(repo, &fakeGenerator{text: "p"}, &fakePublisher{}).RunOnce(context.Background())

	if res.Outcome != service.OutcomePosted {
		t.Fatalf("outcome: want posted, got %s", res.Outcome)
	}
	if repo.CountsCalls != 0 {
		t.Fatalf("Counts reads: want 0 without an OnPending hook, got %d", repo.CountsCalls)
	}
}
