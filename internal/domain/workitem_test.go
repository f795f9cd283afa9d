package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ricirt/devlog-poster/internal/domain"
)

func TestWorkItem_Validate(t *testing.T) {
	valid := domain.WorkItem{
		Sequence:   1,
		Phase:      "Planning",
		Topic:      "Architecture",
		TodayTask:  "Drew the service boundaries.",
		Challenges: "Deciding where chat ends and tasks begin.",
		Status:     domain.StatusPending,
	}

	t.Run("valid item passes", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("zero sequence", func(t *testing.T) {
		w := valid
		w.Sequence = 0
		if err := w.Validate(); err != domain.ErrInvalidSequence {
			t.Fatalf("expected ErrInvalidSequence, got %v", err)
		}
	})

	t.Run("empty today task", func(t *testing.T) {
		w := valid
		w.TodayTask = ""
		if err := w.Validate(); err != domain.ErrMissingField {
			t.Fatalf("expected ErrMissingField, got %v", err)
		}
	})

	t.Run("empty challenges", func(t *testing.T) {
		w := valid
		w.Challenges = ""
		if err := w.Validate(); err != domain.ErrMissingField {
			t.Fatalf("expected ErrMissingField, got %v", err)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		w := valid
		w.Status = "failed"
		if err := w.Validate(); err != domain.ErrInvalidStatus {
			t.Fatalf("expected ErrInvalidStatus, got %v", err)
		}
	})
}

func TestWorkItem_Normalize(t *testing.T) {
	w := domain.WorkItem{Sequence: 1, Phase: "  Setup ", TodayTask: "x\n"}
	w.Normalize()

	if w.PreviousDaySummary != domain.NoPreviousDay {
		t.Fatalf("expected previous day %q, got %q", domain.NoPreviousDay, w.PreviousDaySummary)
	}
	if w.Status != domain.StatusPending {
		t.Fatalf("expected status=pending, got %s", w.Status)
	}
	if w.Phase != "Setup" || w.TodayTask != "x" {
		t.Fatalf("expected trimmed fields, got phase=%q task=%q", w.Phase, w.TodayTask)
	}
}

func TestTimelineEntry_ToWorkItem(t *testing.T) {
	e := domain.TimelineEntry{
		Day:         5,
		Phase:       "Backend Development",
		Topic:       "Task Workflow Module",
		PreviousDay: "Finished the organization module.",
		TodayTask:   "Built task assignment.",
		Challenges:  "Keeping foreign keys consistent.",
	}
	w := e.ToWorkItem()

	if w.Sequence != 5 || w.Status != domain.StatusPending {
		t.Fatalf("unexpected item: %+v", w)
	}
	if w.PreviousDaySummary != e.PreviousDay {
		t.Fatalf("expected previous day to carry over, got %q", w.PreviousDaySummary)
	}
	if err := w.Validate(); err != nil {
		t.Fatalf("expected converted item to validate, got %v", err)
	}
}

func TestTypedErrors_Unwrap(t *testing.T) {
	root := errors.New("connection refused")

	t.Run("generation", func(t *testing.T) {
		err := fmt.Errorf("generate post: %w", &domain.GenerationError{Reason: "empty response"})
		if !domain.IsGenerationError(err) {
			t.Fatal("expected IsGenerationError to see through wrapping")
		}
	})

	t.Run("store", func(t *testing.T) {
		err := &domain.StoreError{Op: "find next pending", Err: root}
		if !errors.Is(err, root) {
			t.Fatal("expected StoreError to unwrap to its cause")
		}
	})

	t.Run("publish with body", func(t *testing.T) {
		err := &domain.PublishError{StatusCode: 401, Body: `{"message":"expired"}`}
		if err.Error() != `publish failed: status 401: {"message":"expired"}` {
			t.Fatalf("unexpected message: %s", err.Error())
		}
	})
}
