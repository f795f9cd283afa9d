package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/ricirt/devlog-poster/internal/domain"
	"github.com/ricirt/devlog-poster/internal/repository"
)

func TestMockRepository_TiesBreakByInsertionOrder(t *testing.T) {
	repo := repository.NewMockWorkItemRepository()
	first, second := newItem(1), newItem(1)
	repo.Seed(first, second)

	got, err := repo.FindNextPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != first.ID {
		t.Fatalf("expected first inserted item, got %s", got.ID)
	}
}

func TestMockRepository_MarkPostedTwice(t *testing.T) {
	repo := repository.NewMockWorkItemRepository()
	w := newItem(1)
	repo.Seed(w)

	if err := repo.MarkPosted(context.Background(), w.ID, time.Now()); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if err := repo.MarkPosted(context.Background(), w.ID, time.Now()); err != domain.ErrAlreadyPosted {
		t.Fatalf("expected ErrAlreadyPosted, got %v", err)
	}
}
