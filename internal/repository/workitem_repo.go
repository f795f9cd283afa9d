package repository

import (
	"context"
	"time"

	"github.com/ricirt/devlog-poster/internal/domain"
)

// WorkItemRepository defines all persistence operations for work items.
// The pgx implementation is in pg_workitem_repo.go, the SQLite one in
// sqlite_workitem_repo.go. Tests use a hand-written mock (mock_workitem_repo.go).
//
// Driver failures are returned as *domain.StoreError; a lookup that matches
// nothing returns domain.ErrNotFound.
type WorkItemRepository interface {
	FindBySequenceAndStatus(ctx context.Context, sequence int, status domain.Status) (*domain.WorkItem, error)
	// FindNextPending returns the pending item with the lowest sequence.
	FindNextPending(ctx context.Context) (*domain.WorkItem, error)
	// InsertMany stores all items or none. A sequence that collides with an
	// existing row or with another item in the slice yields ErrDuplicateSequence.
	InsertMany(ctx context.Context, items []*domain.WorkItem) error
	Save(ctx context.Context, item *domain.WorkItem) error
	// MarkPosted flips a pending item to posted. It returns ErrAlreadyPosted
	// when the row is not pending anymore, so two racing runs cannot both claim it.
	MarkPosted(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.WorkItem, error)
	Counts(ctx context.Context) (pending, posted int, err error)
}

// checkUniqueSequences rejects a batch that repeats a sequence within itself.
func checkUniqueSequences(items []*domain.WorkItem) error {
	seen := make(map[int]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.Sequence]; dup {
			return domain.ErrDuplicateSequence
		}
		seen[it.Sequence] = struct{}{}
	}
	return nil
}

func storeErr(op string, err error) error {
	return &domain.StoreError{Op: op, Err: err}
}
