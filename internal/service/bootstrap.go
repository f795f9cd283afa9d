package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ricirt/devlog-poster/internal/domain"
	"github.com/ricirt/devlog-poster/internal/generator"
	"github.com/ricirt/devlog-poster/internal/repository"
)

// TimelineGenerator produces the full set of pending items for a project.
type TimelineGenerator interface {
	GenerateTimeline(ctx context.Context, description generator.ProjectDescription) ([]*domain.WorkItem, error)
}

// Bootstrapper fills an empty store from a generated timeline.
type Bootstrapper struct {
	repo   repository.WorkItemRepository
	gen    TimelineGenerator
	logger *zap.Logger
}

func NewBootstrapper(repo repository.WorkItemRepository, gen TimelineGenerator, logger *zap.Logger) *Bootstrapper {
	return &Bootstrapper{repo: repo, gen: gen, logger: logger}
}

// Plan generates the timeline and assigns IDs and timestamps without storing it.
func (b *Bootstrapper) Plan(ctx context.Context, description generator.ProjectDescription) ([]*domain.WorkItem, error) {
	items, err := b.gen.GenerateTimeline(ctx, description)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, it := range items {
		it.ID = uuid.New().String()
		it.CreatedAt = now
		it.UpdatedAt = now
	}
	return items, nil
}

// Seed generates a timeline and inserts it in one batch. It refuses to run
// against a store that already has items unless force is set; even then a
// sequence collision aborts the whole batch with ErrDuplicateSequence.
func (b *Bootstrapper) Seed(ctx context.Context, description generator.ProjectDescription, force bool) (int, error) {
	if !force {
		pending, posted, err := b.repo.Counts(ctx)
		if err != nil {
			return 0, err
		}
		if pending+posted > 0 {
			return 0, domain.ErrStoreNotEmpty
		}
	}

	items, err := b.Plan(ctx, description)
	if err != nil {
		return 0, err
	}

	if err := b.repo.InsertMany(ctx, items); err != nil {
		return 0, fmt.Errorf("insert timeline: %w", err)
	}

	b.logger.Info("seeded work items", zap.Int("count", len(items)))
	return len(items), nil
}
