package service

import (
	"context"

	"github.com/ricirt/devlog-poster/internal/domain"
	"github.com/ricirt/devlog-poster/internal/repository"
)

// Stats summarises the queue.
type Stats struct {
	Pending int `json:"pending"`
	Posted  int `json:"posted"`
	Total   int `json:"total"`
}

// QueueService is the read side used by the HTTP API and the queue command.
type QueueService struct {
	repo repository.WorkItemRepository
}

func NewQueueService(repo repository.WorkItemRepository) *QueueService {
	return &QueueService{repo: repo}
}

func (s *QueueService) List(ctx context.Context, filter domain.ListFilter) ([]*domain.WorkItem, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

// GetBySequence looks up one item by sequence and status.
func (s *QueueService) GetBySequence(ctx context.Context, sequence int, status domain.Status) (*domain.WorkItem, error) {
	if sequence <= 0 {
		return nil, domain.ErrInvalidSequence
	}
	if !status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.repo.FindBySequenceAndStatus(ctx, sequence, status)
}

// Next returns the item the next run would pick, or ErrNotFound.
func (s *QueueService) Next(ctx context.Context) (*domain.WorkItem, error) {
	return s.repo.FindNextPending(ctx)
}

func (s *QueueService) Stats(ctx context.Context) (Stats, error) {
	pending, posted, err := s.repo.Counts(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Pending: pending, Posted: posted, Total: pending + posted}, nil
}
