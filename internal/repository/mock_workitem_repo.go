package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ricirt/devlog-poster/internal/domain"
)

// MockWorkItemRepository is a hand-written, in-memory implementation of
// WorkItemRepository used in unit tests. No mock-generation library needed.
type MockWorkItemRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.WorkItem
	order []string // insertion order, used to break sequence ties

	// Optional error overrides; set in tests to simulate failure paths.
	FindNextPendingErr error
	InsertManyErr      error
	SaveErr            error
	MarkPostedErr      error

	// Writes counts successful mutations (InsertMany, Save, MarkPosted).
	Writes int
	// CountsCalls counts Counts reads.
	CountsCalls int
}

func NewMockWorkItemRepository() *MockWorkItemRepository {
	return &MockWorkItemRepository{items: make(map[string]*domain.WorkItem)}
}

// Seed stores items directly, bypassing uniqueness checks. Useful for
// reproducing stores that were filled before sequences were unique.
func (m *MockWorkItemRepository) Seed(items ...*domain.WorkItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		clone := *it
		if _, ok := m.items[it.ID]; !ok {
			m.order = append(m.order, it.ID)
		}
		m.items[it.ID] = &clone
	}
}

// Get returns a copy of the stored item, or nil.
func (m *MockWorkItemRepository) Get(id string) *domain.WorkItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.items[id]
	if !ok {
		return nil
	}
	clone := *w
	return &clone
}

func (m *MockWorkItemRepository) FindBySequenceAndStatus(_ context.Context, sequence int, status domain.Status) (*domain.WorkItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.sortedLocked() {
		if w.Sequence == sequence && w.Status == status {
			clone := *w
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockWorkItemRepository) FindNextPending(_ context.Context) (*domain.WorkItem, error) {
	if m.FindNextPendingErr != nil {
		return nil, m.FindNextPendingErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.sortedLocked() {
		if w.Status == domain.StatusPending {
			clone := *w
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockWorkItemRepository) InsertMany(_ context.Context, items []*domain.WorkItem) error {
	if m.InsertManyErr != nil {
		return m.InsertManyErr
	}
	if err := checkUniqueSequences(items); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		for _, existing := range m.items {
			if existing.Sequence == it.Sequence {
				return domain.ErrDuplicateSequence
			}
		}
	}
	for _, it := range items {
		clone := *it
		m.items[it.ID] = &clone
		m.order = append(m.order, it.ID)
	}
	m.Writes++
	return nil
}

func (m *MockWorkItemRepository) Save(_ context.Context, w *domain.WorkItem) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[w.ID]; !ok {
		return domain.ErrNotFound
	}
	clone := *w
	m.items[w.ID] = &clone
	m.Writes++
	return nil
}

func (m *MockWorkItemRepository) MarkPosted(_ context.Context, id string, at time.Time) error {
	if m.MarkPostedErr != nil {
		return m.MarkPostedErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.items[id]
	if !ok || w.Status != domain.StatusPending {
		return domain.ErrAlreadyPosted
	}
	w.Status = domain.StatusPosted
	w.PostedAt = &at
	w.UpdatedAt = at
	m.Writes++
	return nil
}

func (m *MockWorkItemRepository) List(_ context.Context, f domain.ListFilter) ([]*domain.WorkItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.WorkItem
	for _, w := range m.sortedLocked() {
		if f.Status != nil && w.Status != *f.Status {
			continue
		}
		clone := *w
		result = append(result, &clone)
		if f.Limit > 0 && len(result) == f.Limit {
			break
		}
	}
	return result, nil
}

func (m *MockWorkItemRepository) Counts(_ context.Context) (pending, posted int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CountsCalls++
	for _, w := range m.items {
		switch w.Status {
		case domain.StatusPending:
			pending++
		case domain.StatusPosted:
			posted++
		}
	}
	return pending, posted, nil
}

// sortedLocked returns items ordered by sequence, then insertion order.
func (m *MockWorkItemRepository) sortedLocked() []*domain.WorkItem {
	rank := make(map[string]int, len(m.order))
	for i, id := range m.order {
		rank[id] = i
	}
	out := make([]*domain.WorkItem, 0, len(m.items))
	for _, w := range m.items {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sequence != out[j].Sequence {
			return out[i].Sequence < out[j].Sequence
		}
		return rank[out[i].ID] < rank[out[j].ID]
	})
	return out
}

var _ WorkItemRepository = (*MockWorkItemRepository)(nil)
