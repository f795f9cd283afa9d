package domain

import (
	"strings"
	"time"
)

// Status tracks the lifecycle of a work item.
// The only transition is pending -> posted.
type Status string

const (
	StatusPending Status = "pending"
	StatusPosted  Status = "posted"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPosted:
		return true
	}
	return false
}

// NoPreviousDay is stored when the generator leaves previousDay empty.
const NoPreviousDay = "N/A"

// WorkItem is one queued day of the developer log.
// Phase, Topic, TodayTask and Challenges are written once at seed time.
type WorkItem struct {
	ID                 string     `json:"id"`
	Sequence           int        `json:"sequence"`
	Phase              string     `json:"phase"`
	Topic              string     `json:"topic"`
	PreviousDaySummary string     `json:"previous_day"`
	TodayTask          string     `json:"today_task"`
	Challenges         string     `json:"challenges"`
	Status             Status     `json:"status"`
	PostedAt           *time.Time `json:"posted_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Normalize trims text fields and fills defaults for absent values.
func (w *WorkItem) Normalize() {
	w.Phase = strings.TrimSpace(w.Phase)
	w.Topic = strings.TrimSpace(w.Topic)
	w.TodayTask = strings.TrimSpace(w.TodayTask)
	w.Challenges = strings.TrimSpace(w.Challenges)
	w.PreviousDaySummary = strings.TrimSpace(w.PreviousDaySummary)
	if w.PreviousDaySummary == "" {
		w.PreviousDaySummary = NoPreviousDay
	}
	if w.Status == "" {
		w.Status = StatusPending
	}
}

func (w *WorkItem) Validate() error {
	if w.Sequence <= 0 {
		return ErrInvalidSequence
	}
	if w.Phase == "" || w.Topic == "" || w.TodayTask == "" || w.Challenges == "" {
		return ErrMissingField
	}
	if !w.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// TimelineEntry is the JSON shape the timeline prompt asks the model for.
type TimelineEntry struct {
	Day         int    `json:"day"`
	Phase       string `json:"phase"`
	Topic       string `json:"topic"`
	PreviousDay string `json:"previousDay"`
	TodayTask   string `json:"todayTask"`
	Challenges  string `json:"challenges"`
}

// ToWorkItem converts a generated entry to a pending, normalized work item.
// ID and timestamps are assigned by the caller.
func (e TimelineEntry) ToWorkItem() *WorkItem {
	w := &WorkItem{
		Sequence:           e.Day,
		Phase:              e.Phase,
		Topic:              e.Topic,
		PreviousDaySummary: e.PreviousDay,
		TodayTask:          e.TodayTask,
		Challenges:         e.Challenges,
		Status:             StatusPending,
	}
	w.Normalize()
	return w
}

// ListFilter holds query parameters for listing work items.
type ListFilter struct {
	Status *Status
	Limit  int
}
