package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ricirt/devlog-poster/internal/domain"
)

// DefaultTimelineDays is the length of a bootstrap timeline.
const DefaultTimelineDays = 30

// TimelineGenerator asks the backend for a day-by-day timeline and turns
// it into pending work items.
type TimelineGenerator struct {
	backend Backend
	days    int
	logger  *zap.Logger
}

func NewTimelineGenerator(backend Backend, days int, logger *zap.Logger) *TimelineGenerator {
	if days <= 0 {
		days = DefaultTimelineDays
	}
	return &TimelineGenerator{backend: backend, days: days, logger: logger}
}

// GenerateTimeline returns exactly g.days pending items with sequences 1..days.
// IDs and timestamps are left for the caller to assign.
func (g *TimelineGenerator) GenerateTimeline(ctx context.Context, description ProjectDescription) ([]*domain.WorkItem, error) {
	prompt, err := TimelinePrompt(g.days, description)
	if err != nil {
		return nil, &domain.GenerationError{Reason: "build timeline prompt", Err: err}
	}

	raw, err := g.backend.Generate(ctx, prompt)
	if err != nil {
		return nil, &domain.GenerationError{Reason: "timeline backend call", Err: err}
	}

	entries, repaired, err := ParseTimeline(raw)
	if err != nil {
		return nil, err
	}
	if repaired {
		g.logger.Warn("timeline JSON was malformed and has been repaired")
	}

	items, err := ValidateTimeline(entries, g.days)
	if err != nil {
		return nil, err
	}

	g.logger.Info("generated timeline", zap.Int("entries", len(items)))
	return items, nil
}

// ParseTimeline extracts the JSON array from raw model output. It tries a
// strict parse first and falls back to Repair; repaired reports whether the
// fallback was needed. Every failure is a *domain.GenerationError.
func ParseTimeline(raw string) (entries []domain.TimelineEntry, repaired bool, err error) {
	text := StripFences(raw)
	if text == "" {
		return nil, false, &domain.GenerationError{Reason: "empty response"}
	}
	candidate := ExtractArray(text)

	v, strictErr := decodeJSON(candidate)
	if strictErr != nil {
		repaired = true
		fixed, repairErr := Repair(candidate)
		if repairErr == nil {
			candidate = fixed
			v, repairErr = decodeJSON(candidate)
		}
		if repairErr != nil {
			return nil, true, &domain.GenerationError{
				Reason: "timeline is not valid JSON after repair",
				Err:    fmt.Errorf("strict: %v; repaired: %w", strictErr, repairErr),
			}
		}
	}

	arr, ok := v.([]any)
	if !ok {
		return nil, repaired, &domain.GenerationError{Reason: "timeline is not a JSON array"}
	}
	if len(arr) == 0 {
		return nil, repaired, &domain.GenerationError{Reason: "timeline is empty"}
	}

	if err := json.Unmarshal([]byte(candidate), &entries); err != nil {
		return nil, repaired, &domain.GenerationError{Reason: "timeline entries have the wrong shape", Err: err}
	}
	return entries, repaired, nil
}

// ExtractArray returns the substring from the first '[' to the last ']'.
// With no '[' the text is returned unchanged; with no closing ']' after it
// (truncated output) the tail from '[' is returned for Repair to close.
func ExtractArray(text string) string {
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return text
	}
	end := strings.LastIndexByte(text, ']')
	if end < start {
		return text[start:]
	}
	return text[start : end+1]
}

// ValidateTimeline checks count, sequence range and uniqueness, and required
// text, then converts entries to pending work items.
func ValidateTimeline(entries []domain.TimelineEntry, days int) ([]*domain.WorkItem, error) {
	if len(entries) != days {
		return nil, &domain.GenerationError{Reason: fmt.Sprintf("expected %d timeline entries, got %d", days, len(entries))}
	}

	seen := make(map[int]bool, len(entries))
	items := make([]*domain.WorkItem, 0, len(entries))
	for i, e := range entries {
		if e.Day < 1 || e.Day > days {
			return nil, &domain.GenerationError{Reason: fmt.Sprintf("entry %d: day %d outside 1..%d", i, e.Day, days)}
		}
		if seen[e.Day] {
			return nil, &domain.GenerationError{Reason: fmt.Sprintf("entry %d: day %d repeated", i, e.Day)}
		}
		seen[e.Day] = true

		w := e.ToWorkItem()
		if err := w.Validate(); err != nil {
			return nil, &domain.GenerationError{Reason: fmt.Sprintf("entry %d (day %d)", i, e.Day), Err: err}
		}
		items = append(items, w)
	}
	return items, nil
}

func decodeJSON(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}
