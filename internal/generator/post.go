package generator

import (
	"context"
	"fmt"

	"github.com/ricirt/devlog-poster/internal/domain"
)

// PostGenerator turns a work item into the text of a social post.
type PostGenerator struct {
	backend Backend
}

func NewPostGenerator(backend Backend) *PostGenerator {
	return &PostGenerator{backend: backend}
}

// Generate returns the post text, fences stripped. The text is otherwise
// used verbatim: no length, language or policy checks are applied.
func (g *PostGenerator) Generate(ctx context.Context, item *domain.WorkItem) (string, error) {
	prompt, err := PostPrompt(item)
	if err != nil {
		return "", &domain.GenerationError{Reason: "build post prompt", Err: err}
	}

	raw, err := g.backend.Generate(ctx, prompt)
	if err != nil {
		return "", &domain.GenerationError{Reason: "post backend call", Err: err}
	}

	text := StripFences(raw)
	if text == "" {
		return "", &domain.GenerationError{Reason: fmt.Sprintf("empty post for day %d", item.Sequence)}
	}
	return text, nil
}
