package generator

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// Backend is the opaque generative capability the generators depend on.
// Implementations return the raw model text; callers clean and validate it.
type Backend interface {
	Generate(ctx context.Context, instruction string) (string, error)
}

// LLMOptions are the per-call sampling settings.
type LLMOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// LLMBackend sends a single human-role prompt through a langchaingo model.
type LLMBackend struct {
	model llms.Model
	opts  LLMOptions
}

func NewLLMBackend(model llms.Model, opts LLMOptions) *LLMBackend {
	return &LLMBackend{model: model, opts: opts}
}

// NewOpenAIModel builds the shared OpenAI client. baseURL may be empty.
func NewOpenAIModel(apiKey, baseURL string) (llms.Model, error) {
	opts := []openai.Option{openai.WithToken(apiKey)}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return llm, nil
}

func (b *LLMBackend) Generate(ctx context.Context, instruction string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeHuman, instruction),
	}

	callOpts := []llms.CallOption{llms.WithTemperature(b.opts.Temperature)}
	if b.opts.Model != "" {
		callOpts = append(callOpts, llms.WithModel(b.opts.Model))
	}
	if b.opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(b.opts.MaxTokens))
	}

	resp, err := b.model.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return "", fmt.Errorf("llm call: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Content, nil
}

var _ Backend = (*LLMBackend)(nil)
