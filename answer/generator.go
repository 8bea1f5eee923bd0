package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/logscope/ai"
	"github.com/poiesic/logscope/core"
)

// Preamble opens every prompt sent to the generation service.
const Preamble = "You are an assistant that analyzes medical device logs. " +
	"Answer the question using only the logs provided below. " +
	"If the logs do not contain the answer, say so."

// BuildPrompt assembles preamble, context block and the verbatim question.
func BuildPrompt(contextBlock, question string) string {
	var sb strings.Builder
	sb.WriteString(Preamble)
	sb.WriteString("\n\nLogs:\n")
	sb.WriteString(contextBlock)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}

// Generator answers questions from retrieved logs.
type Generator struct {
	llm     ai.Generator
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithTimeout bounds the generation call.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		g.timeout = d
	}
}

// NewGenerator wraps llm.
func NewGenerator(llm ai.Generator, opts ...Option) (*Generator, error) {
	if llm == nil {
		return nil, ErrGeneratorRequired
	}
	g := &Generator{
		llm:    llm,
		logger: slog.Default().With("component", "answer"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Answer builds the prompt from results and question and returns the
// service's response unmodified. The service is called even when results
// is empty.
func (g *Generator) Answer(ctx context.Context, question string, results []*core.SearchResult) (string, error) {
	prompt := BuildPrompt(BuildContext(results), question)

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		g.logger.Error("generation failed", "err", err, "elapsed", time.Since(start))
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	g.logger.Debug("generation complete", "records", len(results), "prompt_length", len(prompt), "elapsed", time.Since(start))
	return text, nil
}
