package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/logscope/answer"
	"github.com/poiesic/logscope/core"
	"github.com/poiesic/logscope/query"
	"github.com/poiesic/logscope/search"
)

// Engine dispatches classified input to the retrieval paths.
// Turns are independent; the Engine keeps no conversation state.
type Engine struct {
	lookup         *search.Lookup
	searcher       *search.Searcher
	answerer       *answer.Generator
	semanticFilter core.Filter
	logger         *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSemanticFilter restricts every semantic search to logs matching f.
func WithSemanticFilter(f core.Filter) Option {
	return func(e *Engine) {
		e.semanticFilter = f
	}
}

// New creates an Engine over the given paths.
func New(lookup *search.Lookup, searcher *search.Searcher, answerer *answer.Generator, opts ...Option) (*Engine, error) {
	if lookup == nil {
		return nil, ErrLookupRequired
	}
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if answerer == nil {
		return nil, ErrAnswererRequired
	}
	e := &Engine{
		lookup:   lookup,
		searcher: searcher,
		answerer: answerer,
		logger:   slog.Default().With("component", "engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Handle runs one turn. It always returns a non-nil Response.
func (e *Engine) Handle(ctx context.Context, input string) (resp *Response) {
	turnID := uuid.NewString()
	logger := e.logger.With("turn", turnID)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic during turn", "panic", r, "stack", string(debug.Stack()))
			resp = &Response{
				Kind:    KindError,
				Message: MessageUnexpected,
				Err:     fmt.Errorf("%w: %v", ErrPanic, r),
			}
		}
		resp.TurnID = turnID
		logger.Info("turn complete", "kind", resp.Kind.String(), "elapsed", time.Since(start))
	}()

	intent, err := query.Classify(input)
	if err != nil {
		logger.Debug("input not parseable", "err", err)
		return e.parseFailure(err)
	}
	logger.Debug("classified input", "intent", intent.Kind.String(), "filter", intent.Filter.String())

	resp = e.dispatch(ctx, logger, intent)
	resp.Intent = intent
	return resp
}

func (e *Engine) dispatch(ctx context.Context, logger *slog.Logger, intent *query.Intent) *Response {
	switch intent.Kind {
	case query.IntentStructuredList:
		docs, err := e.lookup.Project(ctx, intent.Fields, intent.Filter)
		if err != nil {
			return e.failure(logger, err)
		}
		if len(docs) == 0 {
			return empty()
		}
		return &Response{Kind: KindRows, Fields: intent.Fields, Documents: docs}

	case query.IntentListUnique:
		values, err := e.lookup.Unique(ctx, intent.Field)
		if err != nil {
			return e.failure(logger, err)
		}
		if len(values.Values) == 0 {
			return empty()
		}
		return &Response{Kind: KindUnique, Unique: values}

	case query.IntentShowAllLogs:
		docs, err := e.lookup.Dump(ctx, intent.Filter)
		if err != nil {
			return e.failure(logger, err)
		}
		if len(docs) == 0 {
			return empty()
		}
		return &Response{Kind: KindDump, Documents: docs}

	default:
		return e.semantic(ctx, logger, intent.Question)
	}
}

// semantic answers from whatever the search returns, including nothing:
// the generator is asked even with an empty context.
func (e *Engine) semantic(ctx context.Context, logger *slog.Logger, question string) *Response {
	results, err := e.searcher.FindSimilar(ctx, question, e.semanticFilter)
	if err != nil {
		return e.failure(logger, err)
	}
	if len(results) == 0 {
		logger.Info("semantic search returned no logs; generating from empty context")
	}

	text, err := e.answerer.Answer(ctx, question, results)
	if err != nil {
		return e.failure(logger, err)
	}
	return &Response{Kind: KindAnswer, Answer: text, Sources: results}
}

func (e *Engine) parseFailure(err error) *Response {
	msg := MessageNoFields
	if errors.Is(err, query.ErrEmptyQuery) {
		msg = MessageEmptyQuery
	}
	return &Response{Kind: KindGuidance, Message: msg, Err: err}
}

func (e *Engine) failure(logger *slog.Logger, err error) *Response {
	var subsystem string
	switch {
	case errors.Is(err, search.ErrStorage):
		subsystem = SubsystemDatabase
	case errors.Is(err, search.ErrEmbedding), errors.Is(err, answer.ErrGeneration):
		subsystem = SubsystemAI
	case errors.Is(err, search.ErrNoFields):
		return &Response{Kind: KindGuidance, Message: MessageNoFields, Err: err}
	default:
		logger.Error("unexpected turn failure", "err", err)
		return &Response{Kind: KindError, Message: MessageUnexpected, Err: err}
	}
	logger.Error("dependency failure", "subsystem", subsystem, "err", err)
	return &Response{
		Kind:      KindError,
		Message:   subsystemMessage(subsystem),
		Subsystem: subsystem,
		Err:       err,
	}
}

func empty() *Response {
	return &Response{Kind: KindEmpty, Message: MessageNoResults}
}
