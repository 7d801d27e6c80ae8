package analyzer

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/helmcode/devcompanion/pkg/heuristic"
	"github.com/helmcode/devcompanion/pkg/language"
	"github.com/helmcode/devcompanion/pkg/llm"
	"github.com/helmcode/devcompanion/pkg/model"
	"github.com/helmcode/devcompanion/pkg/parser"
	"github.com/helmcode/devcompanion/pkg/prompts"
)

// Where an analysis came from.
const (
	SourceLLM       = "llm"
	SourceHeuristic = "heuristic"
)

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 20 * time.Second

// ErrEmptyCode is returned when there is nothing to analyze.
var ErrEmptyCode = errors.New("code is required")

// Result wraps an analysis with its provenance.
type Result struct {
	Analysis *model.AnalysisResult
	Source   string
	Model    string
}

type Analyzer struct {
	llm     llm.LLM
	logger  *zap.Logger
	timeout time.Duration
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger used for fallback warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// New returns an analyzer that always uses the heuristic engine.
func New(opts ...Option) *Analyzer {
	return NewWithLLM(nil, opts...)
}

// NewWithLLM returns an analyzer that asks l first. A nil l means offline.
func NewWithLLM(l llm.LLM, opts ...Option) *Analyzer {
	a := &Analyzer{
		llm:     l,
		logger:  zap.NewNop(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Online reports whether a model client is configured.
func (a *Analyzer) Online() bool {
	return a.llm != nil
}

// Analyze reviews code. The only error is ErrEmptyCode; model failures
// degrade to the heuristic engine.
func (a *Analyzer) Analyze(ctx context.Context, code, lang string) (*Result, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrEmptyCode
	}
	lang = language.Normalize(lang)

	if a.llm == nil {
		return a.offline(code, lang), nil
	}

	analysis, err := a.ask(ctx, code, lang)
	if err != nil {
		a.logger.Warn("model analysis failed, using heuristic fallback",
			zap.String("model", a.llm.GetModel()),
			zap.String("language", lang),
			zap.Error(err),
		)
		return a.offline(code, lang), nil
	}

	return &Result{Analysis: analysis, Source: SourceLLM, Model: a.llm.GetModel()}, nil
}

func (a *Analyzer) ask(ctx context.Context, code, lang string) (*model.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	rawResp, err := a.llm.Chat(ctx, prompts.BuildReviewPrompt(code, lang))
	if err != nil {
		return nil, err
	}
	return parser.ParseReviewResponse(rawResp)
}

func (a *Analyzer) offline(code, lang string) *Result {
	return &Result{Analysis: heuristic.Analyze(code, lang), Source: SourceHeuristic}
}
