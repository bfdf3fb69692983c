// Package qa wraps extractive question answering behind the Answerer capability and
// aggregates per-chunk answers into a single best candidate.
package qa

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joseph-ayodele/contract-extractor/internal/common"
)

// Candidate is one answer span with the model's confidence in [0,1].
type Candidate struct {
	Text  string  `json:"answer"`
	Score float64 `json:"score"`
}

// Answerer answers a question from a bounded context. ok is false when the model
// produced no answer; err is reserved for transport or decoding failures.
type Answerer interface {
	Answer(ctx context.Context, question, passage string) (Candidate, bool, error)
}

// None never answers. It is used when QA is disabled.
type None struct{}

func (None) Answer(context.Context, string, string) (Candidate, bool, error) {
	return Candidate{}, false, nil
}

// NewAnswerer builds the provider selected by cfg.Provider.
func NewAnswerer(cfg common.QAConfig, logger *slog.Logger) (Answerer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Provider {
	case "", "huggingface":
		return NewHuggingFace(HuggingFaceConfig{
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
		}, logger), nil
	case "openai":
		return NewOpenAI(OpenAIConfig{
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
		}, logger)
	case "none":
		return None{}, nil
	default:
		return nil, fmt.Errorf("unknown qa provider %q", cfg.Provider)
	}
}

// Lazy constructs its Answerer on first use and shares it afterwards. A failed
// construction is remembered and returned to every caller.
type Lazy struct {
	once    sync.Once
	factory func() (Answerer, error)
	a       Answerer
	err     error
}

func NewLazy(factory func() (Answerer, error)) *Lazy {
	return &Lazy{factory: factory}
}

// Get returns the shared Answerer, building it if needed.
func (l *Lazy) Get() (Answerer, error) {
	l.once.Do(func() {
		l.a, l.err = l.factory()
	})
	return l.a, l.err
}

func (l *Lazy) Answer(ctx context.Context, question, passage string) (Candidate, bool, error) {
	a, err := l.Get()
	if err != nil {
		return Candidate{}, false, fmt.Errorf("qa init: %w", err)
	}
	return a.Answer(ctx, question, passage)
}
