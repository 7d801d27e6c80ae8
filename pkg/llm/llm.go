package llm

import (
	"context"
	"errors"
)

// ErrNoAPIKey is returned by the factory when the selected provider has no key.
// Callers treat it as "review offline".
var ErrNoAPIKey = errors.New("no LLM API key configured")

// LLM is a hosted chat model that answers a single prompt.
type LLM interface {
	Chat(ctx context.Context, prompt string) (string, error)
	GetModel() string
}
