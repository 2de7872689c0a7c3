package llm

import (
	"context"
	"errors"
)

// Provider defines the interface for text-generation backends.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Generate sends a prompt and returns the raw model text. Failures are
	// classified with the sentinel errors below so the orchestrator can
	// decide between retry, cooldown and fatal.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// GenerateRequest contains the input for one generation call.
type GenerateRequest struct {
	// Prompt is the full instruction string, already bounded by the
	// prompt builder.
	Prompt string

	// Model overrides the configured model when non-empty.
	Model string

	// MaxTokens limits the response length.
	MaxTokens int
}

// GenerateResponse contains the raw model output.
type GenerateResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Failure classification consumed by the orchestrator's retry logic.
// Quota and empty responses are retryable; anything mapped to the model
// configuration is fatal immediately.
var (
	// ErrQuotaExhausted marks a rate/quota rejection from the service
	// (HTTP 429 equivalent).
	ErrQuotaExhausted = errors.New("generation quota exhausted")

	// ErrEmptyResponse marks a call that succeeded but produced no text,
	// typically safety filtering.
	ErrEmptyResponse = errors.New("empty model response")
)
