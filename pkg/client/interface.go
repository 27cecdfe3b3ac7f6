package client

import "context"

// LLMClient is the transport boundary to a vision-capable language model
// backend. Implementations wrap one backend (Ollama, an OpenAI-compatible
// server) and stay prompt-agnostic; prompt construction and response parsing
// belong to the callers in pkg/analysis.
//
// Images are raw encoded bytes (JPEG/PNG); pass nil for text-only prompts.
// Clients apply no timeouts of their own — cancellation policy is the
// caller's via ctx.
type LLMClient interface {
	// Complete sends a single prompt and returns the full response text.
	Complete(ctx context.Context, model, prompt string, images [][]byte) (string, error)

	// Stream sends a prompt and invokes fn for every incremental text chunk
	// as the backend produces it, returning the accumulated response. A
	// non-nil error from fn stops the read and is returned.
	Stream(ctx context.Context, model, prompt string, images [][]byte, fn func(chunk string) error) (string, error)
}
