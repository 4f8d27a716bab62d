package llm

import "context"

// Backend defines the provider-agnostic completion operation.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Gateway wraps a backend with a stable API.
type Gateway struct {
	backend Backend
}

// New constructs a Gateway for the provided backend.
func New(backend Backend) *Gateway {
	return &Gateway{backend: backend}
}

// Complete forwards the prompt to the configured provider and returns its
// textual response verbatim. No retries, no prompt shaping.
func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	return g.backend.Complete(ctx, prompt)
}
