package provider

import (
	"context"
	"errors"
)

// ErrUnavailable reports that the model collaborator could not be reached
// or did not produce a completion. It is distinct from downstream parse
// failures: callers must never treat the two alike.
var ErrUnavailable = errors.New("model unavailable")

// Provider is the generative-model collaborator contract. Complete returns
// the model's raw text verbatim; no parsing happens at this boundary.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
