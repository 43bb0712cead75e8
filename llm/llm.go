// Package llm provides clients for chat-style text generation APIs.
package llm

import "context"

// Client generates text from a system instruction and a user prompt.
// Implementations block until the backend responds or the call times out.
type Client interface {
	// Complete returns the raw generated text. Any error (network, HTTP
	// status, malformed envelope) means the backend is unavailable for this
	// request; callers degrade to the template generator.
	Complete(ctx context.Context, system, user string) (string, error)

	// Model returns the model identifier this client generates with.
	Model() string
}
