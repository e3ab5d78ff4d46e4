// Package prompt holds the generative half of the tagging pipeline: the
// drafting and filtering prompts and the tolerant parsing of model output.
// Transports implementing Completer live in internal/genai; tests script
// their own.
package prompt

import "context"

// CompleteRequest is a single-turn completion call.
type CompleteRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Completer produces a text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, req CompleteRequest) (string, error)
}
