// Package ai defines the contracts the screening core expects from a
// language-generation provider.
package ai

import "context"

// Message roles as understood by the providers.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one prior conversation turn passed to the provider. The core
// supplies the entire transcript on every call; no server-side memory is
// assumed.
type Message struct {
	Role    string
	Content string
}

// Assistant is the language-generation collaborator. Both calls are
// synchronous and either yield a complete non-empty response or an error;
// there are no partial results.
type Assistant interface {
	// Complete continues a conversation: system prompt, full prior history
	// and the new user input.
	Complete(ctx context.Context, system string, history []Message, input string) (string, error)

	// Generate answers a single standalone prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}
