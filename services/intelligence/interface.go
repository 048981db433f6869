package intelligence

import "context"

// Client is the generative-text collaborator. It is used only for reply
// drafting and classification fallback; its output is always parsed and
// validated before being trusted.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
