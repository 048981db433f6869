package messenger

import "context"

// Messenger is the message-transport collaborator. Connection and pairing
// lifecycle are out of scope; implementations only need to deliver text to
// a chat identity.
type Messenger interface {
	SendText(ctx context.Context, phone, text string) error
}
