// Package bot contains the chat-facing event handlers. The transport itself
// (message delivery, photo download, command parsing) is a collaborator
// behind the Transport interface; this package only decides what to say.
package bot

import "context"

// Transport sends and edits outbound chat messages.
type Transport interface {
	// Send posts text to a scope, optionally as a reply, and returns the
	// new message's id.
	Send(ctx context.Context, scope, text, replyTo string) (messageID string, err error)
	// Edit rewrites a previously sent message in place.
	Edit(ctx context.Context, scope, messageID, newText string) error
}

// PhotoEvent is an inbound photo with optional caption.
type PhotoEvent struct {
	Scope     string
	ScopeName string
	SenderID  string
	MessageID string
	Image     []byte
	Caption   string
}

// TextEvent is an inbound text message. ReplyTo is the id of the message
// being replied to, empty when the text is not a reply.
type TextEvent struct {
	Scope     string
	ScopeName string
	SenderID  string
	MessageID string
	Text      string
	ReplyTo   string
}
