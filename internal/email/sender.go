package email

import "context"

type Message struct {
	To      []string
	Subject string
	Body    string
}

// Sender delivers a message. Callers treat delivery as best effort; a failed
// confirmation never fails the checkout that triggered it.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}
