package ports

import "context"

// Notification is a state change pushed to observers after it was persisted.
type Notification struct {
	GameID     string
	Kind       string
	Text       string
	Recipients []string // participant ids; empty means broadcast
	Payload    any
}

// EventPublisher forwards notifications to an external side channel.
type EventPublisher interface {
	// Publish delivers one notification. Implementations must not block on
	// slow consumers.
	Publish(ctx context.Context, n Notification) error
}
