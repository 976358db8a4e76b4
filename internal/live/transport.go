package live

import "context"

// Message is one payload delivered on a subscribed topic.
type Message struct {
	Topic string
	Body  []byte
}

// Session is one established connection to the push broker. Subscriptions
// belong to the session and are gone once it is closed.
type Session interface {
	Subscribe(ctx context.Context, topic string) error
	// Receive blocks until the next message, the session fails or ctx ends.
	Receive(ctx context.Context) (Message, error)
	Close() error
}

// Transport opens sessions to the push broker.
type Transport interface {
	Open(ctx context.Context) (Session, error)
}
