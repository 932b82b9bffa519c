package broker

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("broker closed")

type Message struct {
	Channel string
	Payload []byte
}

// Broker is a publish/subscribe relay. A single subscription stream per
// Broker carries messages for every subscribed channel.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channels ...string) error
	Unsubscribe(ctx context.Context, channels ...string) error
	// Messages is closed once the broker is closed.
	Messages() <-chan Message
	Close() error
}
