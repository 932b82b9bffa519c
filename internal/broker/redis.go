package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Redis relays through Redis pub/sub so every server process sharing the
// Redis instance sees the same broadcasts.
type Redis struct {
	rdb redis.UniversalClient
	ps  *redis.PubSub

	out       chan Message
	done      chan struct{}
	closeOnce sync.Once
}

func NewRedis(ctx context.Context, rdb redis.UniversalClient) *Redis {
	r := &Redis{
		rdb:  rdb,
		ps:   rdb.Subscribe(ctx),
		out:  make(chan Message, 256),
		done: make(chan struct{}),
	}
	go r.pump()
	return r
}

func (r *Redis) pump() {
	defer close(r.out)
	in := r.ps.Channel()
	for {
		select {
		case <-r.done:
			return
		case m, ok := <-in:
			if !ok {
				return
			}
			select {
			case r.out <- Message{Channel: m.Channel, Payload: []byte(m.Payload)}:
			case <-r.done:
				return
			}
		}
	}
}

func (r *Redis) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := r.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

func (r *Redis) Subscribe(ctx context.Context, channels ...string) error {
	if err := r.ps.Subscribe(ctx, channels...); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

func (r *Redis) Unsubscribe(ctx context.Context, channels ...string) error {
	if err := r.ps.Unsubscribe(ctx, channels...); err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return nil
}

func (r *Redis) Messages() <-chan Message {
	return r.out
}

func (r *Redis) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		err = r.ps.Close()
	})
	return err
}
