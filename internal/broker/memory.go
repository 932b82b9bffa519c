package broker

import (
	"context"
	"sync"
)

// Memory is an in-process broker for single-instance deployments and tests.
// Like Redis, a publish to a channel nobody subscribed to is dropped.
type Memory struct {
	mu     sync.RWMutex
	subs   map[string]struct{}
	closed bool

	// inflight counts publishes past the closed check; Close waits for them
	// before closing out.
	inflight sync.WaitGroup
	done     chan struct{}
	out      chan Message
}

func NewMemory() *Memory {
	return &Memory{
		subs: map[string]struct{}{},
		done: make(chan struct{}),
		out:  make(chan Message, 256),
	}
}

// Publish blocks while the stream is full. No lock is held while it waits,
// so subscription changes proceed.
func (m *Memory) Publish(ctx context.Context, channel string, payload []byte) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrClosed
	}
	_, subscribed := m.subs[channel]
	m.inflight.Add(1)
	m.mu.RUnlock()
	defer m.inflight.Done()

	if !subscribed {
		return nil
	}
	msg := Message{Channel: channel, Payload: append([]byte(nil), payload...)}
	select {
	case m.out <- msg:
		return nil
	case <-m.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Memory) Subscribe(_ context.Context, channels ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for _, ch := range channels {
		m.subs[ch] = struct{}{}
	}
	return nil
}

func (m *Memory) Unsubscribe(_ context.Context, channels ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range channels {
		delete(m.subs, ch)
	}
	return nil
}

func (m *Memory) Messages() <-chan Message {
	return m.out
}

// Close releases blocked publishers, waits for them to return and then
// closes the stream.
func (m *Memory) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.done)
	m.mu.Unlock()

	m.inflight.Wait()
	close(m.out)
	return nil
}
