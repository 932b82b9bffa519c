package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"loser-pays/internal/broker"

	"github.com/rs/zerolog/log"
)

// RoomsChannel carries room-list updates to every lobby connection.
const RoomsChannel = "rooms"

func RoomChannel(roomID string) string {
	return "room:" + roomID
}

// Conn is a live connection registered in one or more channels. Send must not
// block; it reports false when the message was dropped.
type Conn interface {
	ID() string
	Send(payload []byte) bool
}

// Manager tracks channel membership for this process and fans broker messages
// out to local members. A channel exists while it has at least one member and
// holds a broker subscription for exactly that long.
//
// subMu serialises Join and Leave and is held across broker calls. mu guards
// the member map only and is never held across broker I/O, so the relay loop
// keeps draining while a subscription change is in flight.
type Manager struct {
	broker broker.Broker

	subMu    sync.Mutex
	mu       sync.Mutex
	channels map[string]map[string]Conn
}

func NewManager(b broker.Broker) *Manager {
	return &Manager{broker: b, channels: map[string]map[string]Conn{}}
}

func (m *Manager) Join(ctx context.Context, name string, c Conn) error {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	m.mu.Lock()
	members, ok := m.channels[name]
	if ok {
		m.addLocked(members, c)
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	if err := m.broker.Subscribe(ctx, name); err != nil {
		return fmt.Errorf("join %s: %w", name, err)
	}
	m.mu.Lock()
	members = map[string]Conn{}
	m.channels[name] = members
	m.addLocked(members, c)
	m.mu.Unlock()
	metricChannelsActive.Inc()
	log.Debug().Str("channel", name).Msg("channel_created")
	return nil
}

func (m *Manager) addLocked(members map[string]Conn, c Conn) {
	if _, dup := members[c.ID()]; !dup {
		members[c.ID()] = c
		metricMembers.Inc()
	}
}

// Leave removes c from the channel; the last leave tears the channel down and
// drops its broker subscription.
func (m *Manager) Leave(ctx context.Context, name string, c Conn) error {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	m.mu.Lock()
	members, ok := m.channels[name]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	if _, ok := members[c.ID()]; !ok {
		m.mu.Unlock()
		return nil
	}
	delete(members, c.ID())
	metricMembers.Dec()
	if len(members) > 0 {
		m.mu.Unlock()
		return nil
	}
	delete(m.channels, name)
	m.mu.Unlock()

	metricChannelsActive.Dec()
	log.Debug().Str("channel", name).Msg("channel_destroyed")
	if err := m.broker.Unsubscribe(ctx, name); err != nil {
		return fmt.Errorf("leave %s: %w", name, err)
	}
	return nil
}

// Broadcast publishes through the broker. Local members receive the message
// when the relay loop picks it up, same as members on other processes.
func (m *Manager) Broadcast(ctx context.Context, name string, payload []byte) error {
	if err := m.broker.Publish(ctx, name, payload); err != nil {
		metricBroadcastErrors.Inc()
		return err
	}
	metricBroadcasts.Inc()
	return nil
}

func (m *Manager) BroadcastJSON(ctx context.Context, name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return m.Broadcast(ctx, name, b)
}

// Members returns the connection ids registered under name, sorted.
func (m *Manager) Members(name string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.channels[name]))
	for id := range m.channels[name] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (m *Manager) Channels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.channels))
	for name := range m.channels {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Run relays broker messages to local members until ctx is done or the broker
// stream closes. Exactly one Run should be active per Manager.
func (m *Manager) Run(ctx context.Context) {
	msgs := m.broker.Messages()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				log.Warn().Msg("broker_stream_closed")
				return
			}
			m.deliver(msg)
		}
	}
}

func (m *Manager) deliver(msg broker.Message) int {
	m.mu.Lock()
	members := m.channels[msg.Channel]
	targets := make([]Conn, 0, len(members))
	for _, c := range members {
		targets = append(targets, c)
	}
	m.mu.Unlock()

	if len(targets) == 0 {
		metricRelayOrphaned.Inc()
		return 0
	}
	delivered := 0
	for _, c := range targets {
		if c.Send(msg.Payload) {
			delivered++
			continue
		}
		metricSendDropped.Inc()
		log.Warn().Str("channel", msg.Channel).Str("conn_id", c.ID()).Msg("relay_send_dropped")
	}
	metricRelayDelivered.Add(float64(delivered))
	return delivered
}
