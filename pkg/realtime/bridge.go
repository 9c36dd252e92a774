package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/connectsphere/clientkit/pkg/logger"
	"github.com/connectsphere/clientkit/pkg/notifications"
	"github.com/connectsphere/clientkit/pkg/statemachine"
)

// maxBuffered caps the bridge's in-memory event history.
const maxBuffered = 100

// Bridge wires a Channel into a notification store. Inbound notification
// events become store records, proof updates produce progress records on
// terminal statuses, and connection loss and recovery are surfaced as
// passive notifications. The bridge also keeps the most recent events in
// memory for UI consumption.
type Bridge struct {
	channel *Channel
	store   *notifications.Store
	logger  *slog.Logger

	mu            sync.Mutex
	credential    string
	prev          statemachine.State
	lost          bool
	notifications []NotificationPayload
	proofUpdates  []ProofUpdatePayload
	lastEnvelope  *Envelope

	unsubs []func()
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithBridgeLogger sets the logger.
func WithBridgeLogger(log *slog.Logger) BridgeOption {
	return func(b *Bridge) {
		if log != nil {
			b.logger = log
		}
	}
}

// NewBridge subscribes to the channel's known event types and lifecycle.
// The bridge does not own the channel or the store; Close only removes its
// own subscriptions and hangs up the connection.
func NewBridge(channel *Channel, store *notifications.Store, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		channel: channel,
		store:   store,
		logger:  slog.Default(),
		prev:    StateDisconnected,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.unsubs = append(b.unsubs,
		channel.Subscribe(EventNotification, b.onNotification),
		channel.Subscribe(EventProofUpdate, b.onProofUpdate),
		channel.Subscribe(EventQuizUpdate, b.onQuizUpdate),
		channel.SubscribeState(b.onStateChange),
	)
	return b
}

// SetCredential updates the credential and drives the connection: a
// non-empty credential connects, an empty one hangs up.
func (b *Bridge) SetCredential(ctx context.Context, token string) error {
	b.mu.Lock()
	b.credential = token
	b.mu.Unlock()

	b.channel.SetCredential(token)
	if token == "" {
		b.channel.Disconnect()
		return nil
	}
	return b.channel.Connect(ctx)
}

// ConnectionState returns the channel's current lifecycle state.
func (b *Bridge) ConnectionState() statemachine.State {
	return b.channel.ConnectionState()
}

// IsConnected reports whether the channel is connected.
func (b *Bridge) IsConnected() bool {
	return b.channel.IsConnected()
}

// Send forwards a message through the channel.
func (b *Bridge) Send(eventType string, payload any) error {
	return b.channel.Send(eventType, payload)
}

// Notifications returns the buffered notification payloads, newest first.
func (b *Bridge) Notifications() []NotificationPayload {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]NotificationPayload, len(b.notifications))
	copy(out, b.notifications)
	return out
}

// ProofUpdates returns the buffered proof updates, newest first.
func (b *Bridge) ProofUpdates() []ProofUpdatePayload {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ProofUpdatePayload, len(b.proofUpdates))
	copy(out, b.proofUpdates)
	return out
}

// LastEnvelope returns the most recently received known-type envelope.
func (b *Bridge) LastEnvelope() (Envelope, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.lastEnvelope == nil {
		return Envelope{}, false
	}
	return *b.lastEnvelope, true
}

// ClearNotifications drops the buffered notification payloads.
func (b *Bridge) ClearNotifications() {
	b.mu.Lock()
	b.notifications = nil
	b.mu.Unlock()
}

// ClearProofUpdates drops the buffered proof updates.
func (b *Bridge) ClearProofUpdates() {
	b.mu.Lock()
	b.proofUpdates = nil
	b.mu.Unlock()
}

// Close removes the bridge's subscriptions and hangs up the connection.
func (b *Bridge) Close() {
	for _, unsub := range b.unsubs {
		unsub()
	}
	b.channel.Disconnect()
}

func (b *Bridge) onNotification(env Envelope) {
	p, err := DecodePayload[NotificationPayload](env)
	if err != nil {
		b.logger.Warn("dropping undecodable notification payload",
			logger.Component("realtime"),
			logger.Error(err),
		)
		return
	}

	b.mu.Lock()
	b.notifications = append([]NotificationPayload{p}, b.notifications...)
	if len(b.notifications) > maxBuffered {
		b.notifications = b.notifications[:maxBuffered]
	}
	b.lastEnvelope = &env
	b.mu.Unlock()

	b.store.Add(notifications.Notification{
		ID:      p.ID,
		Type:    notifications.Type(p.Type),
		Title:   p.Title,
		Message: p.Message,
	})
}

func (b *Bridge) onProofUpdate(env Envelope) {
	p, err := DecodePayload[ProofUpdatePayload](env)
	if err != nil {
		b.logger.Warn("dropping undecodable proof update payload",
			logger.Component("realtime"),
			logger.Error(err),
		)
		return
	}

	b.mu.Lock()
	b.proofUpdates = append([]ProofUpdatePayload{p}, b.proofUpdates...)
	if len(b.proofUpdates) > maxBuffered {
		b.proofUpdates = b.proofUpdates[:maxBuffered]
	}
	b.lastEnvelope = &env
	b.mu.Unlock()

	// Only terminal statuses reach the notification log; intermediate
	// progress stays in the buffer for the UI to poll.
	switch p.Status {
	case ProofStatusVerified:
		b.store.ProofGenerated(p.ProofID)
	case ProofStatusFailed:
		b.store.ProofFailed(p.Message)
	}
}

func (b *Bridge) onQuizUpdate(env Envelope) {
	b.mu.Lock()
	b.lastEnvelope = &env
	b.mu.Unlock()
}

// onStateChange turns connection loss and recovery into passive
// notifications, once per outage.
func (b *Bridge) onStateChange(s statemachine.State) {
	b.mu.Lock()
	prev := b.prev
	b.prev = s

	var lost, restored bool
	switch s {
	case StateConnected:
		restored = b.lost
		b.lost = false
	case StateDisconnected, StateError:
		if prev == StateConnected && !b.lost {
			b.lost = true
			lost = true
		}
	}
	b.mu.Unlock()

	if lost {
		b.store.ConnectionLost()
	}
	if restored {
		b.store.ConnectionRestored()
	}
}
