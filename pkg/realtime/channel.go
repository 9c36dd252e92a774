package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/connectsphere/clientkit/pkg/broadcast"
	"github.com/connectsphere/clientkit/pkg/logger"
	"github.com/connectsphere/clientkit/pkg/statemachine"
)

// Connection lifecycle states.
const (
	StateDisconnected statemachine.State = "disconnected"
	StateConnecting   statemachine.State = "connecting"
	StateConnected    statemachine.State = "connected"
	StateError        statemachine.State = "error"
)

// Events driving the connection state machine. The machine doubles as the
// re-entrancy guard: an event with no transition from the current state is
// a no-op, so a second Connect while one is in flight does nothing.
const (
	eventDial      statemachine.Event = "dial"
	eventOpen      statemachine.Event = "open"
	eventDialError statemachine.Event = "dial_error"
	eventClosed    statemachine.Event = "closed"
	eventSettle    statemachine.Event = "settle"
)

func newConnectionMachine() *statemachine.Machine {
	return statemachine.New(StateDisconnected,
		statemachine.Transition{From: StateDisconnected, Event: eventDial, To: StateConnecting},
		statemachine.Transition{From: StateError, Event: eventDial, To: StateConnecting},
		statemachine.Transition{From: StateConnecting, Event: eventOpen, To: StateConnected},
		statemachine.Transition{From: StateConnecting, Event: eventDialError, To: StateError},
		statemachine.Transition{From: StateConnected, Event: eventClosed, To: StateDisconnected},
		statemachine.Transition{From: StateConnecting, Event: eventClosed, To: StateDisconnected},
		statemachine.Transition{From: StateError, Event: eventSettle, To: StateDisconnected},
	)
}

// DefaultReconnectDelay is the pause before a reconnect attempt after an
// unexpected disconnect.
const DefaultReconnectDelay = 3 * time.Second

// Channel is a reconnecting WebSocket connection carrying enveloped JSON
// messages. Inbound envelopes are fanned out to per-event-type subscribers;
// malformed frames are logged and dropped without affecting the connection.
//
// After an unexpected disconnect, and while a credential is set, a single
// reconnect attempt is scheduled after a fixed delay. At most one reconnect
// timer is ever pending; a successful connect cancels it.
type Channel struct {
	serverURL string
	dialer    *websocket.Dialer
	delay     time.Duration
	logger    *slog.Logger

	machine  *statemachine.Machine
	statePub *broadcast.Publisher[statemachine.State]

	mu         sync.Mutex
	conn       *websocket.Conn
	credential string
	reconnect  *time.Timer
	closed     bool

	// gen is bumped by every dial and every Disconnect so a dial that a
	// Disconnect overtook mid-flight can tell it was superseded and must
	// discard its socket.
	gen uint64

	writeMu sync.Mutex

	subMu sync.Mutex
	subs  map[string]*broadcast.Publisher[Envelope]
}

// ChannelOption configures a Channel.
type ChannelOption func(*Channel)

// WithDialer replaces the WebSocket dialer.
func WithDialer(d *websocket.Dialer) ChannelOption {
	return func(c *Channel) {
		if d != nil {
			c.dialer = d
		}
	}
}

// WithReconnectDelay sets the pause before an automatic reconnect attempt.
func WithReconnectDelay(d time.Duration) ChannelOption {
	return func(c *Channel) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithCredential sets the initial auth credential appended to the dial URL.
func WithCredential(token string) ChannelOption {
	return func(c *Channel) { c.credential = token }
}

// WithChannelLogger sets the logger.
func WithChannelLogger(log *slog.Logger) ChannelOption {
	return func(c *Channel) {
		if log != nil {
			c.logger = log
		}
	}
}

// NewChannel creates a channel for the given ws(s):// server URL. The
// channel starts disconnected; call Connect to dial.
func NewChannel(serverURL string, opts ...ChannelOption) (*Channel, error) {
	if serverURL == "" {
		return nil, ErrMissingURL
	}
	if _, err := url.Parse(serverURL); err != nil {
		return nil, err
	}

	c := &Channel{
		serverURL: serverURL,
		dialer:    websocket.DefaultDialer,
		delay:     DefaultReconnectDelay,
		logger:    slog.Default(),
		machine:   newConnectionMachine(),
		subs:      make(map[string]*broadcast.Publisher[Envelope]),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.statePub = broadcast.NewPublisher(broadcast.WithLogger[statemachine.State](c.logger))
	c.machine.OnTransition(func(from, to statemachine.State, _ statemachine.Event) {
		c.logger.Debug("realtime connection state changed",
			logger.Component("realtime"),
			logger.State(string(to)),
			slog.String("from", string(from)),
		)
		c.statePub.Publish(to)
	})
	return c, nil
}

// NewChannelFromConfig creates a channel from environment-derived config.
func NewChannelFromConfig(cfg Config, opts ...ChannelOption) (*Channel, error) {
	return NewChannel(cfg.URL, append([]ChannelOption{
		WithReconnectDelay(cfg.ReconnectDelay),
	}, opts...)...)
}

// SetCredential replaces the auth credential used on the next dial. An
// empty credential disables automatic reconnection.
func (c *Channel) SetCredential(token string) {
	c.mu.Lock()
	c.credential = token
	c.mu.Unlock()
}

// ConnectionState returns the current lifecycle state.
func (c *Channel) ConnectionState() statemachine.State {
	return c.machine.Current()
}

// IsConnected reports whether the channel is connected.
func (c *Channel) IsConnected() bool {
	return c.machine.Is(StateConnected)
}

// Connect dials the server. Calling Connect while already connecting or
// connected is a no-op. A dial failure moves the channel through error to
// disconnected and schedules a reconnect attempt if a credential is set.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrChannelClosed
	}
	dialURL, err := c.dialURLLocked()
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if _, err := c.machine.Fire(eventDial); err != nil {
		// Already connecting or connected.
		return nil
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.cancelReconnectLocked()
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "connecting to realtime server",
		logger.Component("realtime"),
	)

	conn, resp, err := c.dialer.DialContext(ctx, dialURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if c.superseded(gen) {
			return err
		}
		c.logger.ErrorContext(ctx, "realtime dial failed",
			logger.Component("realtime"),
			logger.Error(err),
		)
		c.machine.Fire(eventDialError)
		c.machine.Fire(eventSettle)
		c.scheduleReconnect()
		return err
	}

	c.mu.Lock()
	if c.closed || c.gen != gen {
		// Close or Disconnect landed while the dial was in flight; the
		// fresh socket must not outlive the decision to hang up.
		closed := c.closed
		c.mu.Unlock()
		conn.Close()
		if closed {
			return ErrChannelClosed
		}
		return nil
	}
	c.conn = conn
	c.cancelReconnectLocked()
	c.mu.Unlock()

	c.machine.Fire(eventOpen)
	c.logger.InfoContext(ctx, "realtime connected", logger.Component("realtime"))

	go c.readLoop(conn)
	return nil
}

// superseded reports whether a Disconnect or newer dial overtook the dial
// identified by gen.
func (c *Channel) superseded(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed || c.gen != gen
}

// Disconnect closes the connection intentionally. No reconnect is
// scheduled. Safe to call in any state.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	c.gen++
	conn := c.conn
	c.conn = nil
	c.cancelReconnectLocked()
	c.mu.Unlock()

	if conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		conn.Close()
	}
	c.machine.Fire(eventClosed)
	c.machine.Fire(eventSettle)
}

// Send wraps the payload in an envelope and writes it. When not connected
// the message is dropped with a warning and ErrNotConnected is returned.
func (c *Channel) Send(eventType string, payload any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil || !c.machine.Is(StateConnected) {
		c.logger.Warn("dropping realtime message, not connected",
			logger.Component("realtime"),
			logger.EventType(eventType),
		)
		return ErrNotConnected
	}

	env, err := NewEnvelope(eventType, payload)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteJSON(env); err != nil {
		c.logger.Warn("realtime write failed",
			logger.Component("realtime"),
			logger.EventType(eventType),
			logger.Error(err),
		)
		return err
	}
	return nil
}

// Subscribe registers a handler for envelopes of the given event type. The
// returned function removes the subscription.
func (c *Channel) Subscribe(eventType string, h func(Envelope)) func() {
	c.subMu.Lock()
	pub, ok := c.subs[eventType]
	if !ok {
		pub = broadcast.NewPublisher(broadcast.WithLogger[Envelope](c.logger))
		c.subs[eventType] = pub
	}
	c.subMu.Unlock()
	return pub.Subscribe(h)
}

// SubscribeState registers a handler invoked on every lifecycle state
// change. Handlers must not call Connect or Disconnect synchronously.
func (c *Channel) SubscribeState(h func(statemachine.State)) func() {
	return c.statePub.Subscribe(h)
}

// Close disconnects and releases all subscriptions. The channel must not
// be used afterwards.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.Disconnect()

	c.statePub.Close()
	c.subMu.Lock()
	for _, pub := range c.subs {
		pub.Close()
	}
	c.subMu.Unlock()
}

// readLoop pumps inbound frames until the connection fails. A frame that
// is not a valid envelope is dropped; the connection stays up.
func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleClosed(conn, err)
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.logger.Warn("dropping malformed realtime message",
				logger.Component("realtime"),
				logger.Error(err),
			)
			continue
		}
		c.dispatch(env)
	}
}

// dispatch fans an envelope out to subscribers of its event type. Unknown
// types have no subscribers and are dropped silently.
func (c *Channel) dispatch(env Envelope) {
	c.subMu.Lock()
	pub := c.subs[env.Type]
	c.subMu.Unlock()

	if pub != nil {
		pub.Publish(env)
	}
}

// handleClosed reacts to a read failure. A connection superseded by
// Disconnect or a newer dial is ignored.
func (c *Channel) handleClosed(conn *websocket.Conn, err error) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return
	}

	c.logger.Warn("realtime connection lost",
		logger.Component("realtime"),
		logger.Error(err),
	)
	c.machine.Fire(eventClosed)
	c.scheduleReconnect()
}

// scheduleReconnect arms the reconnect timer. At most one timer is ever
// pending, and none without a credential.
func (c *Channel) scheduleReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.credential == "" || c.reconnect != nil {
		return
	}

	c.logger.Info("scheduling realtime reconnect",
		logger.Component("realtime"),
		logger.Duration(c.delay),
	)
	c.reconnect = time.AfterFunc(c.delay, func() {
		c.mu.Lock()
		c.reconnect = nil
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return
		}
		// Failures here schedule the next attempt themselves.
		_ = c.Connect(context.Background())
	})
}

func (c *Channel) cancelReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelReconnectLocked()
}

func (c *Channel) cancelReconnectLocked() {
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
}

// dialURLLocked builds the dial URL, appending the credential when set.
// Callers hold the lock.
func (c *Channel) dialURLLocked() (string, error) {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return "", err
	}
	if c.credential != "" {
		q := u.Query()
		q.Set("token", c.credential)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
