// Package realtime maintains a reconnecting WebSocket connection to the
// server and dispatches typed event messages to subscribers.
//
// Every message, inbound and outbound, is a JSON envelope:
//
//	{"type": "notification", "payload": {...}, "timestamp": "2025-03-01T12:00:00Z"}
//
// The Channel owns the connection lifecycle as an explicit state machine
// (disconnected, connecting, connected, error). Re-entrant Connect calls
// are no-ops while a dial is in flight or a connection is up. After an
// unexpected disconnect, while a credential is set, exactly one reconnect
// attempt is scheduled after a fixed delay; a second disconnect never
// stacks a second timer.
//
// Send is fire and forget: with no open connection the message is dropped
// with a warning rather than queued. Malformed inbound frames are likewise
// dropped without tearing the connection down.
//
// The Bridge composes a Channel with a notification store: inbound
// notification events become persisted records, terminal proof statuses
// produce success or failure notifications, and connection loss and
// recovery surface as passive status notifications.
//
// Usage:
//
//	channel, err := realtime.NewChannel("ws://localhost:5000/ws")
//	if err != nil {
//		return err
//	}
//	defer channel.Close()
//
//	bridge := realtime.NewBridge(channel, store)
//	defer bridge.Close()
//
//	if err := bridge.SetCredential(ctx, token); err != nil {
//		// connection failed; a retry is already scheduled
//	}
package realtime
