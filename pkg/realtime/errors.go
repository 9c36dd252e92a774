package realtime

import "errors"

var (
	// ErrNotConnected is returned by Send when no connection is open. The
	// message is dropped, matching the fire-and-forget send contract.
	ErrNotConnected = errors.New("realtime: not connected")

	// ErrMissingURL is returned by NewChannel when no server URL is given.
	ErrMissingURL = errors.New("realtime: server URL is required")

	// ErrChannelClosed is returned by Connect after Close.
	ErrChannelClosed = errors.New("realtime: channel is closed")
)
