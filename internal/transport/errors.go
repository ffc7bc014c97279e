package transport

import "errors"

var (
	// ErrNotConnected is reported when the push channel is down or closed by the peer.
	ErrNotConnected = errors.New("transport: push channel not connected")

	// ErrUnknownBackend is returned for a push backend name that is not supported.
	ErrUnknownBackend = errors.New("transport: unknown push backend")
)
