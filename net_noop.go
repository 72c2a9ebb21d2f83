package resock

import (
	"context"
)

type (
	noopTransport struct{}

	noopConn struct{}
)

// NewNoopTransport returns a Transport whose connections accept every
// operation and never emit anything. Useful as a stand-in in hosts that
// want the client surface without a live socket.
func NewNoopTransport() Transport {
	return noopTransport{}
}

func (noopTransport) Connect(
	_ context.Context, _ Target, _ TransportHandlers,
) (TransportConn, error) {
	return noopConn{}, nil
}

func (noopConn) Send(string) error { return nil }

func (noopConn) Ping([]byte) error { return nil }

func (noopConn) IsOpen() bool { return true }

func (noopConn) Close() {}
