package resock

import (
	"context"
	"net/url"
)

type (
	// Target identifies the remote endpoint. Immutable for the lifetime
	// of a client.
	Target struct {
		URL       url.URL
		Protocols []string
	}

	// TransportHandlers receive transport signals. Connect returning a
	// nil error is the open signal; there is no separate open handler.
	TransportHandlers struct {
		// OnMessage is called for every incoming frame.
		OnMessage func(data string)
		// OnError is called for runtime transport errors. It does not
		// imply the connection is gone; OnClose signals that.
		OnError func(err error)
		// OnClose is called exactly once when the connection dies, from
		// either side.
		OnClose func()
	}

	// Transport dials connections. Supplied by the host environment;
	// the default is the websocket transport.
	Transport interface {
		Connect(ctx context.Context, target Target, handlers TransportHandlers) (TransportConn, error)
	}

	// TransportConn is a live connection handle, exclusively owned by the
	// client that dialed it.
	TransportConn interface {
		// Send transmits a single text frame.
		Send(data string) error
		// Ping transmits a keep-alive control frame.
		Ping(data []byte) error
		// IsOpen reports whether the handle can still transmit.
		IsOpen() bool
		// Close tears the connection down. Idempotent.
		Close()
	}
)
