package resock

import (
	"context"
	"net/url"
	"os"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultReconnectInterval is the base backoff unit.
	DefaultReconnectInterval = 3 * time.Second
	// DefaultMaxReconnectDelay caps the computed backoff delay.
	DefaultMaxReconnectDelay = 30 * time.Second
)

type (
	// CloseChan signals that a client finished tearing down: subscribers
	// cleared and transport close requested.
	CloseChan chan struct{}

	// Options configures a client. The zero value is usable: every field
	// has a documented default.
	Options struct {
		// ReconnectInterval is the base backoff unit. Default 3s.
		ReconnectInterval time.Duration

		// MaxRetries caps consecutive reconnect attempts. 0 means
		// unbounded (the default).
		MaxRetries int

		// MaxReconnectDelay caps the backoff delay. Default 30s.
		MaxReconnectDelay time.Duration

		// PingInterval enables periodic keep-alive pings while open when
		// greater than zero. Default 0 (disabled).
		PingInterval time.Duration

		// Protocols are passed through to subprotocol negotiation.
		Protocols []string

		// Logger receives every lifecycle and diagnostic message.
		// Default: a writer logger on stdout.
		Logger Logger

		// Signal is an external cancellation: when its Done channel
		// fires, Close is called. Default: none.
		Signal context.Context

		// Transport dials connections. Default: the websocket transport
		// with websocket.DefaultDialer.
		Transport Transport

		// Codec encodes outbound and decodes incoming payloads.
		// Default: JSONCodec.
		Codec Codec
	}
)

// New creates a client and starts its lifecycle controller: the first
// connection attempt begins immediately. The only construction-time
// failure is a malformed target URL; connection failures surface through
// the 'error' event and the reconnect policy instead.
func New(rawURL string, opts Options) (*Client, error) {
	u, err := parseTarget(rawURL)
	if err != nil {
		return nil, err
	}

	if opts.ReconnectInterval <= 0 {
		opts.ReconnectInterval = DefaultReconnectInterval
	}
	if opts.MaxReconnectDelay <= 0 {
		opts.MaxReconnectDelay = DefaultMaxReconnectDelay
	}
	if opts.Logger == nil {
		opts.Logger = NewWriterLogger(os.Stdout)
	}
	if opts.Codec == nil {
		opts.Codec = JSONCodec{}
	}
	if opts.Transport == nil {
		opts.Transport = NewWebsocketTransport(nil, opts.Logger)
	}

	ctx := context.Background()
	if opts.Signal != nil {
		ctx = opts.Signal
	}

	c := newClient(ctx, Target{URL: *u, Protocols: opts.Protocols}, opts)

	if opts.Signal != nil {
		go func() {
			select {
			case <-opts.Signal.Done():
				c.Close()
			case <-c.closeC:
			}
		}()
	}

	go c.connect()

	return c, nil
}

func parseTarget(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid target url %q", rawURL)
	}
	if u.Host == "" {
		return nil, errors.Errorf("invalid target url %q: missing host", rawURL)
	}
	return u, nil
}
