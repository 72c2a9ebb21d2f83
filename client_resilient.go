package resock

import (
	"context"
	"sync"
	"time"
)

// Reconnect is the payload of the reconnect event.
type Reconnect struct {
	// Attempt is the 1-based number of the scheduled attempt.
	Attempt int
	// Delay is the wait before the attempt starts.
	Delay time.Duration
}

// Client manages a single logical connection: it owns the transport
// handle, drives the lifecycle state machine, reconnects on failure with
// exponential backoff and queues outbound payloads while not open.
//
// All state mutations happen under one mutex; transport callbacks and the
// reconnect timer are keyed to an epoch so that a stale callback or a
// timer firing after Close observes the mismatch and becomes a no-op.
type Client struct {
	target    Target
	opts      Options
	transport Transport
	codec     Codec
	logger    Logger
	hub       *EventHub
	backoff   BackoffPolicy
	dialCtx   context.Context

	mu        sync.Mutex
	state     State
	conn      TransportConn
	queue     outboundQueue
	attempts  int
	epoch     int
	cancelled bool

	closeOnce sync.Once
	closeC    CloseChan
}

func newClient(ctx context.Context, target Target, opts Options) *Client {
	return &Client{
		target:    target,
		opts:      opts,
		transport: opts.Transport,
		codec:     opts.Codec,
		logger:    opts.Logger.WithField("type", "resilient_client"),
		hub:       NewEventHub(opts.Logger),
		backoff: BackoffPolicy{
			Base: opts.ReconnectInterval,
			Max:  opts.MaxReconnectDelay,
		},
		dialCtx: ctx,
		state:   StateConnecting,
		closeC:  make(CloseChan),
	}
}

// On registers cb for the given event kind. Set semantics: registering the
// same function value twice under one kind is a no-op.
func (c *Client) On(kind EventKind, cb Callback) {
	c.hub.On(kind, cb)
}

// Off removes cb from the given event kind. No-op if absent.
func (c *Client) Off(kind EventKind, cb Callback) {
	c.hub.Off(kind, cb)
}

// Send encodes payload and transmits it if the connection is open, or
// queues it for the next flush otherwise. It never fails towards the
// caller: an unencodable payload is dropped and reported on the 'error'
// event. Every payload passes through the queue, so an entry stranded by
// a failed flush is never overtaken by a later send while open.
func (c *Client) Send(payload any) {
	data, err := c.codec.Encode(payload)
	if err != nil {
		c.logger.Errorf("dropping unencodable payload: %s", err)
		c.hub.Emit(EventError, err)
		return
	}

	c.mu.Lock()
	c.queue.Enqueue(data)
	if c.state != StateOpen || c.conn == nil {
		c.mu.Unlock()
		return
	}

	flushErr := c.queue.Flush(c.conn.Send, func() bool {
		return c.state == StateOpen && !c.cancelled
	})
	c.mu.Unlock()

	if flushErr != nil {
		c.hub.Emit(EventError, normalizeError(flushErr))
	}
}

// Close sets the cancellation flag, clears every subscriber and closes the
// transport handle. Idempotent. The channel returned by CloseChan is
// closed once teardown has been requested.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.cancelled = true
		c.state = StateTerminated
		c.epoch++
		conn := c.conn
		c.conn = nil
		c.mu.Unlock()

		c.hub.Clear()
		if conn != nil {
			conn.Close()
		}
		close(c.closeC)

		c.logger.Infoln("client closed")
	})
}

// CloseChan returns a channel that is closed once Close completed.
func (c *Client) CloseChan() CloseChan {
	return c.closeC
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// IsConnected reports whether the state is exactly StateOpen.
func (c *Client) IsConnected() bool {
	return c.State() == StateOpen
}

// connect runs one connection attempt. A dial failure, including a
// panicking transport, is reported on the 'error' event and then routed
// through the same path as a transport close.
func (c *Client) connect() {
	c.mu.Lock()
	if c.cancelled {
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	epoch := c.epoch
	c.mu.Unlock()

	conn, err := c.dial(epoch)

	c.mu.Lock()
	if c.cancelled || epoch != c.epoch {
		c.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}

	if err != nil {
		c.mu.Unlock()
		c.hub.Emit(EventError, normalizeError(err))
		c.transportClosed(epoch)
		return
	}

	c.conn = conn
	c.attempts = 0
	c.state = StateOpen

	// Drain the queue before releasing the lock so payloads sent while
	// disconnected precede any direct send issued against the open state.
	flushErr := c.queue.Flush(conn.Send, func() bool {
		return c.state == StateOpen && !c.cancelled
	})
	c.mu.Unlock()

	if flushErr != nil {
		c.hub.Emit(EventError, normalizeError(flushErr))
	}

	c.hub.Emit(EventOpen, nil)

	if c.opts.PingInterval > 0 {
		go c.keepAlive(conn, epoch)
	}
}

func (c *Client) dial(epoch int) (conn TransportConn, err error) {
	defer func() {
		if r := recover(); r != nil {
			conn, err = nil, normalizeError(r)
		}
	}()

	handlers := TransportHandlers{
		OnMessage: c.handleMessage,
		OnError: func(err error) {
			c.hub.Emit(EventError, normalizeError(err))
		},
		OnClose: func() {
			c.transportClosed(epoch)
		},
	}

	return c.transport.Connect(c.dialCtx, c.target, handlers)
}

// handleMessage decodes an incoming frame. A malformed payload is reported
// on the 'error' event and does not affect the connection.
func (c *Client) handleMessage(data string) {
	value, err := c.codec.Decode(data)
	if err != nil {
		c.hub.Emit(EventError, err)
		return
	}

	c.hub.Emit(EventMessage, value)
}

// transportClosed is the single close transition: it emits 'close',
// evaluates retry eligibility and either schedules a backoff-delayed
// reconnect or terminates the client. Stale invocations, from a transport
// handle that has already been superseded, are inert.
func (c *Client) transportClosed(epoch int) {
	c.mu.Lock()
	if c.cancelled || epoch != c.epoch ||
		c.state == StateTerminated || c.state == StateReconnecting {
		c.mu.Unlock()
		return
	}

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.state = StateClosed

	if c.opts.MaxRetries > 0 && c.attempts >= c.opts.MaxRetries {
		c.state = StateTerminated
		attempts := c.attempts
		c.mu.Unlock()

		c.hub.Emit(EventClose, nil)
		c.logger.Warnf(
			"no reconnect scheduled after %d failed attempts, terminating", attempts,
		)
		return
	}

	delay := c.backoff.Delay(c.attempts)
	c.attempts++
	attempt := c.attempts
	c.epoch++
	next := c.epoch
	c.state = StateReconnecting
	c.mu.Unlock()

	c.hub.Emit(EventClose, nil)
	c.hub.Emit(EventReconnect, Reconnect{Attempt: attempt, Delay: delay})
	c.logger.Infof("retrying to connect in %s (attempt %d)", delay, attempt)

	// The timer is never cancelled explicitly: if Close ran in the
	// meantime the epoch no longer matches and the firing is a no-op.
	time.AfterFunc(delay, func() {
		c.mu.Lock()
		stale := c.cancelled || c.epoch != next
		c.mu.Unlock()

		if stale {
			return
		}
		c.connect()
	})
}

// keepAlive sends periodic pings over conn while it remains the current
// open handle.
func (c *Client) keepAlive(conn TransportConn, epoch int) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.closeC:
			return
		case <-ticker.C:
			c.mu.Lock()
			stale := c.cancelled || c.epoch != epoch || c.state != StateOpen
			c.mu.Unlock()

			if stale {
				return
			}
			if err := conn.Ping(nil); err != nil {
				c.logger.Warnf("keep-alive ping failed: %s", err)
				return
			}
		}
	}
}
