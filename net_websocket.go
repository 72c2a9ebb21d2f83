package resock

import (
	"context"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/fasthttp/websocket"
)

const defaultWriteTimeout = time.Second

type (
	// wsTransport dials WebSocket connections with a fasthttp/websocket
	// dialer. It implements the Transport interface.
	wsTransport struct {
		dialer *websocket.Dialer
		logger Logger
	}

	wsConn struct {
		logger   Logger
		conn     *websocket.Conn
		handlers TransportHandlers

		open      atomic.Bool
		writeMu   sync.Mutex
		closeOnce sync.Once
	}
)

// NewWebsocketTransport creates the default Transport. A nil dialer falls
// back to websocket.DefaultDialer.
func NewWebsocketTransport(dialer *websocket.Dialer, logger Logger) Transport {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	return &wsTransport{
		dialer: dialer,
		logger: logger.WithField("net", "ws_transport"),
	}
}

func (t *wsTransport) Connect(
	ctx context.Context,
	target Target,
	handlers TransportHandlers,
) (TransportConn, error) {
	dialer := t.dialer
	if len(target.Protocols) > 0 {
		d := *dialer
		d.Subprotocols = target.Protocols
		dialer = &d
	}

	conn, resp, err := dialer.DialContext(ctx, target.URL.String(), http.Header{})

	if err = handleDialError(resp, err); err != nil {
		t.logger.Errorf("connection err to %s: %s", target.URL.String(), err)
		return nil, err
	}

	t.logger.Debugf("success opening connection to %s", target.URL.String())

	w := &wsConn{
		logger:   t.logger,
		conn:     conn,
		handlers: handlers,
	}
	w.open.Store(true)

	go w.read()

	return w, nil
}

// Send transmits a text frame. Callers serialize sends; the internal mutex
// only guards against a concurrent close frame.
func (w *wsConn) Send(data string) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	_ = w.conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout))

	if err := w.conn.WriteMessage(websocket.TextMessage, []byte(data)); err != nil {
		return errors.Wrap(ErrConnectionClosed, err.Error())
	}
	return nil
}

func (w *wsConn) Ping(data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	return w.conn.WriteControl(
		websocket.PingMessage, data, time.Now().Add(defaultWriteTimeout),
	)
}

func (w *wsConn) IsOpen() bool {
	return w.open.Load()
}

// Close tears the connection down from our side. The read pump observes
// the closed socket and fires OnClose.
func (w *wsConn) Close() {
	w.closeOnce.Do(func() {
		w.open.Store(false)

		w.writeMu.Lock()
		_ = w.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(defaultWriteTimeout),
		)
		w.writeMu.Unlock()

		_ = w.conn.Close()
	})
}

func (w *wsConn) read() {
	defer func() {
		w.open.Store(false)
		w.handlers.OnClose()
	}()

	for {
		messageType, bts, err := w.conn.ReadMessage()
		if err != nil {
			if w.open.Load() &&
				!websocket.IsCloseError(err,
					websocket.CloseNormalClosure,
					websocket.CloseGoingAway,
				) {
				w.logger.Errorf("error occurred on websocket read: %s", err)
				w.handlers.OnError(err)
			}
			return
		}

		switch messageType {
		case websocket.TextMessage, websocket.BinaryMessage:
			w.logger.Debugf("<= [DATA] %s", string(bts))
			w.handlers.OnMessage(string(bts))
		}
	}
}

func handleDialError(resp *http.Response, err error) error {
	var msg string

	if resp != nil {
		if resp.Body != nil {
			defer resp.Body.Close()

			bts, readErr := io.ReadAll(resp.Body)
			if readErr == nil {
				msg = string(bts)
			}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return errors.Wrap(ErrRateLimited, msg)
		}
	}

	if err != nil {
		return errors.Wrap(ErrConnectFailed, err.Error())
	}

	return nil
}
