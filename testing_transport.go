package resock

import (
	"context"
	"sync"
)

// fakeTransport scripts dial outcomes for tests. Every Connect consumes
// the next entry of outcomes (nil meaning success); once the script is
// exhausted, exhausted decides all further dials. Successful dials publish
// their connection on Conns so tests can drive transport signals.
type fakeTransport struct {
	// DialGate, when non-nil, blocks every Connect until it is closed or
	// receives a token.
	DialGate chan struct{}
	// Conns receives every successfully dialed connection.
	Conns chan *fakeConn
	// SendScript, when non-empty, is installed on the next dialed
	// connection: each of its Sends consumes one entry, nil meaning
	// success.
	SendScript []error

	mu        sync.Mutex
	outcomes  []error
	exhausted error
	dials     int
}

func newFakeTransport(outcomes []error, exhausted error) *fakeTransport {
	return &fakeTransport{
		Conns:     make(chan *fakeConn, 8),
		outcomes:  outcomes,
		exhausted: exhausted,
	}
}

func (t *fakeTransport) Connect(
	_ context.Context, _ Target, handlers TransportHandlers,
) (TransportConn, error) {
	if t.DialGate != nil {
		<-t.DialGate
	}

	t.mu.Lock()
	t.dials++
	err := t.exhausted
	if len(t.outcomes) > 0 {
		err = t.outcomes[0]
		t.outcomes = t.outcomes[1:]
	}
	sendScript := t.SendScript
	t.SendScript = nil
	t.mu.Unlock()

	if err != nil {
		return nil, err
	}

	conn := newFakeConn(handlers, sendScript)
	t.Conns <- conn
	return conn, nil
}

func (t *fakeTransport) Dials() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.dials
}

// fakeConn records outbound traffic and lets tests inject transport
// signals through the handlers it was dialed with.
type fakeConn struct {
	handlers TransportHandlers

	mu       sync.Mutex
	sent     []string
	sendErrs []error
	pings    int
	open     bool
}

func newFakeConn(handlers TransportHandlers, sendErrs []error) *fakeConn {
	return &fakeConn{handlers: handlers, sendErrs: sendErrs, open: true}
}

func (f *fakeConn) Send(data string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open {
		return ErrConnectionClosed
	}
	if len(f.sendErrs) > 0 {
		err := f.sendErrs[0]
		f.sendErrs = f.sendErrs[1:]
		if err != nil {
			return err
		}
	}
	f.sent = append(f.sent, data)
	return nil
}

func (f *fakeConn) Ping([]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pings++
	return nil
}

func (f *fakeConn) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.open
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.open = false
}

// Sent returns a copy of everything transmitted so far.
func (f *fakeConn) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeConn) Pings() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.pings
}

// RemoteClose simulates the peer dropping the connection.
func (f *fakeConn) RemoteClose() {
	f.mu.Lock()
	f.open = false
	f.mu.Unlock()

	f.handlers.OnClose()
}

// Receive simulates an incoming frame.
func (f *fakeConn) Receive(data string) {
	f.handlers.OnMessage(data)
}

// Fail simulates a runtime transport error that does not kill the
// connection.
func (f *fakeConn) Fail(err error) {
	f.handlers.OnError(err)
}
