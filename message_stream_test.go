package resock

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (c *Client) messageSubscribers() int {
	c.hub.lock.RLock()
	defer c.hub.lock.RUnlock()

	return len(c.hub.subs[EventMessage])
}

func TestMessageStreamYieldsDecodedPayloads(t *testing.T) {
	tr := newFakeTransport(nil, nil)

	c, err := New(testURL, testOptions(tr))
	require.NoError(t, err)
	defer c.Close()

	conn := waitConn(t, tr)
	require.Eventually(t, c.IsConnected, 2*time.Second, 10*time.Millisecond)

	stream := c.Messages()

	type result struct {
		value any
		err   error
	}

	got := make(chan result, 1)
	go func() {
		value, nextErr := stream.Next(context.Background())
		got <- result{value: value, err: nextErr}
	}()

	require.Eventually(t, func() bool {
		return c.messageSubscribers() > 0
	}, 2*time.Second, 5*time.Millisecond)

	conn.Receive(`"ping"`)

	select {
	case res := <-got:
		require.NoError(t, res.err)
		assert.Equal(t, "ping", res.value)
	case <-time.After(2 * time.Second):
		t.Fatal("stream never yielded")
	}

	// The one-shot subscriber unregisters after yielding.
	assert.Zero(t, c.messageSubscribers())
}

func TestMessageStreamEndsOnClose(t *testing.T) {
	tr := newFakeTransport(nil, nil)

	c, err := New(testURL, testOptions(tr))
	require.NoError(t, err)

	waitConn(t, tr)
	c.Close()

	_, err = c.Messages().Next(context.Background())
	assert.True(t, errors.Is(err, ErrTerminated))
}

func TestMessageStreamHonorsContext(t *testing.T) {
	tr := newFakeTransport(nil, nil)

	c, err := New(testURL, testOptions(tr))
	require.NoError(t, err)
	defer c.Close()

	waitConn(t, tr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Messages().Next(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}
