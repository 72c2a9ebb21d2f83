package resock

import (
	"context"
)

// MessageStream is a lazy, infinite, non-restartable sequence of decoded
// incoming payloads. It supports exactly one consumer: concurrent Next
// calls race for the next message with undefined outcome.
type MessageStream struct {
	client *Client
}

// Messages returns a stream over the client's 'message' events.
func (c *Client) Messages() *MessageStream {
	return &MessageStream{client: c}
}

// Next registers a one-shot subscriber, suspends until exactly one message
// arrives, unregisters and returns the decoded payload. It fails with the
// context error on cancellation and with ErrTerminated once the client is
// closed.
func (s *MessageStream) Next(ctx context.Context) (any, error) {
	recv := make(chan any, 1)
	oneShot := func(data any) {
		select {
		case recv <- data:
		default:
		}
	}

	s.client.hub.On(EventMessage, oneShot)
	defer s.client.hub.Off(EventMessage, oneShot)

	select {
	case value := <-recv:
		return value, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.client.closeC:
		return nil, ErrTerminated
	}
}
