package resock

import (
	"github.com/pkg/errors"
)

var (
	ErrConnectFailed    = errors.New("connection cannot be established")
	ErrConnectionClosed = errors.New("connection has been closed")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrTerminated       = errors.New("client has been terminated")
	ErrEncodeFailed     = errors.New("cannot encode outbound payload")
	ErrDecodeFailed     = errors.New("cannot decode incoming payload")
)

// normalizeError guarantees an error value for the 'error' event channel,
// wrapping whatever non-error value a transport may have panicked with.
func normalizeError(v any) error {
	if err, ok := v.(error); ok && err != nil {
		return err
	}
	return errors.Errorf("transport failure: %v", v)
}
