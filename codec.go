package resock

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Codec translates application payloads to and from the wire string form.
type Codec interface {
	// Encode serializes value. It fails on non-serializable input.
	Encode(value any) (string, error)
	// Decode parses an incoming frame. It fails on malformed input.
	Decode(data string) (any, error)
}

// JSONCodec is the default Codec.
type JSONCodec struct{}

func (JSONCodec) Encode(value any) (string, error) {
	bts, err := json.Marshal(value)
	if err != nil {
		return "", errors.Wrap(ErrEncodeFailed, err.Error())
	}
	return string(bts), nil
}

func (JSONCodec) Decode(data string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(data), &value); err != nil {
		return nil, errors.Wrap(ErrDecodeFailed, err.Error())
	}
	return value, nil
}
