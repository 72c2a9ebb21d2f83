package resock

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONCodecRoundTrip(t *testing.T) {
	codec := JSONCodec{}

	data, err := codec.Encode(map[string]any{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, data)

	value, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, value)
}

func TestJSONCodecEncodeFailure(t *testing.T) {
	codec := JSONCodec{}

	_, err := codec.Encode(make(chan int))
	assert.True(t, errors.Is(err, ErrEncodeFailed))
}

func TestJSONCodecDecodeFailure(t *testing.T) {
	codec := JSONCodec{}

	_, err := codec.Decode("{not json")
	assert.True(t, errors.Is(err, ErrDecodeFailed))
}
