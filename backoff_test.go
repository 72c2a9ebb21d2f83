package resock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDelayDoublesUpToCap(t *testing.T) {
	policy := BackoffPolicy{Base: 3 * time.Second, Max: 30 * time.Second}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 3 * time.Second},
		{1, 6 * time.Second},
		{2, 12 * time.Second},
		{3, 24 * time.Second},
		{4, 30 * time.Second},
		{10, 30 * time.Second},
		{63, 30 * time.Second},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, policy.Delay(tc.attempt), "attempt %d", tc.attempt)
	}
}

func TestBackoffDelayIsDeterministic(t *testing.T) {
	policy := BackoffPolicy{Base: 100 * time.Millisecond, Max: time.Second}

	first := policy.Delay(2)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, policy.Delay(2))
	}
}

func TestBackoffBaseAboveCap(t *testing.T) {
	policy := BackoffPolicy{Base: time.Minute, Max: 30 * time.Second}

	assert.Equal(t, 30*time.Second, policy.Delay(0))
}
