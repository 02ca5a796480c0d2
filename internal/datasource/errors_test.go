package datasource

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataSourceErrorMatchesSentinels(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		sentinel error
	}{
		{"timeout", ErrCodeTimeout, ErrTimeout},
		{"rate limit", ErrCodeRateLimitExceeded, ErrRateLimitExceeded},
		{"authentication", ErrCodeAuthenticationFail, ErrAuthenticationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDataSourceError("stats_nba", tt.code, "boom", nil)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestDataSourceErrorDoesNotMatchOtherSentinels(t *testing.T) {
	err := NewDataSourceError("stats_nba", ErrCodeNetworkError, "connection reset", nil)

	assert.False(t, errors.Is(err, ErrTimeout))
	assert.False(t, errors.Is(err, ErrRateLimitExceeded))
	assert.False(t, errors.Is(err, ErrAuthenticationFailed))
}

func TestIsTimeoutThroughWrapping(t *testing.T) {
	inner := NewDataSourceError("stats_nba", ErrCodeTimeout, "playergamelog timed out", context.DeadlineExceeded)
	wrapped := fmt.Errorf("fetch failed: %w", inner)

	assert.True(t, IsTimeout(wrapped))
	assert.False(t, IsTimeout(errors.New("some other failure")))
}
