//go:build !integration

package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBreakerConfig(t *testing.T) {
	cfg := DefaultBreakerConfig("telegram-send")

	assert.Equal(t, "telegram-send", cfg.Name)
	assert.Equal(t, uint32(5), cfg.Threshold)
	assert.Equal(t, uint32(5), cfg.MaxRequests)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 0.5, cfg.FailureRatio)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cfg := DefaultBreakerConfig("test")
	transitions := make([]string, 0, 2)
	cfg.OnStateChange = func(name, from, to string) {
		transitions = append(transitions, from+">"+to)
	}
	cb := NewBreaker[struct{}](cfg)

	boom := errors.New("boom")
	for i := uint32(0); i < cfg.Threshold; i++ {
		_, err := cb.Execute(func() (struct{}, error) { return struct{}{}, boom })
		require.ErrorIs(t, err, boom)
	}

	// The next call is rejected without invoking the function.
	called := false
	_, err := cb.Execute(func() (struct{}, error) {
		called = true
		return struct{}{}, nil
	})
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.False(t, called)
	require.NotEmpty(t, transitions)
	assert.Contains(t, transitions[0], ">open")
}

func TestSendLimiterPacesPerChat(t *testing.T) {
	l := NewSendLimiter(SendLimiterConfig{
		GlobalRPS:   1000,
		GlobalBurst: 1000,
		ChatRPS:     50,
		ChatBurst:   1,
	})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(ctx, 42))
	}
	// Burst of 1 at 50 rps means two 20ms refill waits.
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	// A different chat has its own bucket and is not delayed.
	start = time.Now()
	require.NoError(t, l.Wait(ctx, 43))
	assert.Less(t, time.Since(start), 15*time.Millisecond)
}
