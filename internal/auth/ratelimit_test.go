package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		MaxAttempts:     3,
		WindowDuration:  time.Minute,
		LockoutDuration: time.Minute,
		CleanupInterval: time.Hour,
	})
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := newTestLimiter()
	defer rl.Stop()

	allowed, _ := rl.Allow("10.0.0.1", "janereader")
	assert.True(t, allowed)

	for i := 0; i < 3; i++ {
		rl.RecordFailure("10.0.0.1", "janereader")
	}

	allowed, retryAfter := rl.Allow("10.0.0.1", "janereader")
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestRateLimiter_TracksPerIPAndUsername(t *testing.T) {
	rl := newTestLimiter()
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		rl.RecordFailure("10.0.0.1", "janereader")
	}

	// Same username from a different IP is unaffected
	allowed, _ := rl.Allow("10.0.0.2", "janereader")
	assert.True(t, allowed)

	// Different username from the same IP is unaffected
	allowed, _ = rl.Allow("10.0.0.1", "bobreader")
	assert.True(t, allowed)
}

func TestRateLimiter_RecordSuccess(t *testing.T) {
	rl := newTestLimiter()
	defer rl.Stop()

	rl.RecordFailure("10.0.0.1", "janereader")
	rl.RecordFailure("10.0.0.1", "janereader")
	rl.RecordSuccess("10.0.0.1", "janereader")

	// Counter was cleared, so three more failures are needed to lock
	rl.RecordFailure("10.0.0.1", "janereader")
	allowed, _ := rl.Allow("10.0.0.1", "janereader")
	assert.True(t, allowed)
}
