package web

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiter_PerIP(t *testing.T) {
	rl := newIPRateLimiter(2)
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("1.1.1.1"))
	assert.True(t, rl.allow("1.1.1.1"))
	assert.False(t, rl.allow("1.1.1.1"), "bucket empty")
	assert.True(t, rl.allow("2.2.2.2"), "other IPs have their own bucket")

	// Two a minute refills one token every 30s.
	now = now.Add(31 * time.Second)
	assert.True(t, rl.allow("1.1.1.1"))
	assert.False(t, rl.allow("1.1.1.1"))
	assert.Equal(t, 30, rl.retryAfter())
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	rl := newIPRateLimiter(10)
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }

	rl.allow("1.1.1.1")
	now = now.Add(time.Minute)
	rl.allow("2.2.2.2")
	now = now.Add(150 * time.Second)

	assert.Equal(t, 1, rl.sweep())
	assert.Len(t, rl.visitors, 1)
	assert.Contains(t, rl.visitors, "2.2.2.2")
}
