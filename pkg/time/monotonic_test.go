package time

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpiresAtWithoutTTL(t *testing.T) {
	c := NewClock()
	assert.Equal(t, time.Duration(0), c.ExpiresAt(0))
	assert.Equal(t, time.Duration(0), c.ExpiresAt(-time.Second))
}

func TestExpiresAtIsAheadOfElapsed(t *testing.T) {
	c := NewClock()
	exp := c.ExpiresAt(time.Minute)
	assert.Greater(t, exp, c.Elapsed())
	assert.LessOrEqual(t, c.Remaining(exp), time.Minute)
	assert.Greater(t, c.Remaining(exp), 59*time.Second)
}

func TestRemainingAfterExpiry(t *testing.T) {
	c := NewClock()
	exp := c.ExpiresAt(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, time.Duration(0), c.Remaining(exp))
}
