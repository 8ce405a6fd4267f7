package time

import "time"

// clock measures monotonic time since the lock registry started
// lock expiry is stored as an offset from that start so wall clock jumps
// never shorten or extend a held lock
type Clock struct {
	startTime time.Time
}

func NewClock() *Clock {
	return &Clock{
		startTime: time.Now(),
	}
}

// duration since the clock was created
func (c *Clock) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

// returns the expiry offset for a lock taken now with the given ttl
// a non-positive ttl means no expiry and returns zero
func (c *Clock) ExpiresAt(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	return c.Elapsed() + ttl
}

// time left until the given expiry offset, zero once it has passed
func (c *Clock) Remaining(expiresAt time.Duration) time.Duration {
	left := expiresAt - c.Elapsed()
	if left < 0 {
		return 0
	}
	return left
}
