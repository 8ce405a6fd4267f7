package types

import "time"

// a lock is the exclusive right of one holder to mutate one file
// absence of a lock means the file is free
// at most one lock exists per name at any time
type Lock struct {
	Name      string        //resource name
	Holder    string        //opaque session identity, compared by equality only
	ExpiresAt time.Duration //monotonic time from server start, zero means the lock never expires
}

// checks if the lock has expired given the elapsed time since server start
// locks without an expiry never expire
func (l *Lock) IsExpired(elapsed time.Duration) bool {
	return l.ExpiresAt > 0 && elapsed >= l.ExpiresAt
}
