package lock

import (
	"sort"
	"sync"
	tm "time"

	"github.com/pixperk/lockbox/pkg/metrics"
	"github.com/pixperk/lockbox/pkg/time"
	"github.com/pixperk/lockbox/pkg/types"
	"github.com/rs/zerolog"
)

// holds the lock table
// critical :
// - at most one lock per name
// - only the recorded holder may renew or release a lock
// - expired locks behave exactly like missing ones
type Registry struct {
	mu sync.Mutex

	locks map[string]*types.Lock // name -> Lock

	ttl   tm.Duration // zero disables expiry
	clock *time.Clock // monotonic clock
	hook  Hook
	log   zerolog.Logger
}

// Hook observes every change to the lock table. It runs inside the
// registry's critical section, so the events it sees are in table order,
// and it must not call back into the registry.
type Hook func(ev types.Event)

type Option func(*Registry)

func WithHook(h Hook) Option {
	return func(r *Registry) {
		r.hook = h
	}
}

// gives every lock an expiry of ttl after its latest acquire
func WithTTL(ttl tm.Duration) Option {
	return func(r *Registry) {
		r.ttl = ttl
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		locks: make(map[string]*types.Lock),
		clock: time.NewClock(),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// takes the lock on name for holder
// returns false without touching the table when someone else holds it
func (r *Registry) Acquire(name, holder string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Elapsed()

	if existing, held := r.locks[name]; held {
		if existing.IsExpired(now) {
			metrics.LockExpireTotal.Inc()
			r.emit(types.OpExpire, name, existing.Holder)
		} else {
			//same holder re-acquiring is a no-op apart from renewing the expiry
			if existing.Holder == holder {
				existing.ExpiresAt = r.clock.ExpiresAt(r.ttl)
				metrics.LockAcquireTotal.WithLabelValues("reacquired").Inc()
				r.emit(types.OpAcquire, name, holder)
				return true
			}
			metrics.LockAcquireTotal.WithLabelValues("busy").Inc()
			return false
		}
	}

	r.locks[name] = &types.Lock{
		Name:      name,
		Holder:    holder,
		ExpiresAt: r.clock.ExpiresAt(r.ttl),
	}

	metrics.LockAcquireTotal.WithLabelValues("acquired").Inc()
	metrics.LocksActive.Set(float64(len(r.locks)))
	r.log.Debug().Str("name", name).Str("holder", holder).Msg("lock acquired")
	r.emit(types.OpAcquire, name, holder)

	return true
}

// drops the lock on name if holder owns it
// returns false when the name is free or held by someone else
func (r *Registry) Release(name, holder string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, held := r.locks[name]
	if !held || lock.Holder != holder {
		metrics.LockReleaseTotal.WithLabelValues("rejected").Inc()
		return false
	}

	delete(r.locks, name)

	metrics.LockReleaseTotal.WithLabelValues("released").Inc()
	metrics.LocksActive.Set(float64(len(r.locks)))
	r.log.Debug().Str("name", name).Str("holder", holder).Msg("lock released")
	r.emit(types.OpRelease, name, holder)

	return true
}

// reports whether holder may mutate name right now:
// the name is unlocked, its lock has expired, or holder owns it
func (r *Registry) Permits(name, holder string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, held := r.locks[name]
	if !held || lock.IsExpired(r.clock.Elapsed()) {
		return true
	}
	return lock.Holder == holder
}

// returns the current holder of name
func (r *Registry) Holder(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, held := r.locks[name]
	if !held || lock.IsExpired(r.clock.Elapsed()) {
		return "", false
	}
	return lock.Holder, true
}

// returns a copy of every live lock, sorted by name
func (r *Registry) Locks() []types.Lock {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Elapsed()
	out := make([]types.Lock, 0, len(r.locks))
	for _, lock := range r.locks {
		if lock.IsExpired(now) {
			continue
		}
		out = append(out, *lock)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// removes expired locks and returns how many were dropped
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Elapsed()
	expired := 0
	for name, lock := range r.locks {
		if lock.IsExpired(now) {
			delete(r.locks, name)
			expired++
			r.log.Info().Str("name", name).Str("holder", lock.Holder).Msg("lock expired")
			r.emit(types.OpExpire, name, lock.Holder)
		}
	}

	if expired > 0 {
		metrics.LockExpireTotal.Add(float64(expired))
		metrics.LocksActive.Set(float64(len(r.locks)))
	}
	return expired
}

// caller holds r.mu
func (r *Registry) emit(op types.Op, name, holder string) {
	if r.hook != nil {
		r.hook(types.Event{Op: op, Name: name, Holder: holder, Time: tm.Now()})
	}
}

// time left before l expires, zero for a lock that never does
func (r *Registry) Remaining(l types.Lock) tm.Duration {
	if l.ExpiresAt <= 0 {
		return 0
	}
	return r.clock.Remaining(l.ExpiresAt)
}

func (r *Registry) TTL() tm.Duration {
	return r.ttl
}

// time since the registry was created
func (r *Registry) Uptime() tm.Duration {
	return r.clock.Elapsed()
}
