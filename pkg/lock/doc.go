// Package lock provides the exclusive per-file lock registry.
//
// The [Registry] maps a resource name to the identity of the single holder
// allowed to mutate it. Absence of an entry means the name is free. All
// operations run inside one critical section, so callers never observe a
// partially updated table, but nothing ties a successful [Registry.Acquire]
// to the file operations that follow it: writers are expected to always run
// acquire, mutate, release in that order.
//
// Locks carry no lease by default and are held until released. A registry
// built with [WithTTL] stamps every lock with a monotonic expiry instead;
// expired locks count as free and [Registry.Sweep] drops them.
//
// A [Hook] installed with [WithHook] sees acquire, release and expire events
// in the order the table applied them.
package lock
