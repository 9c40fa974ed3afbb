// Package observe delivers snapshots of measured values (container sizes,
// media natural sizes) to subscribers.
//
// A Value always holds the last observed snapshot. Subscribing delivers
// that snapshot synchronously, then every later change. There is no
// queueing: whatever was observed last is authoritative.
//
// Thread Safety Rules:
//   - Get() is safe to call from any goroutine
//   - Set() should be called from the UI event loop
//   - For asynchronous sources, use Watch with a dispatch function that
//     hops onto the event loop
package observe

import "sync"

// Value holds the latest snapshot of T and notifies subscribers on change
type Value[T comparable] struct {
	mu     sync.RWMutex
	value  T
	subs   []*entry[T]
	nextID uint64
}

type entry[T any] struct {
	id     uint64
	fn     func(T)
	active bool
}

// NewValue creates a Value seeded with initial
func NewValue[T comparable](initial T) *Value[T] {
	return &Value[T]{value: initial}
}

// Get returns the latest snapshot
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set records a new snapshot. Subscribers run only when the snapshot
// differs from the previous one; the return value reports whether it did.
func (v *Value[T]) Set(x T) bool {
	v.mu.Lock()
	if v.value == x {
		v.mu.Unlock()
		return false
	}
	v.value = x

	// drop released entries while we hold the lock
	active := make([]*entry[T], 0, len(v.subs))
	for _, e := range v.subs {
		if e.active {
			active = append(active, e)
		}
	}
	v.subs = active
	v.mu.Unlock()

	// outside the lock, subscribers may call Get
	for _, e := range active {
		v.mu.RLock()
		live := e.active
		v.mu.RUnlock()
		if live {
			e.fn(x)
		}
	}
	return true
}

// Subscribe calls fn with the current snapshot and then with every change
// until the returned Subscription is closed.
func (v *Value[T]) Subscribe(fn func(T)) *Subscription {
	v.mu.Lock()
	e := &entry[T]{id: v.nextID, fn: fn, active: true}
	v.nextID++
	v.subs = append(v.subs, e)
	current := v.value
	v.mu.Unlock()

	fn(current)

	return newSubscription(func() {
		v.mu.Lock()
		e.active = false
		v.mu.Unlock()
	})
}

// Subscribers returns the number of live subscriptions
func (v *Value[T]) Subscribers() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	n := 0
	for _, e := range v.subs {
		if e.active {
			n++
		}
	}
	return n
}
