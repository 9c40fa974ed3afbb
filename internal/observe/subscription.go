package observe

import "sync"

// Subscription is a handle on a live observation. Close releases it; after
// Close returns no further deliveries are made. Close is idempotent.
type Subscription struct {
	once    sync.Once
	release func()
}

func newSubscription(release func()) *Subscription {
	return &Subscription{release: release}
}

// OnClose wraps an arbitrary release func, such as a context cancel, as a
// Subscription so it can share a Group with observations.
func OnClose(release func()) *Subscription {
	return newSubscription(release)
}

// Close releases the subscription
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.release != nil {
			s.release()
		}
	})
}

// Group releases several subscriptions together, typically everything
// acquired while a single element is mounted.
type Group struct {
	mu   sync.Mutex
	subs []*Subscription
}

// Add tracks s and returns it
func (g *Group) Add(s *Subscription) *Subscription {
	g.mu.Lock()
	g.subs = append(g.subs, s)
	g.mu.Unlock()
	return s
}

// Close releases every tracked subscription in reverse order
func (g *Group) Close() {
	g.mu.Lock()
	subs := g.subs
	g.subs = nil
	g.mu.Unlock()

	for i := len(subs) - 1; i >= 0; i-- {
		subs[i].Close()
	}
}
