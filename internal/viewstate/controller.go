package viewstate

import (
	"sync"

	"github.com/rs/zerolog"
)

// Hooks are side effects run on state boundaries. Both are optional.
type Hooks struct {
	// OnEnter runs after the controller has moved into the given state
	OnEnter func(State)
	// OnExit runs before the controller leaves the given state
	OnExit func(State)
}

// Controller owns the view state. Dispatch must be called from the UI
// event loop; State may be read from anywhere.
type Controller struct {
	logger zerolog.Logger
	hooks  Hooks

	mu    sync.RWMutex
	state State
	subs  []subscriber
	next  uint64
}

type subscriber struct {
	id uint64
	fn func(State)
}

// NewController creates a controller in the Closed state
func NewController(logger zerolog.Logger, hooks Hooks) *Controller {
	return &Controller{
		logger: logger.With().Str("component", "viewstate").Logger(),
		hooks:  hooks,
		state:  Closed,
	}
}

// State returns the active state
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Dispatch applies e and returns the resulting state. Hooks and subscribers
// only run when the state actually changes.
func (c *Controller) Dispatch(e Event) State {
	c.mu.Lock()
	from := c.state
	to := Reduce(from, e)
	if to == from {
		c.mu.Unlock()
		c.logger.Debug().
			Stringer("state", from).
			Stringer("event", e).
			Msg("event ignored")
		return from
	}
	c.mu.Unlock()

	if c.hooks.OnExit != nil {
		c.hooks.OnExit(from)
	}

	c.mu.Lock()
	c.state = to
	subs := make([]subscriber, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	c.logger.Info().
		Stringer("from", from).
		Stringer("to", to).
		Stringer("event", e).
		Msg("state transition")

	if c.hooks.OnEnter != nil {
		c.hooks.OnEnter(to)
	}
	for _, sub := range subs {
		sub.fn(to)
	}

	return to
}

// Subscribe registers fn for every state change and immediately calls it
// with the current state. The returned func removes the subscription.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.next
	c.next++
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	current := c.state
	c.mu.Unlock()

	fn(current)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, sub := range c.subs {
			if sub.id == id {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
}
