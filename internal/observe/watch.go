package observe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Dispatcher queues fn to run on the UI event loop. It must not run fn
// before returning: callers dispatch from goroutines that the queued work
// may stop and wait for.
type Dispatcher func(fn func())

// Watch forwards every snapshot received on src into v through dispatch.
// It stops when ctx is cancelled, src is closed, or the returned
// Subscription is closed. Close waits for the forwarding goroutine to exit;
// deliveries already queued on the event loop are dropped.
func Watch[T comparable](ctx context.Context, src <-chan T, dispatch Dispatcher, v *Value[T]) *Subscription {
	ctx, cancel := context.WithCancel(ctx)

	var (
		stopped atomic.Bool
		wg      sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case x, ok := <-src:
				if !ok {
					return
				}
				dispatch(func() {
					if stopped.Load() {
						return
					}
					v.Set(x)
				})
			}
		}
	}()

	return newSubscription(func() {
		stopped.Store(true)
		cancel()
		wg.Wait()
	})
}
