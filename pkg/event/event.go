// Package event is a small in-process event bus. Services fire domain
// events (order.placed, product.low_stock); listeners fan them out to the
// websocket hub, the queue, and metrics.
package event

import (
	"context"
	"sync"

	"github.com/shashiranjanraj/enventory/pkg/logger"
)

// Listener handles one fired event. Payload type is event-specific.
type Listener func(ctx context.Context, payload interface{})

var (
	mu        sync.RWMutex
	listeners = map[string][]Listener{}
	wg        sync.WaitGroup
)

// Listen registers a listener for an event name.
func Listen(name string, l Listener) {
	mu.Lock()
	defer mu.Unlock()
	listeners[name] = append(listeners[name], l)
}

// Fire invokes all listeners for name synchronously, in registration order.
func Fire(ctx context.Context, name string, payload interface{}) {
	mu.RLock()
	ls := listeners[name]
	mu.RUnlock()

	for _, l := range ls {
		l(ctx, payload)
	}
}

// FireAsync invokes listeners in a goroutine per listener. Panics in
// listeners are logged, not propagated.
func FireAsync(ctx context.Context, name string, payload interface{}) {
	mu.RLock()
	ls := listeners[name]
	mu.RUnlock()

	for _, l := range ls {
		wg.Add(1)
		go func(l Listener) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event listener panicked", "event", name, "panic", r)
				}
			}()
			l(ctx, payload)
		}(l)
	}
}

// Flush waits for in-flight async listeners; used at shutdown and in tests.
func Flush() {
	wg.Wait()
}

// Reset drops all listeners; test helper.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	listeners = map[string][]Listener{}
}
