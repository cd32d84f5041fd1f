// Package notify is a synchronous, named-event notification center. Handlers
// registered for an event run in registration order each time the event
// fires, on the caller's goroutine.
package notify

import (
	"sync"
)

// Info is the payload passed to handlers
type Info map[string]any

// Handler receives an event's payload
type Handler func(info Info)

// HandlerOptions tune a single registration
type HandlerOptions struct {
	// Once removes the handler after its first invocation
	Once bool
	// Condition, when set, must return true for the handler to run
	Condition func(info Info) bool
}

type subscription struct {
	id      uint64
	handler Handler
	opts    HandlerOptions
}

// Center dispatches named events to their handlers
type Center struct {
	mu     sync.RWMutex
	subs   map[string][]*subscription
	nextID uint64
}

// NewCenter creates an empty notification center
func NewCenter() *Center {
	return &Center{subs: make(map[string][]*subscription)}
}

// AddHandler registers handler for event and returns a function that
// removes it. Removing twice is harmless.
func (c *Center) AddHandler(event string, handler Handler, opts ...HandlerOptions) (remove func()) {
	var o HandlerOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	c.mu.Lock()
	c.nextID++
	sub := &subscription{id: c.nextID, handler: handler, opts: o}
	c.subs[event] = append(c.subs[event], sub)
	c.mu.Unlock()

	return func() { c.remove(event, sub.id) }
}

func (c *Center) remove(event string, id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	subs := c.subs[event]
	for i, s := range subs {
		if s.id == id {
			c.subs[event] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(c.subs[event]) == 0 {
		delete(c.subs, event)
	}
}

// FireEvent invokes every handler registered for event. Handlers added or
// removed while the event is firing take effect from the next firing.
func (c *Center) FireEvent(event string, info Info) {
	if info == nil {
		info = Info{}
	}

	// Snapshot outside the lock so handlers may register or fire events
	c.mu.RLock()
	subs := make([]*subscription, len(c.subs[event]))
	copy(subs, c.subs[event])
	c.mu.RUnlock()

	for _, s := range subs {
		if s.opts.Condition != nil && !s.opts.Condition(info) {
			continue
		}
		if s.opts.Once {
			c.remove(event, s.id)
		}
		s.handler(info)
	}
}

// HandlerCount returns the number of handlers registered for event
func (c *Center) HandlerCount(event string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs[event])
}
