// Package request provides per-request cancellation plumbing. Each
// provider client owns one Controller; beginning a new request cancels
// the previous one, so two requests can never race to mutate the same
// connection state (last-request-wins).
package request

import (
	"context"
	"sync"
)

// Controller hands out one cancellation token per request and serializes
// in-flight requests on the client that owns it.
type Controller struct {
	mu      sync.Mutex
	current *token
}

type token struct {
	cancel context.CancelFunc
}

// Begin cancels any in-flight request and returns a context for the new
// one, plus a release function the request must call when it finishes.
// Release only clears the controller if the request is still the
// current one.
func (c *Controller) Begin(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	t := &token{cancel: cancel}

	c.mu.Lock()
	if c.current != nil {
		c.current.cancel()
	}
	c.current = t
	c.mu.Unlock()

	release := func() {
		c.mu.Lock()
		if c.current == t {
			c.current = nil
		}
		c.mu.Unlock()
		cancel()
	}
	return ctx, release
}

// Cancel aborts the in-flight request, if any. Cancellation is
// cooperative: the network read is interrupted immediately and the
// decode pipeline finalizes its buffered state before returning.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.current.cancel()
	}
}
