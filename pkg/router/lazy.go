package router

import (
	"context"
	"errors"
	"sync"
)

// CellState is the lifecycle state of a LazyCell.
type CellState uint8

const (
	// CellUnresolved means no navigation has requested the route yet.
	CellUnresolved CellState = iota
	// CellPending means a load is in flight.
	CellPending
	// CellResolved means the handler loaded and is retained.
	CellResolved
	// CellFailed means the load failed; the error is retained.
	CellFailed
)

func (s CellState) String() string {
	switch s {
	case CellUnresolved:
		return "unresolved"
	case CellPending:
		return "pending"
	case CellResolved:
		return "resolved"
	case CellFailed:
		return "failed"
	}
	return "unknown"
}

// Loader produces the page handler for a lazy route. It runs at most
// once per process; the outcome is retained by the owning cell.
type Loader func(ctx context.Context) (PageHandler, error)

var errLoaderNoPage = errors.New("router: lazy loader returned no page")

// LazyCell defers a route's handler until the first navigation that
// needs it. Concurrent resolutions share one load. The outcome is
// sticky: a resolved handler is reused forever, and a failed load
// reports the same error to every later caller without retrying.
type LazyCell struct {
	mu    sync.Mutex
	state CellState
	page  PageHandler
	err   error
	done  chan struct{}
	load  Loader
}

func newLazyCell(load Loader) *LazyCell {
	return &LazyCell{load: load}
}

// State reports the cell's current lifecycle state.
func (c *LazyCell) State() CellState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the retained load error, or nil if the cell has not failed.
func (c *LazyCell) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Resolve returns the route's handler, starting the load on first use.
// Callers that arrive while a load is in flight block until it settles
// and share its outcome. Cancelling ctx abandons the wait for that
// caller only; the load itself keeps running and its outcome is still
// recorded for the next navigation.
func (c *LazyCell) Resolve(ctx context.Context) (PageHandler, error) {
	c.mu.Lock()
	switch c.state {
	case CellResolved:
		page := c.page
		c.mu.Unlock()
		return page, nil
	case CellFailed:
		err := c.err
		c.mu.Unlock()
		return nil, err
	case CellPending:
		done := c.done
		c.mu.Unlock()
		return c.wait(ctx, done)
	}

	c.state = CellPending
	c.done = make(chan struct{})
	done := c.done
	load := c.load
	c.load = nil
	c.mu.Unlock()

	// The load is detached from the caller's cancellation so that an
	// abandoned navigation cannot poison the cell for later ones.
	go c.run(context.WithoutCancel(ctx), load, done)

	return c.wait(ctx, done)
}

func (c *LazyCell) run(ctx context.Context, load Loader, done chan struct{}) {
	page, err := load(ctx)
	if err == nil && page == nil {
		err = errLoaderNoPage
	}
	c.mu.Lock()
	if err != nil {
		c.state = CellFailed
		c.err = err
	} else {
		c.state = CellResolved
		c.page = page
	}
	c.mu.Unlock()
	close(done)
}

func (c *LazyCell) wait(ctx context.Context, done chan struct{}) (PageHandler, error) {
	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.page, nil
}
