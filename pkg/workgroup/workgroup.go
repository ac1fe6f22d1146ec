package workgroup

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many units of work run concurrently. A single Pool may
// back many Groups; the bound applies across all of them.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool creates a pool allowing size concurrent units. A size below
// one is treated as one.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// NewGroup creates a join point for units running on this pool.
func (p *Pool) NewGroup() *Group {
	return &Group{pool: p}
}

// Group joins on exactly the number of units submitted to it. A unit
// failing, or panicking, is an observed outcome rather than an abort:
// Wait always accounts for every submission before returning.
type Group struct {
	pool *Pool
	wg   sync.WaitGroup

	mu        sync.Mutex
	submitted int
	failures  []error
}

// Go submits a unit of work. The unit waits for a pool slot before
// running; panics inside it are recovered and recorded as failures.
func (g *Group) Go(fn func() error) {
	g.mu.Lock()
	g.submitted++
	g.mu.Unlock()

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()

		// Acquire only fails on context cancellation, and this group
		// model has none: units run to completion or fail individually.
		_ = g.pool.sem.Acquire(context.Background(), 1)
		defer g.pool.sem.Release(1)

		defer func() {
			if r := recover(); r != nil {
				g.record(fmt.Errorf("task panicked: %v", r))
			}
		}()

		if err := fn(); err != nil {
			g.record(err)
		}
	}()
}

func (g *Group) record(err error) {
	g.mu.Lock()
	g.failures = append(g.failures, err)
	g.mu.Unlock()
}

// Wait blocks until every submitted unit has completed and returns the
// number of completions alongside any failures observed.
func (g *Group) Wait() (completions int, failures []error) {
	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.submitted, g.failures
}
