package main

import "sync"

// gridDispatcher executes one data-parallel grid operation at a time across a
// pool of persistent worker goroutines. Rows are partitioned evenly between
// workers; a dispatch returns only after every worker has finished, which is
// the write-then-read barrier between consecutive pipeline dispatches. There
// is no cross-cell synchronization inside a dispatch.
type gridDispatcher struct {
	mu      sync.Mutex
	cond    *sync.Cond
	workers int
	height  int
	step    int
	pending int
	fn      func(y0, y1 int)
}

// newGridDispatcher starts the worker goroutines. The pool lives for the rest
// of the run; a simulation owns exactly one dispatcher.
func newGridDispatcher(height, workers int) *gridDispatcher {
	if workers < 1 {
		workers = 1
	}
	if workers > height {
		workers = height
	}
	d := &gridDispatcher{
		workers: workers,
		height:  height,
	}
	d.cond = sync.NewCond(&d.mu)
	for i := 0; i < workers; i++ {
		go d.workerLoop(i)
	}
	return d
}

// rowRange returns the half-open row interval assigned to a worker.
func (d *gridDispatcher) rowRange(index int) (int, int) {
	rowsPer := (d.height + d.workers - 1) / d.workers
	y0 := index * rowsPer
	if y0 > d.height {
		y0 = d.height
	}
	y1 := y0 + rowsPer
	if y1 > d.height {
		y1 = d.height
	}
	return y0, y1
}

func (d *gridDispatcher) workerLoop(index int) {
	lastStep := 0
	d.mu.Lock()
	for {
		for d.step == lastStep {
			d.cond.Wait()
		}
		lastStep = d.step
		fn := d.fn
		d.mu.Unlock()

		y0, y1 := d.rowRange(index)
		if y0 < y1 {
			fn(y0, y1)
		}

		d.mu.Lock()
		d.pending--
		if d.pending == 0 {
			d.cond.Broadcast()
		}
	}
}

// run applies fn to every grid row and blocks until all workers complete.
func (d *gridDispatcher) run(fn func(y0, y1 int)) {
	d.mu.Lock()
	d.fn = fn
	d.pending = d.workers
	d.step++
	d.cond.Broadcast()
	for d.pending > 0 {
		d.cond.Wait()
	}
	d.mu.Unlock()
}
