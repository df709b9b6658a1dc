// Package parallel runs row bands of CPU compositing work across a fixed
// set of goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// MinBandRows is the smallest band handed to a worker. Ranges shorter than
// two bands run inline on the caller.
const MinBandRows = 16

// WorkerPool is a pool of goroutines with per-worker queues. Idle workers
// steal from their neighbours so that uneven bands (a warp that only covers
// part of the canvas) still balance.
//
// WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
	next    atomic.Uint32
}

// NewWorkerPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	size := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), size)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

var shared = sync.OnceValue(func() *WorkerPool { return NewWorkerPool(0) })

// Default returns the process-wide pool, starting it on first use.
func Default() *WorkerPool { return shared() }

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case <-p.done:
			drain(own)
			return
		case work := <-own:
			work()
			continue
		default:
		}
		if work := p.steal(id); work != nil {
			work()
			continue
		}
		select {
		case <-p.done:
			drain(own)
			return
		case work := <-own:
			work()
		}
	}
}

func drain(queue chan func()) {
	for {
		select {
		case work := <-queue:
			work()
		default:
			return
		}
	}
}

func (p *WorkerPool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case work := <-p.queues[i]:
			return work
		default:
		}
	}
	return nil
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int { return p.workers }

// IsRunning reports whether the pool still accepts work.
func (p *WorkerPool) IsRunning() bool { return p.running.Load() }

// ExecuteAll runs every function in work and waits for all of them.
// On a closed pool the work runs on the calling goroutine.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}
	if !p.running.Load() || len(work) == 1 {
		for _, fn := range work {
			fn()
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(work))
	start := int(p.next.Add(1))
	for i, fn := range work {
		task := func() {
			defer wg.Done()
			fn()
		}
		select {
		case p.queues[(start+i)%p.workers] <- task:
		default:
			// Queue full: run on the caller.
			task()
		}
	}
	wg.Wait()
}

// Rows splits [y0, y1) into contiguous bands and calls fn once per band,
// returning when every band is done. fn must only touch rows inside its
// own band.
func (p *WorkerPool) Rows(y0, y1 int, fn func(y0, y1 int)) {
	n := y1 - y0
	if n <= 0 {
		return
	}
	bands := min(p.workers*2, n/MinBandRows)
	if bands < 2 || !p.running.Load() {
		fn(y0, y1)
		return
	}

	work := make([]func(), 0, bands)
	for i := range bands {
		a := y0 + n*i/bands
		b := y0 + n*(i+1)/bands
		work = append(work, func() { fn(a, b) })
	}
	p.ExecuteAll(work)
}

// Close stops the workers after draining queued work. It is safe to call
// more than once.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}
