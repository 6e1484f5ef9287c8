// Package parallel provides the worker pool used by the frame transform.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a fixed set of goroutines for chunked per-element work.
//
// The transform stage splits a field into index ranges and runs the colormap
// over the ranges concurrently. Workers pull from a single shared queue;
// per-frame work items are coarse enough that queue contention is not a
// concern.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	queue   chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewWorkerPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &WorkerPool{
		workers: workers,
		queue:   make(chan func(), workers*4),
		done:    make(chan struct{}),
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int { return p.workers }

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			// Drain remaining work before exiting.
			for {
				select {
				case work := <-p.queue:
					work()
				default:
					return
				}
			}
		case work := <-p.queue:
			work()
		}
	}
}

// For runs fn over [0, n) split into one contiguous range per worker and
// waits for completion. Ranges below minChunk elements run inline on the
// caller, avoiding dispatch overhead for small fields.
//
// fn must not panic; a panicking chunk takes the whole process down, same as
// a panic on the caller's goroutine.
func (p *WorkerPool) For(n, minChunk int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if n <= minChunk || p.workers == 1 || !p.running.Load() {
		fn(0, n)
		return
	}

	chunk := (n + p.workers - 1) / p.workers
	if chunk < minChunk {
		chunk = minChunk
	}

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		lo, hi := lo, hi
		select {
		case p.queue <- func() { defer wg.Done(); fn(lo, hi) }:
		case <-p.done:
			// Pool is closing; run inline so the caller still completes.
			fn(lo, hi)
			wg.Done()
		}
	}
	wg.Wait()
}

// Close stops the workers after the queued work finishes.
// Safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}
