package macro

import (
	"sync"

	"go.starlark.net/starlark"
)

// threadPool recycles Starlark threads between macro calls.
type threadPool struct {
	mu      sync.Mutex
	threads []*starlark.Thread
	maxSize int
}

func newThreadPool(maxSize int) *threadPool {
	if maxSize <= 0 {
		maxSize = 8
	}
	return &threadPool{
		threads: make([]*starlark.Thread, 0, maxSize),
		maxSize: maxSize,
	}
}

// get retrieves a thread from the pool or creates a new one.
// The thread name is used for error reporting.
func (p *threadPool) get(name string) *starlark.Thread {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.threads); n > 0 {
		thread := p.threads[n-1]
		p.threads = p.threads[:n-1]
		thread.Name = name
		return thread
	}
	return &starlark.Thread{
		Name:  name,
		Print: func(_ *starlark.Thread, _ string) {},
	}
}

// put returns a thread to the pool. If the pool is full, the thread is
// discarded.
func (p *threadPool) put(thread *starlark.Thread) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.threads) < p.maxSize {
		thread.Name = ""
		thread.SetLocal(callKey, nil)
		p.threads = append(p.threads, thread)
	}
}

func (p *threadPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.threads)
}
