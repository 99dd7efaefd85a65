package mato

import (
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps compilers, each of which may hold a browser or
	// spawn groff.
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for groff and Chrome child processes.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("compiler pool closed")

// CompilerPool manages Compiler instances for parallel compilation.
// Each compiler owns its PDF engine, so browser-backed compilers run in
// parallel. Compilers are created lazily on first acquire to avoid
// startup delay.
type CompilerPool struct {
	size      int
	opts      []Option
	compilers []*Compiler
	sem       chan *Compiler
	mu        sync.Mutex
	created   int
	closed    bool
}

// NewCompilerPool creates a pool with capacity for n compilers built
// with opts.
func NewCompilerPool(n int, opts ...Option) *CompilerPool {
	if n < 1 {
		n = 1
	}

	return &CompilerPool{
		size:      n,
		opts:      opts,
		compilers: make([]*Compiler, 0, n),
		sem:       make(chan *Compiler, n),
	}
}

// Acquire gets a compiler from the pool, creating one if needed.
// Blocks if all compilers are in use.
func (p *CompilerPool) Acquire() (*Compiler, error) {
	select {
	case c, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return c, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create new compiler outside the lock
		c, err := NewCompiler(p.opts...)
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		p.compilers = append(p.compilers, c)
		p.mu.Unlock()

		return c, nil
	}
	p.mu.Unlock()

	c, ok := <-p.sem
	if !ok {
		return nil, ErrPoolClosed
	}
	return c, nil
}

// Release returns a compiler to the pool.
func (p *CompilerPool) Release(c *Compiler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	// Never blocks: at most size compilers exist.
	p.sem <- c
}

// Close releases all compilers.
// Returns an aggregated error if multiple compilers fail to close.
func (p *CompilerPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	compilers := p.compilers
	p.mu.Unlock()

	var errs []error
	for _, c := range compilers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *CompilerPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers.
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
