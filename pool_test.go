package mato

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

// Compile-time interface check.
var _ interface {
	Acquire() (*Compiler, error)
	Release(*Compiler)
	Size() int
	Close() error
} = (*CompilerPool)(nil)

func mustAcquire(t *testing.T, pool *CompilerPool) *Compiler {
	t.Helper()
	c, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}
	return c
}

// ---------------------------------------------------------------------------
// TestResolvePoolSize - Worker count resolution
// ---------------------------------------------------------------------------

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{name: "explicit takes priority", workers: 4, want: 4},
		{name: "explicit=1 for sequential", workers: 1, want: 1},
		{name: "explicit can exceed max", workers: 100, want: 100},
		{name: "zero uses auto calculation", workers: 0, want: min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize)},
		{name: "negative uses auto calculation", workers: -5, want: min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ResolvePoolSize(tt.workers); got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestCompilerPool - Lazy creation, reuse and shutdown
// ---------------------------------------------------------------------------

func TestCompilerPool_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool := NewCompilerPool(2, WithBackend(BackendMom))
	defer pool.Close()

	c1 := mustAcquire(t, pool)
	c2 := mustAcquire(t, pool)
	if c1 == c2 {
		t.Error("expected different compiler instances")
	}

	pool.Release(c1)
	c3 := mustAcquire(t, pool)
	if c3 != c1 {
		t.Error("expected to get back released compiler")
	}

	pool.Release(c2)
	pool.Release(c3)
}

func TestCompilerPool_CompilersUseOptions(t *testing.T) {
	t.Parallel()

	pool := NewCompilerPool(1, WithBackend(BackendTeX))
	defer pool.Close()

	c := mustAcquire(t, pool)
	defer pool.Release(c)

	res, err := c.Compile(context.Background(), Input{Source: []byte("*x*")})
	if err != nil {
		t.Fatalf("Compile() unexpected error: %v", err)
	}
	if string(res.Output) != `\textbf{x}` {
		t.Errorf("Output = %q, want TeX", res.Output)
	}
}

func TestCompilerPool_InvalidOptions(t *testing.T) {
	t.Parallel()

	pool := NewCompilerPool(1, WithBackend("docx"))
	defer pool.Close()

	if _, err := pool.Acquire(); !errors.Is(err, ErrInvalidBackend) {
		t.Fatalf("Acquire() error = %v, want ErrInvalidBackend", err)
	}
	// The failed slot is given back.
	if _, err := pool.Acquire(); !errors.Is(err, ErrInvalidBackend) {
		t.Fatalf("second Acquire() error = %v, want ErrInvalidBackend", err)
	}
}

func TestCompilerPool_Size(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		size int
		want int
	}{
		{"size 1", 1, 1},
		{"size 4", 4, 4},
		{"size 0 becomes 1", 0, 1},
		{"negative becomes 1", -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pool := NewCompilerPool(tt.size)
			defer pool.Close()

			if got := pool.Size(); got != tt.want {
				t.Errorf("Size() = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestCompilerPool_HighContention verifies the pool remains deadlock-free
// with many more goroutines than compilers.
func TestCompilerPool_HighContention(t *testing.T) {
	t.Parallel()

	pool := NewCompilerPool(2, WithBackend(BackendMom))
	defer pool.Close()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 10 {
				c, err := pool.Acquire()
				if err != nil {
					t.Error(err)
					return
				}
				time.Sleep(time.Duration(j%3) * time.Millisecond)
				pool.Release(c)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(30 * time.Second)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		t.Fatal("high contention test timed out - possible deadlock")
	}
}

func TestCompilerPool_Close(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{}
	pool := NewCompilerPool(2, withPDFEngine(engine))

	c := mustAcquire(t, pool)
	if err := pool.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !engine.closed {
		t.Error("compiler engine not closed")
	}

	// Release after close is a no-op.
	pool.Release(c)

	if _, err := pool.Acquire(); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire() after Close error = %v, want ErrPoolClosed", err)
	}
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
