package main

// Notes:
// - This file contains test helpers used across command tests.
// - These are not functions under test themselves, but supporting infrastructure.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-mato"
	"github.com/alnah/go-mato/internal/process"
)

// ---------------------------------------------------------------------------
// Mock Implementations - For unit testing
// ---------------------------------------------------------------------------

// fakePDF is what fakeRunner prints for groff.
const fakePDF = "%PDF-1.7 fake"

// fakeRunner stands in for groff and pic. groff answers with fakePDF and
// any other tool echoes its input.
type fakeRunner struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

var _ process.Runner = (*fakeRunner)(nil)

func (f *fakeRunner) Run(ctx context.Context, stdin []byte, name string, _ ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if f.err != nil {
		return nil, nil, f.err
	}
	if name == mato.GroffCommand {
		return []byte(fakePDF), nil, nil
	}
	return stdin, nil, nil
}

func (f *fakeRunner) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// staticCompiler returns a fixed result or error.
type staticCompiler struct {
	result *mato.Result
	err    error
}

func (s *staticCompiler) Compile(_ context.Context, _ mato.Input) (*mato.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

// mockPool hands out one compiler.
type mockPool struct {
	compiler Compiler
	err      error
	size     int

	mu       sync.Mutex
	released int
}

func (m *mockPool) Acquire() (Compiler, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.compiler, nil
}

func (m *mockPool) Release(Compiler) {
	m.mu.Lock()
	m.released++
	m.mu.Unlock()
}

func (m *mockPool) Size() int { return m.size }

// ---------------------------------------------------------------------------
// Environment helpers
// ---------------------------------------------------------------------------

// testEnv returns an environment writing to buffers, with runner as the
// process runner and no terminal attached.
func testEnv(runner process.Runner) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:        time.Now,
		Stdin:      strings.NewReader(""),
		Stdout:     &stdout,
		Stderr:     &stderr,
		IsTerminal: func(io.Writer) bool { return false },
		Runner:     runner,
	}
	return env, &stdout, &stderr
}

// writeFile creates dir/name with content, making parent directories.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// readFile returns the content of path or fails the test.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
