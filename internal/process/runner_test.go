package process_test

// Notes:
// - ExecRunner tests rely on POSIX "cat", "sh" and "sleep" and are skipped
//   when those are missing (e.g. on Windows CI runners).

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alnah/go-mato/internal/process"
)

func requireTool(t *testing.T, name string) {
	t.Helper()
	if !process.Available(name) {
		t.Skipf("%s not available", name)
	}
}

// ---------------------------------------------------------------------------
// TestExecRunner_Run - Real subprocess execution
// ---------------------------------------------------------------------------

func TestExecRunner_Run_Stdin(t *testing.T) {
	t.Parallel()
	requireTool(t, "cat")

	r := &process.ExecRunner{}
	stdout, stderr, err := r.Run(context.Background(), []byte(".PS\nbox\n.PE\n"), "cat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(stdout) != ".PS\nbox\n.PE\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if len(stderr) != 0 {
		t.Errorf("stderr = %q, want empty", stderr)
	}
}

func TestExecRunner_Run_Stderr(t *testing.T) {
	t.Parallel()
	requireTool(t, "sh")

	r := &process.ExecRunner{}
	_, stderr, err := r.Run(context.Background(), nil, "sh", "-c", "echo warn >&2; exit 3")
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if string(stderr) != "warn\n" {
		t.Errorf("stderr = %q, want %q", stderr, "warn\n")
	}
}

func TestExecRunner_Run_NotFound(t *testing.T) {
	t.Parallel()

	r := &process.ExecRunner{}
	_, _, err := r.Run(context.Background(), nil, "mato-no-such-tool-xyz")
	if !errors.Is(err, process.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestExecRunner_Run_Cancelled(t *testing.T) {
	t.Parallel()
	requireTool(t, "sleep")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	r := &process.ExecRunner{}
	start := time.Now()
	_, _, err := r.Run(ctx, nil, "sleep", "10")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("Run did not return promptly after cancellation")
	}
}
