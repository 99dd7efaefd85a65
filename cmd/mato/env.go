package main

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/alnah/go-mato/internal/process"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, terminal detection and the external process runner.
type Environment struct {
	Now    func() time.Time
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// IsTerminal reports whether w is attached to a terminal. Binary
	// output is refused on terminals.
	IsTerminal func(w io.Writer) bool

	// Runner executes groff and diagram tools. Nil means the real
	// executables on PATH.
	Runner process.Runner
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:        time.Now,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		IsTerminal: isTerminal,
	}
}

// isTerminal reports whether w is a file descriptor attached to a
// terminal, Cygwin and MSYS included.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
