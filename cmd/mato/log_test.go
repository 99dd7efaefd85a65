package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

// ---------------------------------------------------------------------------
// TestLogLevel - Verbosity flags
// ---------------------------------------------------------------------------

func TestLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		quiet, verbose bool
		want           log.Level
	}{
		{"default", false, false, log.InfoLevel},
		{"quiet", true, false, log.ErrorLevel},
		{"verbose", false, true, log.DebugLevel},
		{"quiet wins", true, true, log.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := logLevel(tt.quiet, tt.verbose); got != tt.want {
				t.Errorf("logLevel(%v, %v) = %v, want %v", tt.quiet, tt.verbose, got, tt.want)
			}
		})
	}
}

func TestLoggerFromContext(t *testing.T) {
	t.Parallel()

	if got := loggerFromContext(context.Background()); got != log.Default() {
		t.Error("empty context should yield log.Default()")
	}

	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)
	if got := loggerFromContext(withLogger(context.Background(), l)); got != l {
		t.Error("loggerFromContext() did not return the attached logger")
	}
}

func TestProgressDone(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Compiled 2 documents")

	out := buf.String()
	if !strings.Contains(out, "Compiled 2 documents (") {
		t.Errorf("output = %q, want message with elapsed time", out)
	}
}
