package main

// Notes:
// - exitCodeFor: we test the sentinel errors of the mato, config and
//   cache packages plus the CLI's own, and wrapped errors to verify the
//   errors.Is() chain.
// - Exit code constants: we verify Unix conventions (0=success, 1=general, 2=usage)
//   and custom codes are below 126.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/alnah/go-mato"
	"github.com/alnah/go-mato/internal/cache"
	"github.com/alnah/go-mato/internal/config"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// Engine errors (exit 4)
		{"pdf generation", mato.ErrPDFGeneration, ExitEngine},
		{"browser connect", mato.ErrBrowserConnect, ExitEngine},
		{"page load", mato.ErrPageLoad, ExitEngine},
		{"tool not found", mato.ErrToolNotFound, ExitEngine},
		{"wrapped groff failure", fmt.Errorf("%w: %w", mato.ErrPDFGeneration, mato.ErrToolNotFound), ExitEngine},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"read source", ErrReadSource, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"create output dir", ErrCreateOutputDir, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"cache open", cache.ErrCacheOpen, ExitIO},
		{"wrapped file not exist", fmt.Errorf("reading: %w", os.ErrNotExist), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"usage", ErrUsage, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"empty config name", config.ErrEmptyConfigName, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid value", config.ErrInvalidValue, ExitUsage},
		{"invalid backend", mato.ErrInvalidBackend, ExitUsage},
		{"invalid engine", mato.ErrInvalidEngine, ExitUsage},
		{"invalid language", mato.ErrInvalidLanguage, ExitUsage},
		{"syntax", mato.ErrSyntax, ExitUsage},
		{"parse error", &mato.ParseError{Line: 1, Offset: 6, Msg: "unclosed"}, ExitUsage},
		{"preamble", mato.ErrPreambleRead, ExitUsage},
		{"style", mato.ErrStyleLoad, ExitUsage},
		{"extension", ErrInvalidExtension, ExitUsage},
		{"workers", ErrInvalidWorkerCount, ExitUsage},
		{"terminal", ErrTerminalOutput, ExitUsage},
		{"wrapped config parse", fmt.Errorf("loading: %w", config.ErrConfigParse), ExitUsage},

		// General errors (exit 1)
		{"unknown error", errors.New("something unexpected"), ExitGeneral},
		{"pool closed", mato.ErrPoolClosed, ExitGeneral},
		{"wrapped unknown", fmt.Errorf("context: %w", errors.New("unknown")), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 || ExitGeneral != 1 || ExitUsage != 2 {
		t.Error("exit codes must follow Unix conventions: 0=success, 1=general, 2=usage")
	}
	for _, code := range []int{ExitIO, ExitEngine} {
		if code >= 126 {
			t.Errorf("exit code %d collides with shell-reserved codes", code)
		}
	}
}

func TestUsageError(t *testing.T) {
	t.Parallel()

	err := usageError("bad %s", "thing")
	if !errors.Is(err, ErrUsage) {
		t.Errorf("usageError() = %v, want ErrUsage", err)
	}
	if err.Error() != "usage error: bad thing" {
		t.Errorf("usageError() = %q", err.Error())
	}
}
