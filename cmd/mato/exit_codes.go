package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alnah/go-mato"
	"github.com/alnah/go-mato/internal/cache"
	"github.com/alnah/go-mato/internal/config"
)

// Exit codes for the mato CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful compilation
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, source syntax or validation
	ExitIO      = 3 // File not found, permission denied
	ExitEngine  = 4 // groff, pic or Chrome errors
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("usage error")

// usageError returns an ErrUsage with a formatted message.
func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Engine errors (exit 4)
	if errors.Is(err, mato.ErrPDFGeneration) ||
		errors.Is(err, mato.ErrBrowserConnect) ||
		errors.Is(err, mato.ErrPageLoad) ||
		errors.Is(err, mato.ErrToolNotFound) {
		return ExitEngine
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadSource) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrCreateOutputDir) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, cache.ErrCacheOpen) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, mato.ErrInvalidBackend) ||
		errors.Is(err, mato.ErrInvalidEngine) ||
		errors.Is(err, mato.ErrInvalidLanguage) ||
		errors.Is(err, mato.ErrSyntax) ||
		errors.Is(err, mato.ErrPreambleRead) ||
		errors.Is(err, mato.ErrStyleLoad) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrTerminalOutput) {
		return ExitUsage
	}

	return ExitGeneral
}
