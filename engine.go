package mato

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/alnah/go-mato/internal/process"
)

// pdfEngine typesets rendered text into PDF.
type pdfEngine interface {
	ToPDF(ctx context.Context, src string) ([]byte, error)
	Close() error
}

// GroffCommand is the typesetter invoked by the groff engine.
const GroffCommand = "groff"

// groffArgs builds the groff command line for a hyphenation language.
func groffArgs(lang string) []string {
	return []string{"-Tpdf", "-mom", "-m" + lang, "-K", "UTF-8"}
}

// groffEngine pipes a mom program through groff.
type groffEngine struct {
	runner   process.Runner
	language string
	logger   *log.Logger
}

// ToPDF runs groff on src. Warnings groff prints are logged, not
// returned; only a failed run or empty output is an error.
func (e *groffEngine) ToPDF(ctx context.Context, src string) ([]byte, error) {
	stdout, stderr, err := e.runner.Run(ctx, []byte(src), GroffCommand, groffArgs(e.language)...)
	if diag := strings.TrimSpace(string(stderr)); diag != "" && e.logger != nil {
		for _, line := range strings.Split(diag, "\n") {
			e.logger.Warn("groff", "msg", line)
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrPDFGeneration, err)
	}
	if !bytes.HasPrefix(stdout, []byte("%PDF")) {
		return nil, fmt.Errorf("%w: groff produced no PDF", ErrPDFGeneration)
	}
	return stdout, nil
}

func (e *groffEngine) Close() error { return nil }
