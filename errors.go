package mato

import (
	"errors"

	"github.com/alnah/go-mato/internal/parser"
	"github.com/alnah/go-mato/internal/pipeline"
	"github.com/alnah/go-mato/internal/process"
	"github.com/alnah/go-mato/internal/render"
)

// Sentinel errors for library operations.
var (
	ErrInvalidBackend  = errors.New("invalid backend")
	ErrInvalidEngine   = errors.New("invalid engine")
	ErrInvalidLanguage = errors.New("invalid language")
	ErrPDFGeneration   = errors.New("PDF generation failed")
	ErrBrowserConnect  = errors.New("failed to connect to browser")
	ErrPageLoad        = errors.New("failed to load page")
	ErrInternal        = errors.New("internal error")

	// Asset loading errors.
	ErrPreambleRead = errors.New("cannot read preamble")
	ErrStyleLoad    = errors.New("cannot load style")
)

// Errors raised by the compilation stages, re-exported so callers need
// not import internal packages.
var (
	// ErrSyntax wraps every parse failure. errors.As with *ParseError
	// recovers the position.
	ErrSyntax = parser.ErrSyntax

	// ErrDiagram marks a diagram block that failed to render. It only
	// appears in Result.Warnings.
	ErrDiagram = pipeline.ErrDiagram

	// ErrUnsupportedNode means a backend met a node it cannot render.
	ErrUnsupportedNode = render.ErrUnsupportedNode

	// ErrToolNotFound means groff or a diagram tool is not on PATH.
	ErrToolNotFound = process.ErrNotFound
)

// ParseError locates a syntax error in the source.
type ParseError = parser.ParseError
