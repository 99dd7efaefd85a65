package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/alnah/go-mato/internal/process"
	"github.com/alnah/go-mato/internal/syntax"
)

// ErrDiagram indicates a diagram tool failed on a code block.
var ErrDiagram = errors.New("diagram rendering failed")

// Dialect describes an external tool that renders one code block kind.
type Dialect struct {
	Command string
	Args    []string
	Open    string // written before the block body
	Close   string // written after the block body
}

// Pic renders "pic" code blocks with the troff pic preprocessor.
var Pic = Dialect{Command: "pic", Open: ".PS\n", Close: "\n.PE\n"}

// DefaultDialects maps code block kinds to the tools that render them.
func DefaultDialects() map[string]Dialect {
	return map[string]Dialect{"pic": Pic}
}

// DiagramCache stores rendered fragments across runs.
type DiagramCache interface {
	Get(kind, body string) (string, bool)
	Put(kind, body, rendered string) error
}

// CodeBlockProcessor replaces code blocks of a known diagram kind by the
// fragment the dialect's tool prints. A failing tool does not abort the
// document: the block becomes an error literal and the error goes to
// Diagnostics.
type CodeBlockProcessor struct {
	Runner      process.Runner
	Dialects    map[string]Dialect
	Cache       DiagramCache // optional
	Logger      *log.Logger  // optional, receives tool stderr
	Diagnostics func(error)  // optional
}

var _ Processor = (*CodeBlockProcessor)(nil)

// NewCodeBlockProcessor creates a processor for the default dialects.
func NewCodeBlockProcessor(runner process.Runner) *CodeBlockProcessor {
	if runner == nil {
		runner = &process.ExecRunner{}
	}
	return &CodeBlockProcessor{Runner: runner, Dialects: DefaultDialects()}
}

// Process renders every diagram block of n in source order. It only fails
// when ctx is done.
func (p *CodeBlockProcessor) Process(ctx context.Context, n syntax.Node) (syntax.Node, error) {
	var ctxErr error
	out := syntax.Transform(n, func(n syntax.Node) syntax.Node {
		block, ok := n.(syntax.CodeBlock)
		if !ok || ctxErr != nil {
			return n
		}
		kind, ok := block.Kind.(syntax.Literal)
		if !ok {
			return n
		}
		dialect, ok := p.Dialects[strings.TrimSpace(kind.Text)]
		if !ok {
			return n
		}

		rendered, err := p.render(ctx, kind.Text, dialect, syntax.Text(block.Body))
		if err != nil {
			if ctx.Err() != nil {
				ctxErr = ctx.Err()
				return n
			}
			p.report(err)
			return syntax.Lit(fmt.Sprintf("[%s diagram error: %v]\n", kind.Text, err))
		}
		return syntax.Lit(rendered)
	})
	if ctxErr != nil {
		return nil, ctxErr
	}
	return out, nil
}

func (p *CodeBlockProcessor) render(ctx context.Context, kind string, d Dialect, body string) (string, error) {
	if p.Cache != nil {
		if s, ok := p.Cache.Get(kind, body); ok {
			if p.Logger != nil {
				p.Logger.Debug("diagram cache hit", "kind", kind)
			}
			return s, nil
		}
	}

	input := d.Open + body + d.Close
	stdout, stderr, err := p.Runner.Run(ctx, []byte(input), d.Command, d.Args...)
	diag := strings.TrimSpace(string(stderr))
	if diag != "" && p.Logger != nil {
		p.Logger.Warn("diagram tool output", "kind", kind, "stderr", diag)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDiagram, d.Command, err)
	}
	if diag != "" {
		return "", fmt.Errorf("%w: %s: %s", ErrDiagram, d.Command, firstLine(diag))
	}

	rendered := string(stdout)
	if p.Cache != nil {
		if err := p.Cache.Put(kind, body, rendered); err != nil && p.Logger != nil {
			p.Logger.Warn("diagram cache write failed", "err", err)
		}
	}
	return rendered, nil
}

func (p *CodeBlockProcessor) report(err error) {
	if p.Diagnostics != nil {
		p.Diagnostics(err)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
