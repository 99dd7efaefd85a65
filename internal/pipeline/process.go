package pipeline

import (
	"context"

	"github.com/alnah/go-mato/internal/syntax"
)

// Processor rewrites a tree. Implementations must preserve sibling order.
type Processor interface {
	Process(ctx context.Context, n syntax.Node) (syntax.Node, error)
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, n syntax.Node) (syntax.Node, error)

// Process calls f(ctx, n).
func (f ProcessorFunc) Process(ctx context.Context, n syntax.Node) (syntax.Node, error) {
	return f(ctx, n)
}

// Identity returns its input unchanged.
var Identity Processor = ProcessorFunc(func(_ context.Context, n syntax.Node) (syntax.Node, error) {
	return n, nil
})

type chain struct {
	first, second Processor
}

// Chain composes two processors, applying first then second.
// The context is checked between the two stages.
func Chain(first, second Processor) Processor {
	return &chain{first: first, second: second}
}

func (c *chain) Process(ctx context.Context, n syntax.Node) (syntax.Node, error) {
	out, err := c.first.Process(ctx, n)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.second.Process(ctx, out)
}

// Options configures DefaultChain.
type Options struct {
	Escaping        Escaping
	OldStyleFigures bool
	SourceDir       string
	Diagrams        *CodeBlockProcessor // nil disables diagram rendering
}

// DefaultChain builds Canonicalize, then ImageConverter, then
// CodeBlockProcessor. Bodies of diagram blocks skip escaping, since only
// their tool reads them.
func DefaultChain(opts Options) Processor {
	canon := &Canonicalizer{Escaping: opts.Escaping, OldStyleFigures: opts.OldStyleFigures}
	if opts.Diagrams != nil {
		canon.Verbatim = make(map[string]bool, len(opts.Diagrams.Dialects))
		for kind := range opts.Diagrams.Dialects {
			canon.Verbatim[kind] = true
		}
	}
	var p Processor = canon
	p = Chain(p, &ImageConverter{SourceDir: opts.SourceDir})
	if opts.Diagrams != nil {
		p = Chain(p, opts.Diagrams)
	}
	return p
}
