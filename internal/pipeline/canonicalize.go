package pipeline

import (
	"context"
	"strings"

	"github.com/alnah/go-mato/internal/syntax"
)

// Escaping selects the target syntax glyph substitutions and preformatted
// escaping are written for.
type Escaping int

const (
	// EscapeTroff applies troff glyph names and escapes. Used by the mom,
	// man and mandoc backends.
	EscapeTroff Escaping = iota
	// EscapeNone leaves text untouched.
	EscapeNone
)

// style is the enclosing inline style threaded down the rewrite.
type style int

const (
	styleNone style = iota
	styleBold
	styleItalic
	styleBoldItalic
)

// scope carries the top-down state of a rewrite.
type scope struct {
	style     style
	figures   bool // old-style figure substitution allowed here
	smallCaps bool // inside SmallCaps
}

var oldStyleFigures = [10]string{
	`\[zero.oldstyle]`, `\[one.oldstyle]`, `\[two.oldstyle]`, `\[three.oldstyle]`, `\[four.oldstyle]`,
	`\[five.oldstyle]`, `\[six.oldstyle]`, `\[seven.oldstyle]`, `\[eight.oldstyle]`, `\[nine.oldstyle]`,
}

var preformattedEscaper = strings.NewReplacer(`\`, `\\`, "^", `\[ha]`, "\n.", "\n\\&.")

// Canonicalizer normalizes a freshly parsed tree.
//
// After Process no Empty node remains except as the body of an empty
// Document, and Bold never directly wraps Italic (or the reverse): such
// nestings, including nestings separated by other nodes, become BoldItalic.
type Canonicalizer struct {
	Escaping        Escaping
	OldStyleFigures bool

	// Verbatim names code block kinds whose bodies are left untouched
	// because a diagram tool reads them, not the renderer. A chain that
	// sets it must run a CodeBlockProcessor for those kinds.
	Verbatim map[string]bool
}

var _ Processor = (*Canonicalizer)(nil)

// Process rewrites n. It never fails.
func (c *Canonicalizer) Process(_ context.Context, n syntax.Node) (syntax.Node, error) {
	return c.rewrite(n, scope{figures: true}), nil
}

// child rewrites a sub-tree that must not be left Empty.
func (c *Canonicalizer) child(n syntax.Node, sc scope) syntax.Node {
	out := c.rewrite(n, sc)
	if syntax.IsEmpty(out) {
		return syntax.Lit("")
	}
	return out
}

// keep returns n unchanged unless it is Empty.
func keep(n syntax.Node) syntax.Node {
	if syntax.IsEmpty(n) {
		return syntax.Lit("")
	}
	return n
}

func (c *Canonicalizer) rewrite(n syntax.Node, sc scope) syntax.Node {
	switch v := n.(type) {
	case nil, syntax.Empty:
		return syntax.Empty{}
	case syntax.Document:
		v.Body = c.rewrite(v.Body, sc)
		return v
	case syntax.Cat:
		return syntax.Concat(c.rewrite(v.Left, sc), c.rewrite(v.Right, sc))
	case syntax.Literal:
		return syntax.Lit(c.text(v.Text, sc))
	case syntax.Preformatted:
		if c.Escaping == EscapeTroff {
			return syntax.Preformatted{Text: preformattedEscaper.Replace(v.Text)}
		}
		return v
	case syntax.Bold:
		return c.bold(v, sc)
	case syntax.Italic:
		return c.italic(v, sc)
	case syntax.BoldItalic:
		if sc.style == styleBoldItalic {
			return c.rewrite(v.Child, sc)
		}
		sc.style = styleBoldItalic
		return syntax.BoldItalic{Child: c.child(v.Child, sc)}
	case syntax.SmallCaps:
		sc.smallCaps = true
		return syntax.SmallCaps{Child: c.child(v.Child, sc)}
	case syntax.Heading:
		sc.figures = false
		v.Title = c.child(v.Title, sc)
		return v
	case syntax.InlineCode:
		sc.figures = false
		return syntax.InlineCode{Child: c.child(v.Child, sc)}
	case syntax.Color:
		return syntax.Color{Child: keep(v.Child)}
	case syntax.CodeBlock:
		if kind, ok := v.Kind.(syntax.Literal); ok && c.Verbatim[strings.TrimSpace(kind.Text)] {
			return syntax.CodeBlock{Kind: kind, Body: keep(v.Body)}
		}
		sc.figures = false
		return syntax.CodeBlock{Kind: keep(v.Kind), Body: c.child(v.Body, sc)}
	case syntax.HyperRef:
		return syntax.HyperRef{Text: c.child(v.Text, sc), URL: keep(v.URL)}
	case syntax.DocRef:
		sc.figures = false
		v.Text = c.child(v.Text, sc)
		return v
	case syntax.Image:
		return syntax.Image{Caption: c.child(v.Caption, sc), Path: keep(v.Path), Size: c.size(v.Size)}
	case syntax.ImageSizeSpec:
		return c.size(v)
	case syntax.List:
		items := c.rewrite(v.Items, sc)
		if syntax.IsEmpty(items) {
			return syntax.Empty{}
		}
		v.Items = items
		return v
	case syntax.ListItem:
		content := c.rewrite(v.Content, sc)
		if syntax.IsEmpty(content) {
			return syntax.Empty{}
		}
		v.Content = content
		return v
	case syntax.MetaDataBlock:
		items := c.rewrite(v.Items, sc)
		if syntax.IsEmpty(items) {
			return syntax.Empty{}
		}
		return syntax.MetaDataBlock{Items: items}
	}

	kids := syntax.Children(n)
	if len(kids) == 0 {
		return n
	}
	out := make([]syntax.Node, len(kids))
	for i, k := range kids {
		out[i] = c.child(k, sc)
	}
	return syntax.WithChildren(n, out)
}

func (c *Canonicalizer) bold(v syntax.Bold, sc scope) syntax.Node {
	if inner, ok := v.Child.(syntax.Italic); ok {
		return c.rewrite(syntax.BoldItalic{Child: inner.Child}, sc)
	}
	switch sc.style {
	case styleBold, styleBoldItalic:
		return c.rewrite(v.Child, sc)
	case styleItalic:
		sc.style = styleNone
		return c.rewrite(syntax.BoldItalic{Child: v.Child}, sc)
	}
	sc.style = styleBold
	return collapse(syntax.Bold{Child: c.child(v.Child, sc)})
}

func (c *Canonicalizer) italic(v syntax.Italic, sc scope) syntax.Node {
	if inner, ok := v.Child.(syntax.Bold); ok {
		return c.rewrite(syntax.BoldItalic{Child: inner.Child}, sc)
	}
	switch sc.style {
	case styleItalic, styleBoldItalic:
		return c.rewrite(v.Child, sc)
	case styleBold:
		sc.style = styleNone
		return c.rewrite(syntax.BoldItalic{Child: v.Child}, sc)
	}
	sc.style = styleItalic
	return collapse(syntax.Italic{Child: c.child(v.Child, sc)})
}

// collapse drops a Bold or Italic whose whole content became BoldItalic.
func collapse(n syntax.Node) syntax.Node {
	var child syntax.Node
	switch v := n.(type) {
	case syntax.Bold:
		child = v.Child
	case syntax.Italic:
		child = v.Child
	default:
		return n
	}
	if bi, ok := child.(syntax.BoldItalic); ok {
		return bi
	}
	return n
}

func (c *Canonicalizer) size(n syntax.Node) syntax.Node {
	spec, ok := n.(syntax.ImageSizeSpec)
	if !ok {
		return keep(n)
	}
	return syntax.ImageSizeSpec{Width: keep(spec.Width), Height: keep(spec.Height)}
}

// text applies the glyph substitutions allowed in sc.
func (c *Canonicalizer) text(s string, sc scope) string {
	if c.Escaping != EscapeTroff {
		return s
	}
	if sc.smallCaps {
		return smallCapsGlyphs(s)
	}
	if sc.figures && c.OldStyleFigures {
		return oldStyleGlyphs(s)
	}
	return s
}

func smallCapsGlyphs(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 4)
	for _, r := range s {
		if r < 0x80 && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			b.WriteString(`\[`)
			b.WriteRune(r)
			b.WriteString(`.sc]`)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func oldStyleGlyphs(s string) string {
	if !strings.ContainsAny(s, "0123456789") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteString(oldStyleFigures[r-'0'])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
