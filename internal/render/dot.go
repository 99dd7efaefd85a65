package render

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-graphviz"

	"github.com/alnah/go-mato/internal/syntax"
)

// maxLabelRunes bounds the text shown inside a DOT node.
const maxLabelRunes = 40

// Dot renders the tree itself as a Graphviz digraph, one box per node.
type Dot struct{}

var _ Renderer = (*Dot)(nil)

// Render returns the DOT source for doc.
func (d *Dot) Render(doc syntax.Document) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("digraph tree {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontname=\"monospace\"];\n")
	buf.WriteString("\n")

	id := 0
	var visit func(n syntax.Node) int
	visit = func(n syntax.Node) int {
		self := id
		id++
		fmt.Fprintf(&buf, "  n%d [label=%s];\n", self, strconv.Quote(dotLabel(n)))
		for _, child := range syntax.Children(n) {
			if child == nil {
				continue
			}
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", self, visit(child))
		}
		return self
	}
	visit(doc)

	buf.WriteString("}\n")
	return buf.String(), nil
}

func dotLabel(n syntax.Node) string {
	name := strings.TrimPrefix(fmt.Sprintf("%T", n), "syntax.")
	switch v := n.(type) {
	case syntax.Document:
		return name + " " + v.Type.String()
	case syntax.Literal:
		return name + "\n" + clip(v.Text)
	case syntax.Preformatted:
		return name + "\n" + clip(v.Text)
	case syntax.EscapeLit:
		return name + "\n" + v.Text
	case syntax.PassThrough:
		return name + "\n" + clip(v.Text)
	case syntax.Heading:
		if v.Name != "" {
			return fmt.Sprintf("%s %d /%s/", name, v.Level, v.Name)
		}
		return fmt.Sprintf("%s %d", name, v.Level)
	case syntax.List:
		return fmt.Sprintf("%s %d", name, v.Level)
	case syntax.ListItem:
		return fmt.Sprintf("%s %d", name, v.Level)
	case syntax.MetaDataItem:
		return name + "\n" + clip(v.Key+": "+v.Value)
	case syntax.DropCap:
		return fmt.Sprintf("%s %c %d", name, v.Char, v.Span)
	case syntax.DocRef:
		return name + " #" + v.Target
	}
	return name
}

func clip(s string) string {
	if utf8.RuneCountInString(s) <= maxLabelRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxLabelRunes-1]) + "…"
}

// SVG lays out DOT source with the embedded Graphviz library.
func SVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
