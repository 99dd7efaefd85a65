package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-mato/internal/syntax"
)

// ErrUnsupportedNode indicates a tree shape a backend cannot render.
var ErrUnsupportedNode = errors.New("unsupported node")

// Renderer turns a processed document into backend text.
type Renderer interface {
	Render(doc syntax.Document) (string, error)
}

// unsupported is the panic value raised deep inside a writer.
type unsupported struct {
	node syntax.Node
}

func fail(n syntax.Node) {
	panic(unsupported{node: n})
}

// recoverUnsupported converts an unsupported panic into ErrUnsupportedNode.
// It must be deferred directly.
func recoverUnsupported(err *error) {
	r := recover()
	if r == nil {
		return
	}
	u, ok := r.(unsupported)
	if !ok {
		panic(r)
	}
	*err = fmt.Errorf("%w: %T", ErrUnsupportedNode, u.node)
}

// MetaData returns the meta-data items of doc. A repeated key keeps its
// last value.
func MetaData(doc syntax.Document) map[string]string {
	meta := make(map[string]string)
	syntax.Walk(doc, func(n syntax.Node) bool {
		if item, ok := n.(syntax.MetaDataItem); ok {
			meta[strings.ToLower(strings.TrimSpace(item.Key))] = item.Value
		}
		return true
	})
	return meta
}

// Title returns the "title" meta-data value of doc, or "".
func Title(doc syntax.Document) string {
	return MetaData(doc)["title"]
}

// troffWriter tracks whether output sits at the start of a line so
// requests always begin one.
type troffWriter struct {
	b *strings.Builder
}

func newTroffWriter() troffWriter {
	return troffWriter{b: new(strings.Builder)}
}

func (w troffWriter) text(s string) {
	w.b.WriteString(s)
}

func (w troffWriter) bol() bool {
	s := w.b.String()
	return s == "" || s[len(s)-1] == '\n'
}

// newline ends the current line unless it is empty.
func (w troffWriter) newline() {
	if !w.bol() {
		w.b.WriteByte('\n')
	}
}

// request writes s on a line of its own.
func (w troffWriter) request(s string) {
	w.newline()
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

// block writes preformatted text followed by a line end.
func (w troffWriter) block(s string) {
	w.b.WriteString(s)
	w.newline()
}

// troffEscapeLit renders an EscapeLit for the troff backends.
func troffEscapeLit(s string) string {
	if s == "." {
		return `\&.`
	}
	return s
}
