package render

import (
	"strings"

	"github.com/alnah/go-mato/internal/syntax"
)

// Man renders documents as man(7) pages. The level-0 heading is the .TH
// line and level-1 headings are sections. Inline code in a SYNOPSIS
// section becomes a .SY synopsis block.
type Man struct{}

var _ Renderer = (*Man)(nil)

// Render returns the man page for doc.
func (m *Man) Render(doc syntax.Document) (out string, err error) {
	defer recoverUnsupported(&err)

	w := &manWriter{troffWriter: newTroffWriter()}
	w.render(doc.Body)
	w.closeSynopsis()
	return w.b.String(), nil
}

type manWriter struct {
	troffWriter
	inSynopsis   bool
	synopsisOpen bool // a .SY block awaits its .YS
}

func (w *manWriter) sub(n syntax.Node) string {
	saved := w.b
	w.b = new(strings.Builder)
	w.render(n)
	s := w.b.String()
	w.b = saved
	return s
}

func (w *manWriter) closeSynopsis() {
	if w.synopsisOpen {
		w.request(".YS")
		w.synopsisOpen = false
	}
}

func (w *manWriter) render(n syntax.Node) {
	switch v := n.(type) {
	case nil, syntax.Empty, syntax.VSpace, syntax.Color, syntax.ChapterMark, syntax.ImageSizeSpec:
	case syntax.Cat:
		w.render(v.Left)
		w.render(v.Right)
	case syntax.Literal:
		w.text(v.Text)
	case syntax.Preformatted:
		w.text(v.Text)
	case syntax.PassThrough:
		w.text(v.Text)
	case syntax.EscapeLit:
		w.text(troffEscapeLit(v.Text))
	case syntax.DropCap:
		w.text(string(v.Char))
	case syntax.Paragraph:
		w.request(".P")
	case syntax.LineBreak:
		w.newline()
	case syntax.Heading:
		w.heading(v)
	case syntax.Bold:
		w.text(`\fB` + w.sub(v.Child) + `\fP`)
	case syntax.Italic:
		w.text(`\fI` + w.sub(v.Child) + `\fP`)
	case syntax.BoldItalic:
		w.text(`\f(BI` + w.sub(v.Child) + `\fP`)
	case syntax.SmallCaps, syntax.RightSidenote:
		w.render(syntax.Children(v)[0])
	case syntax.Quote:
		w.text(`\(lq` + w.sub(v.Child) + `\(rq`)
	case syntax.Footnote:
		w.text(" (" + w.sub(v.Child) + ")")
	case syntax.InlineCode:
		if !w.inSynopsis {
			w.render(v.Child)
			return
		}
		w.closeSynopsis()
		w.request(".SY " + w.sub(v.Child))
		w.synopsisOpen = true
	case syntax.CodeBlock:
		w.request(".EX")
		w.block(w.sub(v.Body))
		w.request(".EE")
	case syntax.HyperRef:
		w.request(".UR " + w.sub(v.URL))
		w.block(w.sub(v.Text))
		w.request(".UE")
	case syntax.DocRef:
		w.render(v.Text)
	case syntax.List:
		w.request(".")
		w.render(v.Items)
	case syntax.ListItem:
		if syntax.IsEmpty(v.Content) {
			return
		}
		w.request(".TP")
		w.request(".B " + w.sub(v.Content))
	case syntax.MetaDataBlock:
		w.render(v.Items)
	case syntax.MetaDataItem:
		w.request(`.\" ` + v.Key + ": " + v.Value)
	case syntax.Image:
		w.request(`.\" image: ` + w.sub(v.Path))
	default:
		fail(n)
	}
}

func (w *manWriter) heading(h syntax.Heading) {
	title := w.sub(h.Title)
	switch h.Level {
	case 0:
		w.request(".TH " + title)
	case 1:
		w.inSynopsis = strings.EqualFold(strings.TrimSpace(title), "SYNOPSIS")
		if !w.inSynopsis {
			w.closeSynopsis()
		}
		w.request(".")
		w.request(".SH " + title)
	case 2:
		w.request(".SS " + title)
	default:
		w.text(title)
	}
}
