package render

import (
	"strings"

	"github.com/alnah/go-mato/internal/syntax"
)

// DefaultManSection is the manual section used when none is configured.
const DefaultManSection = "7"

// Mandoc renders documents as mdoc(7) pages. The level-0 heading names
// the page; the first level-1 heading is its one-line description and
// ends the NAME section. Inline code inside the NAME section becomes .Nm.
type Mandoc struct {
	// Section is the manual section; empty selects DefaultManSection.
	Section string
}

var _ Renderer = (*Mandoc)(nil)

// Render returns the mdoc page for doc.
func (m *Mandoc) Render(doc syntax.Document) (out string, err error) {
	defer recoverUnsupported(&err)

	section := m.Section
	if section == "" {
		section = DefaultManSection
	}
	w := &mandocWriter{troffWriter: newTroffWriter(), section: section, inTitle: true}
	w.request(".Dd $Mdocdate$")
	w.render(doc.Body)
	return w.b.String(), nil
}

type mandocWriter struct {
	troffWriter
	section string
	inTitle bool
}

func (w *mandocWriter) sub(n syntax.Node) string {
	saved := w.b
	w.b = new(strings.Builder)
	w.render(n)
	s := w.b.String()
	w.b = saved
	return s
}

func (w *mandocWriter) render(n syntax.Node) {
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
		w.request(".Pp")
	case syntax.LineBreak:
		if !w.inTitle {
			w.newline()
		}
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
		if w.inTitle {
			w.request(".Nm " + w.sub(v.Child))
			return
		}
		w.render(v.Child)
	case syntax.CodeBlock:
		w.request(".Bd -literal")
		w.block(w.sub(v.Body))
		w.request(".Ed")
	case syntax.HyperRef:
		w.request(".Lk " + w.sub(v.URL) + " " + w.sub(v.Text))
	case syntax.DocRef:
		w.render(v.Text)
	case syntax.List:
		w.request(".Bl -tag -width Ds")
		w.render(v.Items)
		w.request(".El")
	case syntax.ListItem:
		if syntax.IsEmpty(v.Content) {
			return
		}
		w.request(".It " + w.sub(v.Content))
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

func (w *mandocWriter) heading(h syntax.Heading) {
	title := w.sub(h.Title)
	switch h.Level {
	case 0:
		w.request(".Dt " + strings.ToUpper(title) + " " + w.section)
		w.request(".Os")
		w.request(".Sh NAME")
		w.request(".Nm " + title)
	case 1:
		if w.inTitle {
			w.inTitle = false
			w.request(".Nd " + title)
			return
		}
		w.request(".Sh " + title)
	case 2:
		w.request(".Ss " + title)
	default:
		w.text(title)
	}
}
