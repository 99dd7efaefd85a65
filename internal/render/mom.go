package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alnah/go-mato/internal/assets"
	"github.com/alnah/go-mato/internal/syntax"
)

// romFormat is the upright style restored after top-level styles.
const romFormat = "ROM"

// Document-level header and footer extras appended to .DOCTYPE.
const (
	slidesDocType  = ` HEADER "\*[$TITLE]" "" "" FOOTER "\*[$AUTHOR]" "" "\*S[+2]\*[SLIDE#]\*S[-2]"`
	chapterDocType = ` HEADER "\*[$TITLE]" "" "" FOOTER "\*[$AUTHOR]" "" ""`
)

// Mom renders documents as groff mom macro programs.
//
// Meta-data items render where they occur, one directive per item, so a
// meta-data block at the top of the source sets the title and author
// before the first heading.
type Mom struct {
	// Preamble follows the .DOCTYPE line. Empty selects the embedded
	// default.
	Preamble string

	// SkipPreamble omits the preamble.
	SkipPreamble bool

	// Fragment renders the body only: no .DOCTYPE, preamble or .START.
	Fragment bool
}

var _ Renderer = (*Mom)(nil)

// Render returns the mom program for doc.
func (m *Mom) Render(doc syntax.Document) (out string, err error) {
	defer recoverUnsupported(&err)

	w := &momWriter{b: new(strings.Builder), docType: doc.Type}
	if !m.Fragment {
		w.prolog(m)
	}
	w.render(doc.Body, romFormat)
	return w.b.String(), nil
}

// momWriter holds the state of one Render call.
type momWriter struct {
	b       *strings.Builder
	docType syntax.DocType
	started bool // first chapter or slide emitted
}

func (w *momWriter) prolog(m *Mom) {
	w.b.WriteString(".DOCTYPE ")
	w.b.WriteString(w.docType.String())
	switch w.docType {
	case syntax.Slides:
		w.b.WriteString(slidesDocType)
	case syntax.Chapter:
		w.b.WriteString(chapterDocType)
	}
	w.b.WriteByte('\n')

	if !m.SkipPreamble {
		preamble := m.Preamble
		if preamble == "" {
			preamble = assets.DefaultPreamble()
		}
		w.b.WriteString(preamble)
		if !strings.HasSuffix(preamble, "\n") {
			w.b.WriteByte('\n')
		}
	}

	// Chapters and slides start at their first heading.
	if w.docType != syntax.Chapter && w.docType != syntax.Slides {
		w.b.WriteString(".START\n")
	}
}

// sub renders n with the default parent format into a separate string.
func (w *momWriter) sub(n syntax.Node) string {
	saved := w.b
	w.b = new(strings.Builder)
	w.render(n, romFormat)
	s := w.b.String()
	w.b = saved
	return s
}

// style wraps n in the string escape for format and restores parent.
func (w *momWriter) style(n syntax.Node, format, parent string) {
	w.b.WriteString(`\*[` + format + `]`)
	w.render(n, format)
	w.b.WriteString(`\*[` + parent + `]`)
}

func (w *momWriter) render(n syntax.Node, parent string) {
	switch v := n.(type) {
	case nil, syntax.Empty:
	case syntax.Cat:
		w.render(v.Left, parent)
		w.render(v.Right, parent)
	case syntax.Literal:
		w.b.WriteString(v.Text)
	case syntax.Preformatted:
		w.b.WriteString(v.Text)
	case syntax.PassThrough:
		w.b.WriteString(v.Text)
	case syntax.EscapeLit:
		w.b.WriteString(troffEscapeLit(v.Text))
	case syntax.Paragraph:
		w.b.WriteString(".PP\n")
	case syntax.LineBreak:
		w.b.WriteString("\n")
	case syntax.VSpace:
		w.b.WriteString("\n.SP 1v")
	case syntax.Bold:
		w.style(v.Child, "BD", parent)
	case syntax.Italic:
		w.style(v.Child, "IT", parent)
	case syntax.BoldItalic:
		w.style(v.Child, "BDI", parent)
	case syntax.SmallCaps:
		w.render(v.Child, parent)
	case syntax.Quote:
		w.b.WriteString(`"`)
		w.render(v.Child, parent)
		w.b.WriteString(`"`)
	case syntax.InlineCode:
		w.b.WriteString(`\*[CODE]` + w.sub(v.Child) + `\*[CODE OFF]`)
	case syntax.CodeBlock:
		body := w.sub(v.Body)
		if !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		w.b.WriteString(".QUOTE_STYLE INDENT 1\n.QUOTE\n.CODE\n" + body + ".QUOTE OFF\n")
	case syntax.Heading:
		w.heading(v)
	case syntax.Color:
		w.b.WriteString(".COLOR " + w.sub(v.Child) + "\n")
	case syntax.ChapterMark:
		w.b.WriteString(".MN RIGHT\n.PT_SIZE +48\n" + w.sub(v.Child) + "\n.MN OFF\n")
	case syntax.RightSidenote:
		w.b.WriteString("\n.MN RIGHT\n.PT_SIZE -2\n" + w.sub(v.Child) + "\n.MN OFF\n")
	case syntax.Footnote:
		w.b.WriteString("\\c\n.FOOTNOTE\n" + w.sub(v.Child) + "\n.FOOTNOTE END\n")
	case syntax.HyperRef:
		fmt.Fprintf(w.b, "\\c\n.PDF_WWW_LINK %s \"%s\"\\c\n", w.sub(v.URL), w.sub(v.Text))
	case syntax.DocRef:
		fmt.Fprintf(w.b, "\\c\n.PDF_LINK %s \"%s\"\\c\n", v.Target, w.sub(v.Text))
	case syntax.List:
		w.b.WriteString(".LIST\n.SHIFT_LIST 18p\n")
		w.render(v.Items, romFormat)
		w.b.WriteString(".LIST OFF\n")
	case syntax.ListItem:
		if syntax.IsEmpty(v.Content) {
			return
		}
		w.b.WriteString(".ITEM\n" + w.sub(v.Content) + "\n")
	case syntax.MetaDataBlock:
		w.render(v.Items, romFormat)
	case syntax.MetaDataItem:
		key := strings.ReplaceAll(strings.ToUpper(v.Key), " ", "_")
		w.b.WriteString("." + key + " " + v.Value + "\n")
	case syntax.ImageSizeSpec:
		w.b.WriteString(w.sub(v.Width) + "p " + w.sub(v.Height) + "p")
	case syntax.Image:
		fmt.Fprintf(w.b, ".PDF_IMAGE %s %s LABEL \"%s\"", w.sub(v.Path), w.sub(v.Size), w.sub(v.Caption))
	case syntax.DropCap:
		fmt.Fprintf(w.b, "\n.DROPCAP %c %d\n", v.Char, v.Span)
	default:
		fail(n)
	}
}

func (w *momWriter) heading(h syntax.Heading) {
	title := w.sub(h.Title)

	switch w.docType {
	case syntax.Chapter:
		if h.Level == 0 {
			if w.started {
				w.b.WriteString(".COLLATE\n")
			}
			w.started = true
			w.b.WriteString(".CHAPTER_TITLE \"" + title + "\"\n.START\n")
			return
		}
		w.b.WriteString(".SPACE -.7v\n.EW 2\n.HEADING " + strconv.Itoa(h.Level+2) + " \"" + title + "\"\n.EW 0\n")

	case syntax.Slides:
		if h.Level == 0 {
			directive := ".START"
			if w.started {
				directive = ".NEWSLIDE"
			}
			w.started = true
			w.b.WriteString(directive + "\n.HEADING 1 \"" + title + "\"\n")
			return
		}
		w.b.WriteString(".SPACE -.7v\n.EW 2\n.HEADING " + strconv.Itoa(h.Level+1) + " \"" + title + "\"\n.EW 0\n")

	default:
		var named string
		if h.Name != "" {
			named = " NAMED " + h.Name
		}
		heading := ".HEADING " + strconv.Itoa(h.Level+1) + named + " \"" + title + "\""
		switch h.Level {
		case 0:
			w.b.WriteString(".FT B\n.EW 2\n" + heading + "\n.EW 0\n.FT R\n.DRH")
		case 1:
			w.b.WriteString(".FT B\n.EW 2\n" + heading + "\n.EW 0\n.FT R")
		case 3:
			w.b.WriteString(".SPACE -1v\n.MN LEFT\n\\!.ALD 1v\n" + title + "\n.MN OFF")
		default:
			w.b.WriteString(".EW 2\n" + heading + "\n.EW 0")
		}
	}
}
