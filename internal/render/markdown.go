package render

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alnah/go-mato/internal/syntax"
)

// WrapColumn is the column the markdown backend wraps plain text at.
const WrapColumn = 68

// defaultImageSide is the width and height the parser gives an image
// without a size suffix.
const defaultImageSide = "100"

// Markdown renders documents back into the source dialect. Plain text
// outside of markup is wrapped at WrapColumn; everything else keeps its
// line structure, so formatting formatted output changes nothing.
type Markdown struct{}

var _ Renderer = (*Markdown)(nil)

// Render returns the source text for doc.
func (m *Markdown) Render(doc syntax.Document) (out string, err error) {
	defer recoverUnsupported(&err)

	w := &mdWriter{b: new(strings.Builder), docType: doc.Type}
	if doc.Type != syntax.Default && !hasMetaDataBlock(doc.Body) {
		w.write("---\n" + w.docTypeItem() + "---\n\n")
	}
	w.render(doc.Body)
	return w.b.String(), nil
}

func hasMetaDataBlock(n syntax.Node) bool {
	var found bool
	syntax.Walk(n, func(n syntax.Node) bool {
		if _, ok := n.(syntax.MetaDataBlock); ok {
			found = true
		}
		return !found
	})
	return found
}

type mdWriter struct {
	b       *strings.Builder
	docType syntax.DocType
	col     int    // runes written since the last line end
	pending bool   // a heading still owes its line end
	nowrap  int    // > 0 inside markup that must stay on one line
	indent  string // continuation indent inside a list item
	typed   bool   // doctype already written
}

func (w *mdWriter) docTypeItem() string {
	w.typed = true
	if w.docType == syntax.Default {
		return ""
	}
	return "doctype: " + strings.ToLower(w.docType.String()) + "\n"
}

func (w *mdWriter) write(s string) {
	w.b.WriteString(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		w.col = utf8.RuneCountInString(s[i+1:])
		return
	}
	w.col += utf8.RuneCountInString(s)
}

// wrap writes plain text, turning a space into a line end when the next
// word would reach WrapColumn. Only words that start with a letter or a
// digit begin a new line, so no markup is created at a line start.
func (w *mdWriter) wrap(s string) {
	for i, word := range strings.Split(s, " ") {
		if i > 0 {
			if w.col > 0 && w.col+1+utf8.RuneCountInString(word) >= WrapColumn && breakable(word) {
				w.write("\n")
			} else {
				w.write(" ")
			}
		}
		w.write(word)
	}
}

func breakable(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// enclose renders n on one line between open and close.
func (w *mdWriter) enclose(open string, n syntax.Node, close string) {
	w.write(open)
	w.nowrap++
	w.render(n)
	w.nowrap--
	w.write(close)
}

func (w *mdWriter) render(n syntax.Node) {
	if w.pending {
		switch n.(type) {
		case nil, syntax.Empty, syntax.Cat:
		case syntax.VSpace:
			w.pending = false
		default:
			w.pending = false
			w.write("\n")
		}
	}

	switch v := n.(type) {
	case nil, syntax.Empty, syntax.VSpace:
	case syntax.Cat:
		w.render(v.Left)
		w.render(v.Right)
	case syntax.Literal:
		if w.nowrap > 0 {
			w.write(v.Text)
			return
		}
		w.wrap(v.Text)
	case syntax.Preformatted:
		w.write(v.Text)
	case syntax.EscapeLit:
		w.write(v.Text)
	case syntax.PassThrough:
		w.write("//" + v.Text)
	case syntax.Paragraph:
		w.write("\n")
	case syntax.LineBreak:
		w.write("\n" + w.indent)
	case syntax.Bold:
		w.enclose("*", v.Child, "*")
	case syntax.Italic:
		w.enclose("_", v.Child, "_")
	case syntax.BoldItalic:
		w.enclose("*_", v.Child, "_*")
	case syntax.SmallCaps:
		w.enclose("{", v.Child, "}")
	case syntax.Quote:
		w.enclose(`"`, v.Child, `"`)
	case syntax.InlineCode:
		w.enclose("`", v.Child, "`")
	case syntax.Color:
		w.enclose(`\{`, v.Child, "}")
	case syntax.CodeBlock:
		w.enclose("```", v.Kind, "\n")
		w.enclose("", v.Body, "```\n")
	case syntax.Heading:
		var anchor string
		if v.Name != "" {
			anchor = " /" + v.Name + "/"
		}
		w.enclose(strings.Repeat("#", v.Level+1)+" ", v.Title, anchor)
		w.pending = true
	case syntax.ChapterMark:
		w.enclose(">>(", v.Child, ")\n")
	case syntax.RightSidenote:
		w.enclose(">(", v.Child, ") ")
	case syntax.Footnote:
		w.enclose("^(", v.Child, ")")
	case syntax.HyperRef:
		w.enclose("[", v.Text, "](")
		w.enclose("", v.URL, ") ")
	case syntax.DocRef:
		w.enclose("[", v.Text, "](#"+v.Target+")")
	case syntax.List:
		w.render(v.Items)
	case syntax.ListItem:
		if syntax.IsEmpty(v.Content) {
			return
		}
		saved := w.indent
		w.indent = strings.Repeat(" ", (v.Level+1)*2)
		w.enclose(strings.Repeat(" ", v.Level*2)+"* ", v.Content, "\n")
		w.indent = saved
	case syntax.MetaDataBlock:
		w.write("---\n")
		if !w.typed {
			w.write(w.docTypeItem())
		}
		w.render(v.Items)
		w.write("---\n\n")
	case syntax.MetaDataItem:
		w.write(v.Key + ": " + v.Value + "\n")
	case syntax.Image:
		w.enclose("![", v.Caption, "")
		if size, ok := v.Size.(syntax.ImageSizeSpec); ok && !isDefaultSize(size) {
			w.enclose("|", size.Width, "x")
			w.enclose("", size.Height, "")
		}
		w.enclose("](", v.Path, ")")
	case syntax.DropCap:
		w.write(strings.Repeat("%", v.Span-1) + string(v.Char))
	default:
		fail(n)
	}
}

func isDefaultSize(s syntax.ImageSizeSpec) bool {
	return syntax.Text(s.Width) == defaultImageSide && syntax.Text(s.Height) == defaultImageSide
}
