package render

import (
	"strconv"
	"strings"

	"github.com/alnah/go-mato/internal/pipeline"
	"github.com/alnah/go-mato/internal/syntax"
)

var commonMarkEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
	"!", `\!`,
	"|", `\|`,
	"~", `\~`,
)

// HTML renders documents as CommonMark with the footnote, table and
// attribute extensions, ready for pipeline.GoldmarkConverter. Small caps,
// sidenotes and chapter marks have no CommonMark form; they are wrapped
// in placeholder characters for pipeline.ExpandPlaceholders. Meta-data is
// not rendered: the title goes to the page head through Title.
type HTML struct{}

var _ Renderer = (*HTML)(nil)

// Render returns the CommonMark source for doc.
func (h *HTML) Render(doc syntax.Document) (out string, err error) {
	defer recoverUnsupported(&err)

	w := &cmWriter{troffWriter: newTroffWriter()}
	w.render(doc.Body)
	if len(w.footnotes) > 0 {
		w.newline()
		for i, note := range w.footnotes {
			w.text("\n[^" + strconv.Itoa(i+1) + "]: " + note + "\n")
		}
	}
	return w.b.String(), nil
}

// cmWriter reuses the line tracking of the troff writers.
type cmWriter struct {
	troffWriter
	indent    string
	footnotes []string
}

func (w *cmWriter) sub(n syntax.Node) string {
	saved := w.b
	w.b = new(strings.Builder)
	w.render(n)
	s := w.b.String()
	w.b = saved
	return s
}

func (w *cmWriter) enclose(open string, n syntax.Node, close string) {
	w.text(open)
	w.render(n)
	w.text(close)
}

func (w *cmWriter) render(n syntax.Node) {
	switch v := n.(type) {
	case nil, syntax.Empty, syntax.Color, syntax.MetaDataBlock, syntax.MetaDataItem, syntax.ImageSizeSpec:
	case syntax.Cat:
		w.render(v.Left)
		w.render(v.Right)
	case syntax.Literal:
		w.text(commonMarkEscaper.Replace(v.Text))
	case syntax.Preformatted:
		w.text(v.Text)
	case syntax.PassThrough:
		w.text(v.Text)
	case syntax.EscapeLit:
		w.text(`\` + v.Text)
	case syntax.DropCap:
		w.text(string(v.Char))
	case syntax.Paragraph:
		w.text("\n")
	case syntax.LineBreak:
		w.text("\n" + w.indent)
	case syntax.VSpace:
		w.text("\n")
	case syntax.Bold:
		w.enclose("**", v.Child, "**")
	case syntax.Italic:
		w.enclose("*", v.Child, "*")
	case syntax.BoldItalic:
		w.enclose("***", v.Child, "***")
	case syntax.SmallCaps:
		w.enclose(pipeline.SmallCapsStart, v.Child, pipeline.SmallCapsEnd)
	case syntax.RightSidenote:
		w.enclose(pipeline.SidenoteStart, v.Child, pipeline.SidenoteEnd)
	case syntax.ChapterMark:
		w.enclose(pipeline.ChapterMarkStart, v.Child, pipeline.ChapterMarkEnd)
	case syntax.Quote:
		w.enclose("“", v.Child, "”")
	case syntax.InlineCode:
		w.text(codeSpan(syntax.Text(v.Child)))
	case syntax.CodeBlock:
		body := syntax.Text(v.Body)
		if !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		w.newline()
		w.text("\n```" + strings.TrimSpace(syntax.Text(v.Kind)) + "\n" + body + "```\n")
	case syntax.Heading:
		title := strings.TrimSpace(w.sub(v.Title))
		if v.Name != "" {
			title += " {#" + v.Name + "}"
		}
		w.newline()
		w.text("\n" + strings.Repeat("#", min(v.Level+1, 6)) + " " + title + "\n")
	case syntax.Footnote:
		w.footnotes = append(w.footnotes, w.sub(v.Child))
		w.text("[^" + strconv.Itoa(len(w.footnotes)) + "]")
	case syntax.HyperRef:
		w.enclose("[", v.Text, "]("+linkDestination(syntax.Text(v.URL))+")")
	case syntax.DocRef:
		w.enclose("[", v.Text, "](#"+v.Target+")")
	case syntax.Image:
		// The caption becomes an alt attribute, where spans cannot go.
		w.text("![" + pipeline.StripPlaceholders(w.sub(v.Caption)) + "](" + linkDestination(syntax.Text(v.Path)) + ")")
	case syntax.List:
		if v.Level == 0 {
			w.newline()
			w.text("\n")
		}
		w.render(v.Items)
	case syntax.ListItem:
		if syntax.IsEmpty(v.Content) {
			return
		}
		saved := w.indent
		w.indent = strings.Repeat(" ", (v.Level+1)*2)
		w.newline()
		w.enclose(strings.Repeat(" ", v.Level*2)+"- ", v.Content, "\n")
		w.indent = saved
	default:
		fail(n)
	}
}

// codeSpan picks a backtick fence longer than any run inside s.
func codeSpan(s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	fence := strings.Repeat("`", longest+1)
	if longest > 0 {
		return fence + " " + s + " " + fence
	}
	return fence + s + fence
}

// linkDestination wraps destinations CommonMark cannot take bare.
func linkDestination(s string) string {
	if strings.ContainsAny(s, " ()<>") {
		return "<" + strings.NewReplacer("<", "%3C", ">", "%3E").Replace(s) + ">"
	}
	return s
}
