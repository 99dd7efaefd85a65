package render

import (
	"strings"

	"github.com/alnah/go-mato/internal/syntax"
)

var texEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"{", `\{`,
	"}", `\}`,
	"$", `\$`,
	"%", `\%`,
	"#", `\#`,
	"_", `\_`,
	"&", `\&`,
	"~", `\textasciitilde{}`,
	"^", `\textasciicircum{}`,
)

// TeX renders documents as LaTeX body text. Styles nest natively, so the
// renderer keeps no state.
type TeX struct{}

var _ Renderer = (*TeX)(nil)

// Render returns the LaTeX text for doc.
func (t *TeX) Render(doc syntax.Document) (out string, err error) {
	defer recoverUnsupported(&err)

	var b strings.Builder
	renderTeX(&b, doc.Body)
	return b.String(), nil
}

func renderTeX(b *strings.Builder, n syntax.Node) {
	wrap := func(open string, child syntax.Node, close string) {
		b.WriteString(open)
		renderTeX(b, child)
		b.WriteString(close)
	}

	switch v := n.(type) {
	case nil, syntax.Empty, syntax.VSpace, syntax.Color, syntax.MetaDataBlock, syntax.MetaDataItem, syntax.ImageSizeSpec:
	case syntax.Cat:
		renderTeX(b, v.Left)
		renderTeX(b, v.Right)
	case syntax.Literal:
		b.WriteString(texEscaper.Replace(v.Text))
	case syntax.Preformatted:
		b.WriteString(v.Text)
	case syntax.PassThrough:
		b.WriteString(v.Text)
	case syntax.EscapeLit:
		if v.Text == "&" {
			b.WriteString(`\&`)
			return
		}
		b.WriteString(v.Text)
	case syntax.DropCap:
		b.WriteRune(v.Char)
	case syntax.Paragraph, syntax.LineBreak:
		b.WriteString("\n")
	case syntax.Bold:
		wrap(`\textbf{`, v.Child, "}")
	case syntax.Italic:
		wrap(`\textit{`, v.Child, "}")
	case syntax.BoldItalic:
		wrap(`\textbf{\textit{`, v.Child, "}}")
	case syntax.SmallCaps:
		wrap(`\textsc{`, v.Child, "}")
	case syntax.InlineCode:
		wrap(`\texttt{`, v.Child, "}")
	case syntax.CodeBlock:
		var body strings.Builder
		renderTeX(&body, v.Body)
		b.WriteString("\\begin{verbatim}\n")
		b.WriteString(body.String())
		if !strings.HasSuffix(body.String(), "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\\end{verbatim}\n")
	case syntax.Heading:
		section := `\section{`
		switch {
		case v.Level == 1:
			section = `\subsection{`
		case v.Level >= 2:
			section = `\subsubsection{`
		}
		wrap(section, v.Title, "}")
		if v.Name != "" {
			b.WriteString(`\label{` + v.Name + "}")
		}
	case syntax.Quote:
		wrap("\"`", v.Child, "\"'")
	case syntax.ChapterMark:
		renderTeX(b, v.Child)
	case syntax.RightSidenote:
		renderTeX(b, v.Child)
	case syntax.Footnote:
		wrap(`~\footnote{`, v.Child, "}")
	case syntax.HyperRef:
		b.WriteString(`\href{` + syntax.Text(v.URL) + "}{")
		renderTeX(b, v.Text)
		b.WriteString("}")
	case syntax.DocRef:
		wrap(`\hyperref[`+v.Target+"]{", v.Text, "}")
	case syntax.List:
		b.WriteString("\\begin{itemize}\n")
		renderTeX(b, v.Items)
		b.WriteString("\\end{itemize}\n")
	case syntax.ListItem:
		if syntax.IsEmpty(v.Content) {
			return
		}
		wrap(`\item `, v.Content, "\n")
	case syntax.Image:
		b.WriteString(`\includegraphics{` + syntax.Text(v.Path) + "}")
	default:
		fail(n)
	}
}
