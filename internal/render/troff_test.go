package render_test

import (
	"testing"

	"github.com/alnah/go-mato/internal/render"
	"github.com/alnah/go-mato/internal/syntax"
)

// ---------------------------------------------------------------------------
// TestMan - man(7) pages
// ---------------------------------------------------------------------------

func TestMan(t *testing.T) {
	t.Parallel()

	code := func(s string) syntax.Node { return syntax.InlineCode{Child: lit(s)} }
	h := func(s string, level int) syntax.Node { return syntax.Heading{Title: lit(s), Level: level} }

	tests := []struct {
		name string
		doc  syntax.Document
		want string
	}{
		{
			name: "synopsis blocks close at the next section",
			doc: body(
				h("LS 1", 0),
				h("SYNOPSIS", 1), syntax.LineBreak{},
				code("ls"), syntax.LineBreak{},
				code("ls -l"),
				h("DESCRIPTION", 1), syntax.LineBreak{},
				lit("Lists "), syntax.Bold{Child: lit("files")}, lit("."),
				syntax.Paragraph{}, lit("More"),
			),
			want: ".TH LS 1\n.\n.SH SYNOPSIS\n.SY ls\n.YS\n.SY ls -l\n.YS\n" +
				".\n.SH DESCRIPTION\nLists \\fBfiles\\fP.\n.P\nMore",
		},
		{
			name: "open synopsis closes at the end",
			doc:  body(h("Synopsis", 1), code("mato")),
			want: ".\n.SH Synopsis\n.SY mato\n.YS\n",
		},
		{
			name: "inline code outside synopsis is text",
			doc:  body(lit("run "), code("mato")),
			want: "run mato",
		},
		{
			name: "styles and quotes",
			doc: body(
				syntax.Italic{Child: lit("i")}, syntax.BoldItalic{Child: lit("bi")},
				syntax.Quote{Child: lit("q")}, syntax.EscapeLit{Text: "."},
			),
			want: `\fIi\fP\f(BIbi\fP\(lqq\(rq\&.`,
		},
		{
			name: "code block",
			doc:  body(lit("x"), syntax.CodeBlock{Kind: lit(""), Body: syntax.Preformatted{Text: "a\n"}}),
			want: "x\n.EX\na\n.EE\n",
		},
		{
			name: "link",
			doc:  body(syntax.HyperRef{Text: lit("site"), URL: lit("http://e.com")}),
			want: ".UR http://e.com\nsite\n.UE\n",
		},
		{
			name: "list",
			doc:  body(syntax.List{Items: syntax.Cat{Left: syntax.ListItem{Content: lit("a")}, Right: syntax.ListItem{Content: lit("b")}}}),
			want: ".\n.TP\n.B a\n.TP\n.B b\n",
		},
		{
			name: "metadata and images are comments",
			doc: body(
				syntax.MetaDataBlock{Items: syntax.MetaDataItem{Key: "title", Value: "T"}},
				syntax.Image{Caption: lit("c"), Path: lit("a.png"), Size: syntax.ImageSizeSpec{Width: lit("1"), Height: lit("1")}},
			),
			want: ".\\\" title: T\n.\\\" image: a.png\n",
		},
		{
			name: "unprintable annotations are dropped",
			doc:  body(syntax.Color{Child: lit("red")}, syntax.ChapterMark{Child: lit("I")}, syntax.VSpace{}, syntax.DropCap{Char: 'W', Span: 2}, lit("ord")),
			want: "Word",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := mustRender(t, &render.Man{}, tt.doc); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestMandoc - mdoc(7) pages
// ---------------------------------------------------------------------------

func TestMandoc(t *testing.T) {
	t.Parallel()

	page := body(
		syntax.Heading{Title: lit("mato")}, syntax.LineBreak{},
		syntax.InlineCode{Child: lit("matofmt")},
		syntax.Heading{Title: lit("compile documents"), Level: 1}, syntax.LineBreak{},
		syntax.Heading{Title: lit("DESCRIPTION"), Level: 1}, syntax.LineBreak{},
		lit("Text "), syntax.Italic{Child: lit("x")}, syntax.LineBreak{},
		syntax.InlineCode{Child: lit("code")},
	)

	tests := []struct {
		name   string
		mandoc render.Mandoc
		doc    syntax.Document
		want   string
	}{
		{
			name: "title section",
			doc:  page,
			want: ".Dd $Mdocdate$\n.Dt MATO 7\n.Os\n.Sh NAME\n.Nm mato\n.Nm matofmt\n" +
				".Nd compile documents\n.Sh DESCRIPTION\nText \\fIx\\fP\ncode",
		},
		{
			name:   "configured section",
			mandoc: render.Mandoc{Section: "1"},
			doc:    body(syntax.Heading{Title: lit("ls")}),
			want:   ".Dd $Mdocdate$\n.Dt LS 1\n.Os\n.Sh NAME\n.Nm ls\n",
		},
		{
			name: "tagged list",
			doc: body(
				syntax.Heading{Title: lit("d"), Level: 1},
				syntax.List{Items: syntax.Cat{Left: syntax.ListItem{Content: lit("a")}, Right: syntax.ListItem{Content: lit("b")}}},
			),
			want: ".Dd $Mdocdate$\n.Nd d\n.Bl -tag -width Ds\n.It a\n.It b\n.El\n",
		},
		{
			name: "literal display and link",
			doc: body(
				syntax.Heading{Title: lit("d"), Level: 1},
				syntax.CodeBlock{Kind: lit(""), Body: syntax.Preformatted{Text: "x"}},
				syntax.HyperRef{Text: lit("home"), URL: lit("https://e.com")},
			),
			want: ".Dd $Mdocdate$\n.Nd d\n.Bd -literal\nx\n.Ed\n.Lk https://e.com home\n",
		},
		{
			name: "subsection and bold",
			doc: body(
				syntax.Heading{Title: lit("d"), Level: 1},
				syntax.Heading{Title: lit("Options"), Level: 2},
				syntax.Bold{Child: lit("b")}, syntax.BoldItalic{Child: lit("c")},
			),
			want: ".Dd $Mdocdate$\n.Nd d\n.Ss Options\n\\fBb\\fP\\f(BIc\\fP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := tt.mandoc
			if got := mustRender(t, &m, tt.doc); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestTeX - LaTeX body text
// ---------------------------------------------------------------------------

func TestTeX(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		node syntax.Node
		want string
	}{
		{
			name: "styles nest natively",
			node: syntax.Bold{Child: syntax.Cat{Left: lit("a "), Right: syntax.Italic{Child: lit("b")}}},
			want: `\textbf{a \textit{b}}`,
		},
		{name: "bold italic", node: syntax.BoldItalic{Child: lit("x")}, want: `\textbf{\textit{x}}`},
		{name: "small caps", node: syntax.SmallCaps{Child: lit("x")}, want: `\textsc{x}`},
		{name: "special characters", node: lit(`50% of $5 #1 a_b {c}`), want: `50\% of \$5 \#1 a\_b \{c\}`},
		{name: "escaped ampersand", node: syntax.EscapeLit{Text: "&"}, want: `\&`},
		{name: "escaped dot", node: syntax.EscapeLit{Text: "."}, want: "."},
		{name: "inline code", node: syntax.InlineCode{Child: lit("x_y")}, want: `\texttt{x\_y}`},
		{
			name: "verbatim block",
			node: syntax.CodeBlock{Kind: lit("go"), Body: syntax.Preformatted{Text: "a_b\n"}},
			want: "\\begin{verbatim}\na_b\n\\end{verbatim}\n",
		},
		{name: "section", node: syntax.Heading{Title: lit("A")}, want: `\section{A}`},
		{name: "subsection", node: syntax.Heading{Title: lit("B"), Level: 1}, want: `\subsection{B}`},
		{name: "deep heading", node: syntax.Heading{Title: lit("C"), Level: 4}, want: `\subsubsection{C}`},
		{name: "labelled heading", node: syntax.Heading{Title: lit("D"), Name: "d"}, want: `\section{D}\label{d}`},
		{name: "quote", node: syntax.Quote{Child: lit("q")}, want: "\"`q\"'"},
		{name: "footnote", node: syntax.Footnote{Child: lit("n")}, want: `~\footnote{n}`},
		{name: "hyperlink", node: syntax.HyperRef{Text: lit("t"), URL: lit("http://e.com/a_b")}, want: `\href{http://e.com/a_b}{t}`},
		{name: "cross reference", node: syntax.DocRef{Target: "d", Text: lit("see")}, want: `\hyperref[d]{see}`},
		{
			name: "itemize",
			node: syntax.List{Items: syntax.Cat{Left: syntax.ListItem{Content: lit("a")}, Right: syntax.ListItem{Content: lit("b")}}},
			want: "\\begin{itemize}\n\\item a\n\\item b\n\\end{itemize}\n",
		},
		{name: "image", node: syntax.Image{Caption: lit("c"), Path: lit("/i.png"), Size: syntax.ImageSizeSpec{}}, want: `\includegraphics{/i.png}`},
		{name: "sidenote keeps its text", node: syntax.RightSidenote{Child: lit("s")}, want: "s"},
		{name: "metadata is dropped", node: syntax.MetaDataBlock{Items: syntax.MetaDataItem{Key: "k", Value: "v"}}, want: ""},
		{name: "line break", node: syntax.Cat{Left: lit("a"), Right: syntax.LineBreak{}}, want: "a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := mustRender(t, &render.TeX{}, body(tt.node)); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}
