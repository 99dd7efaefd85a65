package render_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-mato/internal/assets"
	"github.com/alnah/go-mato/internal/parser"
	"github.com/alnah/go-mato/internal/pipeline"
	"github.com/alnah/go-mato/internal/render"
	"github.com/alnah/go-mato/internal/syntax"
)

// compile parses src and canonicalizes it for the troff backends.
func compile(t *testing.T, src string) syntax.Document {
	t.Helper()
	doc, err := parser.ParseString(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	out, err := (&pipeline.Canonicalizer{}).Process(context.Background(), doc)
	if err != nil {
		t.Fatalf("Process(): %v", err)
	}
	return out.(syntax.Document)
}

func mustRender(t *testing.T, r render.Renderer, doc syntax.Document) string {
	t.Helper()
	out, err := r.Render(doc)
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	return out
}

func body(nodes ...syntax.Node) syntax.Document {
	return syntax.Document{Type: syntax.Default, Body: syntax.Sequence(nodes...)}
}

var lit = syntax.Lit

// ---------------------------------------------------------------------------
// TestMom_Scenarios - End-to-end source to mom
// ---------------------------------------------------------------------------

var momScenarios = []struct {
	name   string
	input  string
	want   string
	prefix bool // want is only the beginning of the output
}{
	{name: "plain text", input: "hallo", want: "hallo"},
	{name: "italic", input: "_hallo_", want: `\*[IT]hallo\*[ROM]`},
	{name: "bold", input: "*hallo*", want: `\*[BD]hallo\*[ROM]`},
	{
		name:  "link",
		input: "some text [link text](http://example.com)",
		want:  "some text \\c\n.PDF_WWW_LINK http://example.com \"link text\"\\c\n",
	},
	{
		name:  "code block",
		input: "```\nPP\n```\n",
		want:  ".QUOTE_STYLE INDENT 1\n.QUOTE\n.CODE\nPP\n.QUOTE OFF\n",
	},
	{
		name:  "list",
		input: "* list item\n",
		want:  ".LIST\n.SHIFT_LIST 18p\n.ITEM\nlist item\n.LIST OFF\n",
	},
	{
		name:   "headings",
		input:  "# heading\n\n## subheading",
		want:   ".FT B\n.EW 2\n.HEADING 1 \"heading\"\n.EW 0\n.FT R\n.DRH\n.FT B\n.EW 2\n.HEADING 2 \"subheading\"\n.EW 0\n.FT R",
		prefix: true,
	},
	{
		name:  "chapter mark ends its request line",
		input: ">>(ch)\nx",
		want:  ".MN RIGHT\n.PT_SIZE +48\nch\n.MN OFF\nx",
	},
}

func TestMom_Scenarios(t *testing.T) {
	t.Parallel()

	for _, tt := range momScenarios {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := mustRender(t, &render.Mom{Fragment: true}, compile(t, tt.input))
			if tt.prefix && !strings.HasPrefix(got, tt.want) {
				t.Errorf("Render() = %q, want prefix %q", got, tt.want)
			}
			if !tt.prefix && got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMom_ScenariosFullDocument(t *testing.T) {
	t.Parallel()

	const prolog = ".DOCTYPE DEFAULT\n.START\n"
	for _, tt := range momScenarios {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := mustRender(t, &render.Mom{SkipPreamble: true}, compile(t, tt.input))
			if !strings.HasPrefix(got, prolog+tt.want) {
				t.Errorf("Render() = %q, want prefix %q", got, prolog+tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestMom_Prolog - Document kind and preamble
// ---------------------------------------------------------------------------

func TestMom_Prolog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mom  render.Mom
		doc  syntax.Document
		want string
	}{
		{
			name: "preamble gets a line end",
			mom:  render.Mom{Preamble: ".PAPER A4"},
			doc:  body(lit("x")),
			want: ".DOCTYPE DEFAULT\n.PAPER A4\n.START\nx",
		},
		{
			name: "preamble keeps its line end",
			mom:  render.Mom{Preamble: ".PAPER A4\n"},
			doc:  body(lit("x")),
			want: ".DOCTYPE DEFAULT\n.PAPER A4\n.START\nx",
		},
		{
			name: "letter starts like default",
			mom:  render.Mom{SkipPreamble: true},
			doc:  syntax.Document{Type: syntax.Letter, Body: lit("x")},
			want: ".DOCTYPE LETTER\n.START\nx",
		},
		{
			name: "chapter starts at its first heading",
			mom:  render.Mom{SkipPreamble: true},
			doc:  syntax.Document{Type: syntax.Chapter, Body: syntax.Heading{Title: lit("One")}},
			want: `.DOCTYPE CHAPTER HEADER "\*[$TITLE]" "" "" FOOTER "\*[$AUTHOR]" "" ""` + "\n" +
				".CHAPTER_TITLE \"One\"\n.START\n",
		},
		{
			name: "slides carry a slide number footer",
			mom:  render.Mom{SkipPreamble: true},
			doc:  syntax.Document{Type: syntax.Slides, Body: syntax.Heading{Title: lit("A")}},
			want: `.DOCTYPE SLIDES HEADER "\*[$TITLE]" "" "" FOOTER "\*[$AUTHOR]" "" "\*S[+2]\*[SLIDE#]\*S[-2]"` + "\n" +
				".START\n.HEADING 1 \"A\"\n",
		},
		{
			name: "metadata renders in place",
			mom:  render.Mom{SkipPreamble: true},
			doc: body(
				syntax.MetaDataBlock{Items: syntax.Sequence(
					syntax.MetaDataItem{Key: "title", Value: "T"},
					syntax.MetaDataItem{Key: "pdf title", Value: "P"},
				)},
				lit("x"),
			),
			want: ".DOCTYPE DEFAULT\n.START\n.TITLE T\n.PDF_TITLE P\nx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := tt.mom
			if got := mustRender(t, &m, tt.doc); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMom_DefaultPreamble(t *testing.T) {
	t.Parallel()

	got := mustRender(t, &render.Mom{}, body(lit("x")))
	want := ".DOCTYPE DEFAULT\n" + assets.DefaultPreamble()
	if !strings.HasPrefix(got, want) {
		t.Errorf("Render() does not start with the embedded preamble:\n%s", got)
	}
	if !strings.HasSuffix(got, ".START\nx") {
		t.Errorf("Render() = %q, want suffix %q", got, ".START\nx")
	}
}

// ---------------------------------------------------------------------------
// TestMom_Headings - Heading state machine per document kind
// ---------------------------------------------------------------------------

func TestMom_Headings(t *testing.T) {
	t.Parallel()

	h := func(title string, level int, name string) syntax.Node {
		return syntax.Heading{Title: lit(title), Level: level, Name: name}
	}

	tests := []struct {
		name string
		typ  syntax.DocType
		body syntax.Node
		want string
	}{
		{
			name: "chapters collate after the first",
			typ:  syntax.Chapter,
			body: syntax.Sequence(h("One", 0, ""), h("Two", 0, ""), h("s", 1, "")),
			want: ".CHAPTER_TITLE \"One\"\n.START\n" +
				".COLLATE\n.CHAPTER_TITLE \"Two\"\n.START\n" +
				".SPACE -.7v\n.EW 2\n.HEADING 3 \"s\"\n.EW 0\n",
		},
		{
			name: "slides start then advance",
			typ:  syntax.Slides,
			body: syntax.Sequence(h("A", 0, ""), h("B", 0, ""), h("c", 1, "")),
			want: ".START\n.HEADING 1 \"A\"\n" +
				".NEWSLIDE\n.HEADING 1 \"B\"\n" +
				".SPACE -.7v\n.EW 2\n.HEADING 2 \"c\"\n.EW 0\n",
		},
		{
			name: "named top heading",
			typ:  syntax.Default,
			body: h("Intro", 0, "intro"),
			want: ".FT B\n.EW 2\n.HEADING 1 NAMED intro \"Intro\"\n.EW 0\n.FT R\n.DRH",
		},
		{
			name: "third level is plain",
			typ:  syntax.Letter,
			body: h("c", 2, "x"),
			want: ".EW 2\n.HEADING 3 NAMED x \"c\"\n.EW 0",
		},
		{
			name: "fourth level is a margin note",
			typ:  syntax.Default,
			body: h("aside", 3, ""),
			want: ".SPACE -1v\n.MN LEFT\n\\!.ALD 1v\naside\n.MN OFF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := syntax.Document{Type: tt.typ, Body: tt.body}
			if got := mustRender(t, &render.Mom{Fragment: true}, doc); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestMom_Nodes - Inline and block mappings
// ---------------------------------------------------------------------------

func TestMom_Nodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		node syntax.Node
		want string
	}{
		{
			name: "nested style restores its parent",
			node: syntax.Bold{Child: syntax.Cat{Left: lit("a"), Right: syntax.Italic{Child: lit("b")}}},
			want: `\*[BD]a\*[IT]b\*[BD]\*[ROM]`,
		},
		{
			name: "quote inside bold keeps bold",
			node: syntax.Bold{Child: syntax.Quote{Child: syntax.BoldItalic{Child: lit("q")}}},
			want: `\*[BD]"\*[BDI]q\*[BD]"\*[ROM]`,
		},
		{name: "inline code", node: syntax.InlineCode{Child: lit("x")}, want: `\*[CODE]x\*[CODE OFF]`},
		{name: "escaped dot", node: syntax.EscapeLit{Text: "."}, want: `\&.`},
		{name: "escaped ampersand", node: syntax.EscapeLit{Text: "&"}, want: "&"},
		{name: "pass-through", node: syntax.PassThrough{Text: ".SP 2v"}, want: ".SP 2v"},
		{name: "paragraph", node: syntax.Paragraph{}, want: ".PP\n"},
		{name: "vertical space", node: syntax.VSpace{}, want: "\n.SP 1v"},
		{name: "color", node: syntax.Color{Child: lit("red")}, want: ".COLOR red\n"},
		{
			name: "footnote",
			node: syntax.Footnote{Child: lit("n")},
			want: "\\c\n.FOOTNOTE\nn\n.FOOTNOTE END\n",
		},
		{
			name: "sidenote",
			node: syntax.RightSidenote{Child: lit("s")},
			want: "\n.MN RIGHT\n.PT_SIZE -2\ns\n.MN OFF\n",
		},
		{
			name: "chapter mark",
			node: syntax.ChapterMark{Child: lit("I")},
			want: ".MN RIGHT\n.PT_SIZE +48\nI\n.MN OFF\n",
		},
		{
			name: "document reference",
			node: syntax.DocRef{Target: "intro", Text: lit("see")},
			want: "\\c\n.PDF_LINK intro \"see\"\\c\n",
		},
		{
			name: "image",
			node: syntax.Image{
				Caption: lit("cap"),
				Path:    lit("/a.pdf"),
				Size:    syntax.ImageSizeSpec{Width: lit("10"), Height: lit("20")},
			},
			want: `.PDF_IMAGE /a.pdf 10p 20p LABEL "cap"`,
		},
		{name: "drop cap", node: syntax.DropCap{Char: 'Ä', Span: 3}, want: "\n.DROPCAP Ä 3\n"},
		{
			name: "code block body gets a line end",
			node: syntax.CodeBlock{Kind: lit(""), Body: syntax.Preformatted{Text: "x"}},
			want: ".QUOTE_STYLE INDENT 1\n.QUOTE\n.CODE\nx\n.QUOTE OFF\n",
		},
		{
			name: "nested list",
			node: syntax.List{Items: syntax.Cat{
				Left:  syntax.ListItem{Content: lit("a")},
				Right: syntax.List{Items: syntax.ListItem{Content: lit("b"), Level: 1}, Level: 1},
			}},
			want: ".LIST\n.SHIFT_LIST 18p\n.ITEM\na\n.LIST\n.SHIFT_LIST 18p\n.ITEM\nb\n.LIST OFF\n.LIST OFF\n",
		},
		{name: "empty list item", node: syntax.ListItem{Content: syntax.Empty{}}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := mustRender(t, &render.Mom{Fragment: true}, body(tt.node)); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRender_UnsupportedNode - Unknown shapes surface as errors
// ---------------------------------------------------------------------------

func TestRender_UnsupportedNode(t *testing.T) {
	t.Parallel()

	// A document nested inside a body has no mapping in any backend.
	doc := body(lit("x"), syntax.Document{Body: lit("y")})

	renderers := map[string]render.Renderer{
		"mom":      &render.Mom{Fragment: true},
		"man":      &render.Man{},
		"mandoc":   &render.Mandoc{},
		"tex":      &render.TeX{},
		"markdown": &render.Markdown{},
		"html":     &render.HTML{},
	}
	for name, r := range renderers {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := r.Render(doc)
			if !errors.Is(err, render.ErrUnsupportedNode) {
				t.Errorf("Render() error = %v, want ErrUnsupportedNode", err)
			}
		})
	}
}

func TestRender_ConcurrentUse(t *testing.T) {
	t.Parallel()

	m := &render.Mom{Fragment: true}
	doc := syntax.Document{Type: syntax.Chapter, Body: syntax.Sequence(
		syntax.Heading{Title: lit("A")},
		syntax.Heading{Title: lit("B")},
	)}
	want := mustRender(t, m, doc)

	done := make(chan string, 8)
	for range 8 {
		go func() {
			out, _ := m.Render(doc)
			done <- out
		}()
	}
	for range 8 {
		if got := <-done; got != want {
			t.Errorf("concurrent Render() = %q, want %q", got, want)
		}
	}
}

func TestMetaData(t *testing.T) {
	t.Parallel()

	doc := compile(t, "---\nTitle: First\nauthor: Me\ntitle: Second\n---\n\ntext")
	meta := render.MetaData(doc)
	if meta["author"] != "Me" {
		t.Errorf("author = %q, want Me", meta["author"])
	}
	if got := render.Title(doc); got != "Second" {
		t.Errorf("Title() = %q, want Second", got)
	}
}
