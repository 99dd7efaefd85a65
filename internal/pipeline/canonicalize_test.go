package pipeline_test

// Notes:
// - Trees are built by hand for rule tests and parsed from source for the
//   property-style tests, so both the rules and their interaction with
//   real parser output are covered.

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-mato/internal/parser"
	"github.com/alnah/go-mato/internal/pipeline"
	"github.com/alnah/go-mato/internal/syntax"
)

func canonicalize(t *testing.T, c *pipeline.Canonicalizer, n syntax.Node) syntax.Node {
	t.Helper()
	out, err := c.Process(context.Background(), n)
	if err != nil {
		t.Fatalf("Process() unexpected error: %v", err)
	}
	return out
}

// ---------------------------------------------------------------------------
// TestCanonicalizer_Rules - Individual rewrite rules
// ---------------------------------------------------------------------------

func TestCanonicalizer_Rules(t *testing.T) {
	t.Parallel()

	lit := syntax.Lit

	tests := []struct {
		name string
		c    pipeline.Canonicalizer
		in   syntax.Node
		want syntax.Node
	}{
		{
			name: "empty left of cat is erased",
			in:   syntax.Cat{Left: syntax.Empty{}, Right: lit("x")},
			want: lit("x"),
		},
		{
			name: "empty right of cat is erased",
			in:   syntax.Cat{Left: lit("x"), Right: syntax.Empty{}},
			want: lit("x"),
		},
		{
			name: "bold directly wrapping italic",
			in:   syntax.Bold{Child: syntax.Italic{Child: lit("x")}},
			want: syntax.BoldItalic{Child: lit("x")},
		},
		{
			name: "italic directly wrapping bold",
			in:   syntax.Italic{Child: syntax.Bold{Child: lit("x")}},
			want: syntax.BoldItalic{Child: lit("x")},
		},
		{
			name: "italic nested deep inside bold",
			in: syntax.Bold{Child: syntax.Cat{
				Left:  lit("a "),
				Right: syntax.Italic{Child: lit("b")},
			}},
			want: syntax.Bold{Child: syntax.Cat{
				Left:  lit("a "),
				Right: syntax.BoldItalic{Child: lit("b")},
			}},
		},
		{
			name: "bold nested deep inside italic",
			in: syntax.Italic{Child: syntax.Cat{
				Left:  syntax.Bold{Child: lit("a")},
				Right: lit(" b"),
			}},
			want: syntax.Italic{Child: syntax.Cat{
				Left:  syntax.BoldItalic{Child: lit("a")},
				Right: lit(" b"),
			}},
		},
		{
			name: "bold inside bold is unwrapped",
			in:   syntax.Bold{Child: syntax.Bold{Child: lit("x")}},
			want: syntax.Bold{Child: lit("x")},
		},
		{
			name: "bold inside bold italic is unwrapped",
			in:   syntax.BoldItalic{Child: syntax.Bold{Child: lit("x")}},
			want: syntax.BoldItalic{Child: lit("x")},
		},
		{
			name: "bold whose content became bold italic",
			in:   syntax.Bold{Child: syntax.Cat{Left: syntax.Empty{}, Right: syntax.Italic{Child: lit("x")}}},
			want: syntax.BoldItalic{Child: lit("x")},
		},
		{
			name: "empty style content becomes empty literal",
			in:   syntax.Italic{Child: syntax.Empty{}},
			want: syntax.Italic{Child: lit("")},
		},
		{
			name: "list of empty items is dropped",
			in: syntax.Cat{
				Left:  syntax.List{Items: syntax.ListItem{Content: syntax.Empty{}}},
				Right: lit("after"),
			},
			want: lit("after"),
		},
		{
			name: "empty meta-data block is dropped",
			in:   syntax.Cat{Left: syntax.MetaDataBlock{Items: syntax.Empty{}}, Right: lit("x")},
			want: lit("x"),
		},
		{
			name: "empty document body is kept",
			in:   syntax.Document{Type: syntax.Slides, Body: syntax.Empty{}},
			want: syntax.Document{Type: syntax.Slides, Body: syntax.Empty{}},
		},
		{
			name: "code block without kind",
			in:   syntax.CodeBlock{Kind: syntax.Empty{}, Body: syntax.Preformatted{Text: "x"}},
			want: syntax.CodeBlock{Kind: lit(""), Body: syntax.Preformatted{Text: "x"}},
		},
		{
			name: "old-style figures are off by default",
			in:   lit("1999"),
			want: lit("1999"),
		},
		{
			name: "old-style figures in body text",
			c:    pipeline.Canonicalizer{OldStyleFigures: true},
			in:   lit("a 10"),
			want: lit(`a \[one.oldstyle]\[zero.oldstyle]`),
		},
		{
			name: "old-style figures skip headings",
			c:    pipeline.Canonicalizer{OldStyleFigures: true},
			in:   syntax.Heading{Title: lit("Part 2"), Level: 1},
			want: syntax.Heading{Title: lit("Part 2"), Level: 1},
		},
		{
			name: "old-style figures skip inline code and urls",
			c:    pipeline.Canonicalizer{OldStyleFigures: true},
			in: syntax.Cat{
				Left:  syntax.InlineCode{Child: lit("x1")},
				Right: syntax.HyperRef{Text: lit("v2"), URL: lit("http://h/3")},
			},
			want: syntax.Cat{
				Left:  syntax.InlineCode{Child: lit("x1")},
				Right: syntax.HyperRef{Text: lit(`v\[two.oldstyle]`), URL: lit("http://h/3")},
			},
		},
		{
			name: "small caps glyphs",
			in:   syntax.SmallCaps{Child: lit("Ab 1")},
			want: syntax.SmallCaps{Child: lit(`\[A.sc]\[b.sc] 1`)},
		},
		{
			name: "small caps reach nested literals",
			in:   syntax.SmallCaps{Child: syntax.Bold{Child: lit("a")}},
			want: syntax.SmallCaps{Child: syntax.Bold{Child: lit(`\[a.sc]`)}},
		},
		{
			name: "preformatted escaping",
			in:   syntax.Preformatted{Text: "a\\b^c\n.d"},
			want: syntax.Preformatted{Text: `a\\b\[ha]c` + "\n" + `\&.d`},
		},
		{
			name: "diagram bodies are left verbatim",
			c:    pipeline.Canonicalizer{Verbatim: map[string]bool{"pic": true}},
			in: syntax.Cat{
				Left:  syntax.CodeBlock{Kind: lit("pic "), Body: syntax.Preformatted{Text: "\"a\\n\"\n.x"}},
				Right: syntax.CodeBlock{Kind: lit("sh"), Body: syntax.Preformatted{Text: "a\\b\n.x"}},
			},
			want: syntax.Cat{
				Left:  syntax.CodeBlock{Kind: lit("pic "), Body: syntax.Preformatted{Text: "\"a\\n\"\n.x"}},
				Right: syntax.CodeBlock{Kind: lit("sh"), Body: syntax.Preformatted{Text: `a\\b` + "\n" + `\&.x`}},
			},
		},
		{
			name: "no escaping for plain targets",
			c:    pipeline.Canonicalizer{Escaping: pipeline.EscapeNone, OldStyleFigures: true},
			in: syntax.Cat{
				Left:  syntax.SmallCaps{Child: lit("ab1")},
				Right: syntax.Preformatted{Text: "a\\b\n.c"},
			},
			want: syntax.Cat{
				Left:  syntax.SmallCaps{Child: lit("ab1")},
				Right: syntax.Preformatted{Text: "a\\b\n.c"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := tt.c
			got := canonicalize(t, &c, tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Process() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestCanonicalizer_Properties - Invariants over parsed input
// ---------------------------------------------------------------------------

var corpus = []string{
	"hallo",
	"*bold _italic_ text*",
	"_italic *bold* text_",
	"*_both_*",
	"_*both*_",
	"# Title\n\nSome *text* here.\n\n* item _one_\n* item *two*\n  * nested\n",
	"---\ntitle: T\ndoctype: chapter\n---\n# One\n\ntext^(note) >(side) more",
	"![cap|1x2](a.png) and [link *x*](http://e.com) and [ref](#one)",
	"```pic\nbox\n```\n",
	"{Small _caps_} \"quoted\" `code`",
	"__",
	"**",
}

func TestCanonicalizer_NoEmptyRemains(t *testing.T) {
	t.Parallel()

	for _, src := range corpus {
		doc, err := parser.ParseString(src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}
		out := canonicalize(t, &pipeline.Canonicalizer{}, doc)
		body := out.(syntax.Document).Body
		if syntax.IsEmpty(body) {
			continue
		}
		syntax.Walk(body, func(n syntax.Node) bool {
			if _, ok := n.(syntax.Empty); ok {
				t.Errorf("Empty node remains after canonicalizing %q", src)
			}
			return true
		})
	}
}

func TestCanonicalizer_NoDirectBoldItalicNesting(t *testing.T) {
	t.Parallel()

	for _, src := range corpus {
		doc, err := parser.ParseString(src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}
		out := canonicalize(t, &pipeline.Canonicalizer{}, doc)
		syntax.Walk(out, func(n syntax.Node) bool {
			switch v := n.(type) {
			case syntax.Bold:
				if _, ok := v.Child.(syntax.Italic); ok {
					t.Errorf("Bold(Italic) remains in %q", src)
				}
				assertNoStyleBelow[syntax.Bold](t, src, v.Child)
				assertNoStyleBelow[syntax.Italic](t, src, v.Child)
			case syntax.Italic:
				if _, ok := v.Child.(syntax.Bold); ok {
					t.Errorf("Italic(Bold) remains in %q", src)
				}
				assertNoStyleBelow[syntax.Italic](t, src, v.Child)
				assertNoStyleBelow[syntax.Bold](t, src, v.Child)
			}
			return true
		})
	}
}

// assertNoStyleBelow fails when a node of type S occurs under n.
func assertNoStyleBelow[S syntax.Node](t *testing.T, src string, n syntax.Node) {
	t.Helper()
	syntax.Walk(n, func(n syntax.Node) bool {
		if _, ok := n.(S); ok {
			t.Errorf("nested %T remains in %q", n, src)
		}
		return true
	})
}

func TestCanonicalizer_TextuallyNestedStylesMerge(t *testing.T) {
	t.Parallel()

	for _, src := range []string{"*a _b_*", "_a *b*_", "*_b_*", "_*b*_"} {
		doc, err := parser.ParseString(src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}
		out := canonicalize(t, &pipeline.Canonicalizer{}, doc)

		var found bool
		syntax.Walk(out, func(n syntax.Node) bool {
			if bi, ok := n.(syntax.BoldItalic); ok {
				found = true
				if diff := cmp.Diff(syntax.Lit("b"), bi.Child); diff != "" {
					t.Errorf("%q: BoldItalic content mismatch (-want +got):\n%s", src, diff)
				}
			}
			return true
		})
		if !found {
			t.Errorf("%q: no BoldItalic node", src)
		}
	}
}

func TestCanonicalizer_EmptyCatIdentity(t *testing.T) {
	t.Parallel()

	for _, src := range corpus {
		doc, err := parser.ParseString(src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}
		c := &pipeline.Canonicalizer{}
		plain := canonicalize(t, c, doc.Body)
		padded := canonicalize(t, c, syntax.Cat{Left: syntax.Empty{}, Right: doc.Body})
		if diff := cmp.Diff(plain, padded); diff != "" {
			t.Errorf("%q: Cat(Empty, x) differs from x (-x +cat):\n%s", src, diff)
		}
	}
}
