package syntax

import "fmt"

// Children returns the direct sub-trees of n in source order.
func Children(n Node) []Node {
	switch v := n.(type) {
	case Document:
		return []Node{v.Body}
	case Cat:
		return []Node{v.Left, v.Right}
	case Bold:
		return []Node{v.Child}
	case Italic:
		return []Node{v.Child}
	case BoldItalic:
		return []Node{v.Child}
	case SmallCaps:
		return []Node{v.Child}
	case Quote:
		return []Node{v.Child}
	case InlineCode:
		return []Node{v.Child}
	case Color:
		return []Node{v.Child}
	case Heading:
		return []Node{v.Title}
	case CodeBlock:
		return []Node{v.Kind, v.Body}
	case List:
		return []Node{v.Items}
	case ListItem:
		return []Node{v.Content}
	case MetaDataBlock:
		return []Node{v.Items}
	case Image:
		return []Node{v.Caption, v.Path, v.Size}
	case ImageSizeSpec:
		return []Node{v.Width, v.Height}
	case Footnote:
		return []Node{v.Child}
	case RightSidenote:
		return []Node{v.Child}
	case ChapterMark:
		return []Node{v.Child}
	case HyperRef:
		return []Node{v.Text, v.URL}
	case DocRef:
		return []Node{v.Text}
	}
	return nil
}

// WithChildren returns a copy of n whose sub-trees are replaced by kids,
// given in the order reported by Children.
func WithChildren(n Node, kids []Node) Node {
	if len(kids) != len(Children(n)) {
		panic(fmt.Sprintf("syntax: %T takes %d children, got %d", n, len(Children(n)), len(kids)))
	}
	switch v := n.(type) {
	case Document:
		v.Body = kids[0]
		return v
	case Cat:
		return Cat{Left: kids[0], Right: kids[1]}
	case Bold:
		return Bold{Child: kids[0]}
	case Italic:
		return Italic{Child: kids[0]}
	case BoldItalic:
		return BoldItalic{Child: kids[0]}
	case SmallCaps:
		return SmallCaps{Child: kids[0]}
	case Quote:
		return Quote{Child: kids[0]}
	case InlineCode:
		return InlineCode{Child: kids[0]}
	case Color:
		return Color{Child: kids[0]}
	case Heading:
		v.Title = kids[0]
		return v
	case CodeBlock:
		return CodeBlock{Kind: kids[0], Body: kids[1]}
	case List:
		v.Items = kids[0]
		return v
	case ListItem:
		v.Content = kids[0]
		return v
	case MetaDataBlock:
		return MetaDataBlock{Items: kids[0]}
	case Image:
		return Image{Caption: kids[0], Path: kids[1], Size: kids[2]}
	case ImageSizeSpec:
		return ImageSizeSpec{Width: kids[0], Height: kids[1]}
	case Footnote:
		return Footnote{Child: kids[0]}
	case RightSidenote:
		return RightSidenote{Child: kids[0]}
	case ChapterMark:
		return ChapterMark{Child: kids[0]}
	case HyperRef:
		return HyperRef{Text: kids[0], URL: kids[1]}
	case DocRef:
		v.Text = kids[0]
		return v
	}
	return n
}

// Transform rebuilds the tree bottom-up: children are transformed first,
// then fn is applied to the rebuilt node. Order of siblings is preserved.
func Transform(n Node, fn func(Node) Node) Node {
	if n == nil {
		return nil
	}
	kids := Children(n)
	if len(kids) > 0 {
		out := make([]Node, len(kids))
		for i, k := range kids {
			out[i] = Transform(k, fn)
		}
		n = WithChildren(n, out)
	}
	return fn(n)
}

// Walk visits n and its descendants depth-first in source order.
// Children of a node are skipped when fn returns false for it.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, k := range Children(n) {
		Walk(k, fn)
	}
}
