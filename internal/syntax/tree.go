package syntax

// Node is implemented by every tree variant.
type Node interface {
	node()
}

// Document is the root of a parsed source.
type Document struct {
	Type DocType
	Body Node
}

// Cat is ordered sequential composition of two sub-trees.
type Cat struct {
	Left, Right Node
}

// Empty is the identity element of Cat.
type Empty struct{}

// Literal is ordinary text.
type Literal struct {
	Text string
}

// Preformatted is verbatim text such as a code block body.
// It is never word-wrapped but is still escaped by troff backends.
type Preformatted struct {
	Text string
}

// EscapeLit is a single character rendered specially per backend.
type EscapeLit struct {
	Text string
}

// PassThrough is raw backend text introduced with "//".
type PassThrough struct {
	Text string
}

// Inline styles.
type (
	Bold       struct{ Child Node }
	Italic     struct{ Child Node }
	BoldItalic struct{ Child Node }
	SmallCaps  struct{ Child Node }
	Quote      struct{ Child Node }
	InlineCode struct{ Child Node }
	Color      struct{ Child Node }
)

// Heading is a section title. Level 0 is the outermost heading.
// Name is the optional anchor used by DocRef targets.
type Heading struct {
	Title Node
	Level int
	Name  string
}

// CodeBlock is a fenced block. Kind names its dialect, typically a Literal.
type CodeBlock struct {
	Kind Node
	Body Node
}

// List groups the items of one indentation level.
type List struct {
	Items Node
	Level int
}

// ListItem is a single list entry.
type ListItem struct {
	Content Node
	Level   int
}

// MetaDataBlock holds the key/value items of a "---" block.
type MetaDataBlock struct {
	Items Node
}

// MetaDataItem is a "key: value" line.
type MetaDataItem struct {
	Key, Value string
}

// Image references an external picture.
type Image struct {
	Caption Node
	Path    Node
	Size    Node
}

// ImageSizeSpec carries the width and height of an Image.
type ImageSizeSpec struct {
	Width, Height Node
}

// Annotations.
type (
	Footnote      struct{ Child Node }
	RightSidenote struct{ Child Node }
	ChapterMark   struct{ Child Node }
)

// DropCap enlarges Char over Span lines.
type DropCap struct {
	Char rune
	Span int
}

// HyperRef links Text to an external URL.
type HyperRef struct {
	Text Node
	URL  Node
}

// DocRef links Text to a named heading of the same document.
type DocRef struct {
	Target string
	Text   Node
}

// Layout markers.
type (
	Paragraph struct{}
	LineBreak struct{}
	VSpace    struct{}
)

func (Document) node()      {}
func (Cat) node()           {}
func (Empty) node()         {}
func (Literal) node()       {}
func (Preformatted) node()  {}
func (EscapeLit) node()     {}
func (PassThrough) node()   {}
func (Bold) node()          {}
func (Italic) node()        {}
func (BoldItalic) node()    {}
func (SmallCaps) node()     {}
func (Quote) node()         {}
func (InlineCode) node()    {}
func (Color) node()         {}
func (Heading) node()       {}
func (CodeBlock) node()     {}
func (List) node()          {}
func (ListItem) node()      {}
func (MetaDataBlock) node() {}
func (MetaDataItem) node()  {}
func (Image) node()         {}
func (ImageSizeSpec) node() {}
func (Footnote) node()      {}
func (RightSidenote) node() {}
func (ChapterMark) node()   {}
func (DropCap) node()       {}
func (HyperRef) node()      {}
func (DocRef) node()        {}
func (Paragraph) node()     {}
func (LineBreak) node()     {}
func (VSpace) node()        {}
