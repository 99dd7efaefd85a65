package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/alnah/go-mato/internal/syntax"
)

// ListIndent is the number of columns per list nesting level.
const ListIndent = 2

// maxNesting bounds recursion on adversarial input.
const maxNesting = 256

// literalStops are the bytes that end a literal run in either mode.
const literalStops = "_*#\"^`&[{"

// defaultImageSize is used when an image carries no "|WxH" suffix.
const defaultImageSize = "100"

type parser struct {
	scanner
	docType string
}

// Parse parses src into a Document. An empty input yields a Default
// document with an Empty body.
func Parse(src []byte) (doc syntax.Document, err error) {
	if len(src) == 0 {
		return syntax.Document{Type: syntax.Default, Body: syntax.Empty{}}, nil
	}

	p := &parser{scanner: scanner{src: src, line: 1}}
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*ParseError)
			if !ok {
				panic(r)
			}
			err = pe
		}
	}()

	body := p.complete("")
	return syntax.Document{Type: syntax.ParseDocType(p.docType), Body: body}, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(src string) (syntax.Document, error) {
	return Parse([]byte(src))
}

func (p *parser) enter() {
	p.depth++
	if p.depth > maxNesting {
		p.failf("markup nested too deeply")
	}
}

func (p *parser) leave() { p.depth-- }

// complete parses block and inline constructs until a byte in stop.
func (p *parser) complete(stop string) syntax.Node {
	p.enter()
	defer p.leave()

	var out syntax.Node = syntax.Empty{}
	for !p.atEnd() && strings.IndexByte(stop, p.cur()) < 0 {
		var n syntax.Node
		switch p.cur() {
		case '-':
			n = p.metaDataBlock()
		case '#':
			n = p.heading()
		case '*':
			n = p.listOrEmphasis(stop)
		case '[':
			n = p.link()
		case '>':
			n = p.sidenote()
		case '!':
			n = p.image()
		case '\n':
			n = p.newline()
		default:
			n = p.inline(stop)
		}
		out = syntax.Concat(out, n)
	}
	return out
}

// format parses inline constructs only until a byte in stop.
func (p *parser) format(stop string) syntax.Node {
	p.enter()
	defer p.leave()

	var out syntax.Node = syntax.Empty{}
	for !p.atEnd() && strings.IndexByte(stop, p.cur()) < 0 {
		var n syntax.Node
		if p.cur() == '*' {
			n = p.boldOrLiteral(p.format, stop)
		} else {
			n = p.inline(stop)
		}
		out = syntax.Concat(out, n)
	}
	return out
}

// inline dispatches the constructs shared by both modes.
func (p *parser) inline(stop string) syntax.Node {
	switch p.cur() {
	case '_':
		return syntax.Italic{Child: p.symmetric()}
	case '"':
		return syntax.Quote{Child: p.symmetric()}
	case '{':
		return syntax.SmallCaps{Child: p.enclosed('}')}
	case '`':
		return p.code()
	case '^':
		return p.footnote()
	case '%':
		return p.dropCap()
	case '&', '.':
		c := p.cur()
		p.advance()
		return syntax.EscapeLit{Text: string(c)}
	case '/':
		return p.passThrough()
	case '\\':
		return p.color()
	}
	return p.literal(stop)
}

// literal scans a run of plain text. A run always makes progress: a stop
// byte that no rule claims is taken as a one-byte literal.
func (p *parser) literal(stop string) syntax.Node {
	s := p.scanUntil(literalStops + stop + ">\n")
	if s == "" {
		s = string(p.cur())
		p.advance()
	}
	return syntax.Lit(s)
}

// symmetric parses text delimited by the same byte on both sides.
func (p *parser) symmetric() syntax.Node {
	c := p.cur()
	p.consume(c)
	n := p.complete(string(c))
	p.consume(c)
	return n
}

// enclosed skips the opening byte and parses up to closing.
func (p *parser) enclosed(closing byte) syntax.Node {
	p.advance()
	n := p.complete(string(closing))
	p.consume(closing)
	return n
}

// boldOrLiteral parses "*text*". When the closing star is missing before
// a stop byte, the opening star is kept as literal text in front of the
// scanned content.
func (p *parser) boldOrLiteral(mode func(string) syntax.Node, stop string) syntax.Node {
	p.consume('*')
	content := mode("*" + stop)
	if p.cur() == '*' && !p.atEnd() {
		p.advance()
		return syntax.Bold{Child: content}
	}
	return syntax.Concat(syntax.Lit("*"), content)
}

// listOrEmphasis decides between a list item and bold text at '*'.
func (p *parser) listOrEmphasis(stop string) syntax.Node {
	if p.atLineStart() && p.peek(1, ' ') {
		return p.list(0)
	}
	double := p.peek(1, '*')
	if double {
		p.advance()
	}
	n := p.boldOrLiteral(p.complete, stop)
	if _, ok := n.(syntax.Bold); ok && double && p.cur() == '*' && !p.atEnd() {
		p.advance()
	}
	return n
}

// list parses consecutive items of one level and nested deeper lists.
func (p *parser) list(level int) syntax.Node {
	p.enter()
	defer p.leave()

	var items syntax.Node = syntax.Empty{}
	for {
		switch {
		case p.itemAt(level * ListIndent):
			items = syntax.Concat(items, p.listItem(level))
		case p.itemAt((level + 1) * ListIndent):
			items = syntax.Concat(items, p.list(level+1))
		default:
			return syntax.List{Items: items, Level: level}
		}
	}
}

// listItem parses one item and its continuation lines. A continuation line
// is indented by at least one more level and does not start a new item.
func (p *parser) listItem(level int) syntax.Node {
	for i := 0; i < level*ListIndent; i++ {
		p.consume(' ')
	}
	p.advance()
	p.consume(' ')

	next := (level + 1) * ListIndent
	var content syntax.Node = syntax.Empty{}
	for {
		content = syntax.Concat(content, p.complete("\n"))
		if !p.atEnd() {
			p.consume('\n')
		}
		if !p.spacesAt(0, next) || p.itemAt(next) {
			return syntax.ListItem{Content: content, Level: level}
		}
		for i := 0; i < next; i++ {
			p.advance()
		}
		content = syntax.Concat(content, syntax.LineBreak{})
	}
}

// heading parses "#... title /name/". The line break is swallowed when a
// heading of another level follows directly; otherwise VSpace is appended.
func (p *parser) heading() syntax.Node {
	p.consume('#')
	level := 0
	for p.cur() == '#' && !p.atEnd() {
		level++
		p.advance()
	}
	if p.cur() == ' ' {
		p.advance()
	}

	line := p.scanUntil("\n")
	title, name := splitAnchor(line)
	h := syntax.Heading{Title: syntax.Lit(title), Level: level, Name: name}

	if p.atEnd() {
		return h
	}
	if p.peek(2, '#') && level != 2 {
		p.consume('\n')
		return h
	}
	return syntax.Concat(h, syntax.VSpace{})
}

// splitAnchor separates a trailing "/name/" from a heading line.
func splitAnchor(line string) (title, name string) {
	if len(line) < 3 || line[len(line)-1] != '/' {
		return line, ""
	}
	i := strings.LastIndexByte(line[:len(line)-1], '/')
	if i < 0 || i == len(line)-2 {
		return line, ""
	}
	name = line[i+1 : len(line)-1]
	if strings.ContainsAny(name, " \t") {
		return line, ""
	}
	return strings.TrimRight(line[:i], " \t"), name
}

// newline turns line breaks into layout markers. A blank line yields
// LineBreak and Paragraph unless a heading follows it.
func (p *parser) newline() syntax.Node {
	if !p.peek(1, '\n') {
		p.advance()
		return syntax.LineBreak{}
	}
	heading := p.peek(2, '#')
	p.advance()
	p.advance()
	if heading {
		return syntax.LineBreak{}
	}
	return syntax.Concat(syntax.LineBreak{}, syntax.Paragraph{})
}

// metaDataBlock parses a "---" block of "key: value" lines. Without the
// triple dash, '-' starts a list item at the beginning of a line and is
// literal elsewhere.
func (p *parser) metaDataBlock() syntax.Node {
	if !p.peek(1, '-') || !p.peek(2, '-') {
		if p.atLineStart() && p.peek(1, ' ') {
			return p.list(0)
		}
		p.advance()
		return syntax.Lit("-")
	}

	p.advance()
	p.advance()
	p.advance()
	p.skipBlanks()
	p.consume('\n')

	var items syntax.Node = syntax.Empty{}
	for !p.atEnd() && p.cur() != '-' && p.cur() != '\n' {
		items = syntax.Concat(items, p.metaDataItem())
	}

	if p.cur() == '-' {
		p.consume('-')
		p.consume('-')
		p.consume('-')
		p.skipBlanks()
	}
	if !p.atEnd() {
		p.consume('\n')
	}
	if p.cur() == '\n' {
		p.advance()
	}
	return syntax.MetaDataBlock{Items: items}
}

func (p *parser) metaDataItem() syntax.Node {
	key := p.scanUntil(":\n")
	p.consume(':')
	p.skipBlanks()
	value := p.scanUntil("\n")
	if !p.atEnd() {
		p.consume('\n')
	}
	if key == "doctype" {
		p.docType = value
		return syntax.Empty{}
	}
	return syntax.MetaDataItem{Key: key, Value: value}
}

// code parses inline code "`...`" and fenced blocks "```kind ... ```".
func (p *parser) code() syntax.Node {
	p.consume('`')
	block := p.cur() == '`' && p.peek(1, '`')

	var kind syntax.Node = syntax.Empty{}
	if block {
		p.advance()
		p.advance()
		p.skipBlanks()
		if t := strings.TrimRight(p.scanUntil("\n"), " \t"); t != "" {
			kind = syntax.Lit(t)
		}
		p.consume('\n')
	}

	var body syntax.Node = syntax.Empty{}
	if p.cur() == '.' && !p.atEnd() {
		p.advance()
		body = syntax.EscapeLit{Text: "."}
	}

	if !block {
		body = syntax.Concat(body, syntax.Lit(p.scanUntil("`")))
		p.consume('`')
		return syntax.InlineCode{Child: body}
	}

	body = syntax.Concat(body, syntax.Preformatted{Text: p.scanFence()})
	p.consume('`')
	p.consume('`')
	p.consume('`')
	p.skipBlanks()
	if !p.atEnd() {
		p.consume('\n')
	}
	return syntax.CodeBlock{Kind: kind, Body: body}
}

// scanFence returns the block body up to the closing triple backtick.
// Shorter backtick runs are part of the body.
func (p *parser) scanFence() string {
	start := p.pos
	for !p.atEnd() {
		if p.cur() == '`' && p.peek(1, '`') && p.peek(2, '`') {
			break
		}
		p.advance()
	}
	return string(p.src[start:p.pos])
}

func (p *parser) footnote() syntax.Node {
	p.consume('^')
	if p.cur() == '(' {
		return syntax.Footnote{Child: p.enclosed(')')}
	}
	return syntax.Lit("^")
}

// dropCap parses "%...X" at the start of a line. The span is the number
// of percent signs plus one.
func (p *parser) dropCap() syntax.Node {
	if p.pos != 0 && !p.peekBack(1, '\n') {
		p.consume('%')
		return syntax.Lit("%")
	}
	span := 1
	for p.cur() == '%' && !p.atEnd() {
		span++
		p.advance()
	}
	if p.atEnd() {
		p.failf("drop cap without a character")
	}
	r, size := utf8.DecodeRune(p.src[p.pos:])
	for i := 0; i < size; i++ {
		p.advance()
	}
	return syntax.DropCap{Char: r, Span: span}
}

func (p *parser) color() syntax.Node {
	p.consume('\\')
	if p.cur() != '{' {
		return syntax.Lit("\\")
	}
	p.advance()
	name := p.scanUntil("}")
	p.consume('}')
	return syntax.Color{Child: syntax.Lit(name)}
}

// sidenote parses ">(text)" and the chapter mark ">>(text)".
func (p *parser) sidenote() syntax.Node {
	p.consume('>')
	chapter := p.cur() == '>'
	if chapter {
		p.advance()
	}
	if p.cur() != '(' {
		if chapter {
			return syntax.Lit(">>")
		}
		return syntax.Lit(">")
	}

	content := p.enclosed(')')
	var n syntax.Node = syntax.RightSidenote{Child: content}
	if chapter {
		if !p.atEnd() {
			p.consume('\n')
		}
		n = syntax.ChapterMark{Child: content}
	}
	if p.cur() == ' ' {
		p.advance()
	}
	return n
}

// link parses "[text](url)", "[text](#target)" and bare "[text]".
func (p *parser) link() syntax.Node {
	p.consume('[')
	text := p.format("]")
	p.consume(']')

	if p.cur() != '(' {
		return syntax.Sequence(syntax.Lit("["), text, syntax.Lit("]"))
	}
	p.advance()
	if p.cur() == '#' {
		p.advance()
		target := p.scanUntil(")")
		p.consume(')')
		return syntax.DocRef{Target: target, Text: text}
	}
	url := p.scanUntil(")")
	p.consume(')')
	if p.cur() == ' ' {
		p.advance()
	}
	return syntax.HyperRef{Text: text, URL: syntax.Lit(url)}
}

// image parses "![caption|WxH](path)"; the size suffix is optional.
func (p *parser) image() syntax.Node {
	p.consume('!')
	if p.cur() != '[' {
		return syntax.Lit("!")
	}
	p.advance()
	caption := p.complete("|]")

	var size syntax.Node = syntax.ImageSizeSpec{
		Width:  syntax.Lit(defaultImageSize),
		Height: syntax.Lit(defaultImageSize),
	}
	if p.cur() == '|' {
		p.advance()
		w := p.complete("x")
		p.consume('x')
		h := p.complete("]")
		size = syntax.ImageSizeSpec{Width: w, Height: h}
	}

	p.consume(']')
	p.consume('(')
	path := p.scanUntil(")")
	p.consume(')')
	return syntax.Image{Caption: caption, Path: syntax.Lit(path), Size: size}
}

// passThrough parses "//raw text" up to the end of the line.
func (p *parser) passThrough() syntax.Node {
	p.consume('/')
	if p.cur() != '/' {
		return syntax.Lit("/")
	}
	p.advance()
	return syntax.PassThrough{Text: p.scanUntil("\n")}
}
