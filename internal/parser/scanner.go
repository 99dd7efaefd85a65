package parser

import "strings"

// scanner is the cursor shared by all grammar rules.
type scanner struct {
	src   []byte
	pos   int
	line  int
	depth int
}

func (s *scanner) atEnd() bool { return s.pos >= len(s.src) }

// cur returns the current byte, or 0 at the end of input.
func (s *scanner) cur() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.pos]
}

// peek reports whether the byte n positions ahead equals c.
func (s *scanner) peek(n int, c byte) bool {
	i := s.pos + n
	return i < len(s.src) && s.src[i] == c
}

// peekBack reports whether the byte n positions behind equals c.
func (s *scanner) peekBack(n int, c byte) bool {
	i := s.pos - n
	return i >= 0 && i < len(s.src) && s.src[i] == c
}

func (s *scanner) advance() {
	if s.atEnd() {
		return
	}
	if s.src[s.pos] == '\n' {
		s.line++
	}
	s.pos++
}

// consume asserts that the current byte is c and moves past it.
func (s *scanner) consume(c byte) {
	if s.atEnd() || s.src[s.pos] != c {
		s.fail(c)
	}
	s.advance()
}

func (s *scanner) fail(expected byte) {
	panic(&ParseError{
		Line:     s.line,
		Offset:   s.pos,
		Expected: expected,
		Found:    s.cur(),
		AtEOF:    s.atEnd(),
	})
}

func (s *scanner) failf(msg string) {
	panic(&ParseError{Line: s.line, Offset: s.pos, Found: s.cur(), AtEOF: s.atEnd(), Msg: msg})
}

// scanUntil returns the bytes up to the first one contained in stop.
func (s *scanner) scanUntil(stop string) string {
	start := s.pos
	for !s.atEnd() && strings.IndexByte(stop, s.src[s.pos]) < 0 {
		s.advance()
	}
	return string(s.src[start:s.pos])
}

func (s *scanner) skipBlanks() {
	for s.cur() == ' ' || s.cur() == '\t' {
		s.advance()
	}
}

// atLineStart reports whether only spaces precede the cursor on its line.
func (s *scanner) atLineStart() bool {
	i := s.pos - 1
	for i >= 0 && s.src[i] == ' ' {
		i--
	}
	return i < 0 || s.src[i] == '\n'
}

// spacesAt reports whether the n bytes starting at offset are all spaces.
func (s *scanner) spacesAt(offset, n int) bool {
	for i := 0; i < n; i++ {
		if !s.peek(offset+i, ' ') {
			return false
		}
	}
	return true
}

// itemAt reports whether a list marker followed by a space sits at column
// n of the current line, indented by spaces only.
func (s *scanner) itemAt(n int) bool {
	return s.spacesAt(0, n) && (s.peek(n, '*') || s.peek(n, '-')) && s.peek(n+1, ' ')
}
