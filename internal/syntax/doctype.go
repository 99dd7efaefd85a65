package syntax

import "strings"

// DocType selects the document-level layout of the primary backend.
type DocType int

// Document kinds.
const (
	Default DocType = iota
	Chapter
	Slides
	Letter
)

// String returns the upper-case directive name of the document kind.
func (d DocType) String() string {
	switch d {
	case Chapter:
		return "CHAPTER"
	case Slides:
		return "SLIDES"
	case Letter:
		return "LETTER"
	default:
		return "DEFAULT"
	}
}

// ParseDocType maps a doctype meta-data value to a DocType.
// Matching is case-insensitive; unknown values yield Default.
func ParseDocType(s string) DocType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CHAPTER":
		return Chapter
	case "SLIDES":
		return Slides
	case "LETTER":
		return Letter
	default:
		return Default
	}
}
