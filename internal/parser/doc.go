// Package parser turns mato markup into a syntax tree.
//
// The parser is a byte-oriented recursive-descent scanner with two entry
// modes. Complete mode recognizes block constructs (headings, lists,
// meta-data blocks, images, paragraph breaks) as well as inline markup.
// Format mode recognizes inline markup only and is used inside link text.
// Both modes dispatch on the current byte; anything else is collected into
// a literal run that stops at the next byte able to start a construct or
// at a caller-supplied break set.
//
// Malformed input stops the parse at the first offending byte. Parse
// reports it as a *ParseError carrying the line number and byte offset.
package parser
