// Package render turns processed trees into backend text.
//
// # Backends
//
//	Mom       groff mom macros, the input of the PDF engine
//	Man       man(7) pages
//	Mandoc    mdoc(7) pages
//	TeX       LaTeX fragments
//	Markdown  the source dialect itself, used as a formatter
//	HTML      CommonMark handed to goldmark by the browser engine
//	Dot       the tree as a Graphviz graph
//
// Every renderer is safe for concurrent use: per-document state lives in a
// writer created by each Render call. A node type a backend has no mapping
// for is reported as ErrUnsupportedNode.
package render
