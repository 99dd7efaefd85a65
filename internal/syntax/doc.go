// Package syntax defines the document tree produced by the parser and
// consumed by the pipeline and the renderers.
//
// A tree is built from values implementing Node. Sibling sequences are
// chains of Cat nodes; Empty is the identity element of Cat. The root of
// every parsed document is a Document carrying the DocType discovered from
// the source's meta-data block.
//
// Nodes are immutable values. Passes that rewrite the tree rebuild it
// bottom-up with Transform instead of mutating nodes in place.
package syntax
