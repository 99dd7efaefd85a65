// Package pipeline implements the tree rewrites applied between parsing and
// rendering, and the HTML stages of the browser backend.
//
// The tree stages run in a fixed order:
//   - Canonicalize: erase Empty nodes, merge nested styles, apply glyph
//     substitutions and escape preformatted text
//   - ImageConverter: make image paths absolute against the source directory
//   - CodeBlockProcessor: replace diagram code blocks by the output of an
//     external diagram tool
//
// The HTML stages convert CommonMark produced by the render package to HTML
// via Goldmark, resolve placeholders, inject a stylesheet and rewrite
// relative paths to file:// URLs for the browser engine.
package pipeline
