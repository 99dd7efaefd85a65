// Package mato compiles mato documents, a lightweight markup close to
// Markdown, into groff mom programs and PDF, manual pages, TeX,
// HTML, and back into canonical mato source.
//
// # Quick Start
//
// Create a compiler, compile a document, and close when done:
//
//	c, err := mato.NewCompiler()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	res, err := c.Compile(ctx, mato.Input{
//	    Source:     src,
//	    SourcePath: "notes.mato",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("notes.pdf", res.Output, 0o644)
//
// # Compilation Pipeline
//
//  1. Parsing into a syntax tree (syntax errors carry line and byte offset)
//  2. Canonicalization: empty nodes removed, bold/italic nestings merged
//  3. Image paths resolved against the source directory
//  4. Diagram code blocks ("pic") rendered by external tools
//  5. Rendering by the selected backend
//  6. Typesetting: groff -Tpdf -mom, or goldmark and headless Chrome
//
// The markdown backend skips stages 2 to 4 so that formatting a document
// preserves it exactly.
//
// # Backends
//
//	pdf     mom program typeset by groff (or HTML printed by Chrome)
//	mom     the groff mom program itself
//	man     man(7) page
//	mandoc  mdoc(7) page
//	tex     LaTeX body
//	md      canonical mato source, wrapped at 68 columns
//	html    standalone HTML page
//	dot     the syntax tree as a Graphviz digraph
//	svg     the syntax tree laid out by Graphviz
//
// # Preambles
//
// The mom backend prepends a preamble of style macros. Unless one is
// given with WithPreamble, the first of these is used: preamble.mom next
// to the source file, preamble.mom in the user config directory
// (~/.config/mato on Linux), the embedded default.
//
// # Parallel Processing
//
// For batch compilation, use CompilerPool:
//
//	pool := mato.NewCompilerPool(mato.ResolvePoolSize(0))
//	defer pool.Close()
//
//	c, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(c)
//	res, err := c.Compile(ctx, input)
//
// # External Tools
//
// PDF output needs groff with the mom macros; pic blocks need pic.
// The browser engine needs Chrome/Chromium, which go-rod downloads on
// first run (~/.cache/rod/browser/). Set ROD_BROWSER_BIN to use an
// installed binary and ROD_NO_SANDBOX=1 in containers.
package mato
