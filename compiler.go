package mato

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/alnah/go-mato/internal/assets"
	"github.com/alnah/go-mato/internal/fileutil"
	"github.com/alnah/go-mato/internal/parser"
	"github.com/alnah/go-mato/internal/pipeline"
	"github.com/alnah/go-mato/internal/process"
	"github.com/alnah/go-mato/internal/render"
	"github.com/alnah/go-mato/internal/syntax"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.HTMLConverter = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector   = (*pipeline.CSSInjection)(nil)
	_ pdfEngine              = (*groffEngine)(nil)
	_ pdfEngine              = (*rodEngine)(nil)
)

// Compiler turns mato source into one output format.
// Create with NewCompiler, use Compile, and Close when done.
//
// A Compiler holds no per-document state; Compile may be called from
// several goroutines.
type Compiler struct {
	cfg           compilerConfig
	loader        assets.AssetLoader
	runner        process.Runner
	diagramRunner process.Runner
	cache         pipeline.DiagramCache
	logger        *log.Logger
	htmlConverter pipeline.HTMLConverter
	cssInjector   pipeline.CSSInjector
	pdf           pdfEngine
	configDir     string // searched for preamble.mom
	style         string // resolved CSS for HTML output
}

// NewCompiler creates a Compiler. Without options it produces PDF
// through groff.
func NewCompiler(opts ...Option) (*Compiler, error) {
	c := &Compiler{
		cfg: compilerConfig{
			backend:    BackendPDF,
			engine:     EngineGroff,
			language:   DefaultLanguage,
			manSection: render.DefaultManSection,
			timeout:    defaultTimeout,
		},
		htmlConverter: pipeline.NewGoldmarkConverter(),
		cssInjector:   &pipeline.CSSInjection{},
		configDir:     assets.UserConfigDir(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	if c.runner == nil {
		c.runner = &process.ExecRunner{}
	}
	if c.diagramRunner == nil {
		c.diagramRunner = c.runner
	}

	resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("asset path: %w", err)
	}
	c.loader = resolver

	if c.htmlBased() {
		if err := c.resolveStyle(); err != nil {
			return nil, err
		}
	}

	if c.pdf == nil && c.cfg.backend == BackendPDF {
		switch c.cfg.engine {
		case EngineBrowser:
			c.pdf = newRodEngine(c.cfg.timeout)
		default:
			c.pdf = &groffEngine{runner: c.runner, language: c.cfg.language, logger: c.logger}
		}
	}

	return c, nil
}

// Backend returns the configured output format.
func (c *Compiler) Backend() Backend {
	return c.cfg.backend
}

// Compile parses, processes and renders one document.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Compiler) Compile(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	logger := c.logger.With("backend", c.cfg.backend)
	if input.SourcePath != "" {
		logger = logger.With("source", input.SourcePath)
	}

	stage := time.Now()
	doc, err := parser.Parse(input.Source)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	logger.Debug("parsed", "doctype", doc.Type, "elapsed", time.Since(stage))

	res := &Result{Backend: c.cfg.backend, DocType: doc.Type}

	stage = time.Now()
	doc, err = c.process(ctx, doc, input, res)
	if err != nil {
		return nil, fmt.Errorf("processing: %w", err)
	}
	logger.Debug("processed", "warnings", len(res.Warnings), "elapsed", time.Since(stage))
	res.Title = render.Title(doc)

	stage = time.Now()
	target := c.target()
	r, err := c.renderer(target, input.SourcePath, logger)
	if err != nil {
		return nil, err
	}
	text, err := r.Render(doc)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", target, err)
	}
	logger.Debug("rendered", "target", target, "bytes", len(text), "elapsed", time.Since(stage))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stage = time.Now()
	res.Output, res.Intermediate, err = c.finish(ctx, text, res.Title, input.SourcePath)
	if err != nil {
		return nil, err
	}
	logger.Debug("finished", "bytes", len(res.Output), "elapsed", time.Since(stage))
	return res, nil
}

// Close releases the PDF engine.
func (c *Compiler) Close() error {
	if c.pdf != nil {
		return c.pdf.Close()
	}
	return nil
}

// target is the text backend rendered before any final conversion.
func (c *Compiler) target() Backend {
	switch {
	case c.cfg.backend == BackendPDF && c.cfg.engine == EngineBrowser:
		return BackendHTML
	case c.cfg.backend == BackendPDF:
		return BackendMom
	}
	return c.cfg.backend
}

// htmlBased reports whether the output goes through goldmark.
func (c *Compiler) htmlBased() bool {
	return c.target() == BackendHTML
}

// process runs the pipeline for the current target. The markdown
// formatter renders the tree as parsed.
func (c *Compiler) process(ctx context.Context, doc syntax.Document, input Input, res *Result) (syntax.Document, error) {
	target := c.target()
	if target == BackendMarkdown {
		return doc, nil
	}

	opts := pipeline.Options{Escaping: pipeline.EscapeNone, OldStyleFigures: c.cfg.oldStyleFigures}
	if input.SourcePath != "" && target != BackendHTML && target != BackendDot && target != BackendSVG {
		dir, err := filepath.Abs(filepath.Dir(input.SourcePath))
		if err != nil {
			return syntax.Document{}, err
		}
		opts.SourceDir = dir
	}
	if target.troff() {
		opts.Escaping = pipeline.EscapeTroff
		diagrams := pipeline.NewCodeBlockProcessor(c.diagramRunner)
		diagrams.Cache = c.cache
		diagrams.Logger = c.logger
		diagrams.Diagnostics = func(err error) {
			res.Warnings = append(res.Warnings, err)
		}
		opts.Diagrams = diagrams
	}

	out, err := pipeline.DefaultChain(opts).Process(ctx, doc)
	if err != nil {
		return syntax.Document{}, err
	}
	return out.(syntax.Document), nil
}

func (c *Compiler) renderer(target Backend, sourcePath string, logger *log.Logger) (render.Renderer, error) {
	if target != BackendMom || c.cfg.skipPreamble {
		return c.rendererFor(target, ""), nil
	}
	preamble, err := c.preamble(sourcePath, logger)
	if err != nil {
		return nil, err
	}
	return c.rendererFor(target, preamble), nil
}

// preamble picks, in order: the WithPreamble content, the named
// preamble, then preamble.mom next to the source, in the config
// directory, or embedded.
func (c *Compiler) preamble(sourcePath string, logger *log.Logger) (string, error) {
	if c.cfg.preambleSet {
		return c.cfg.preamble, nil
	}
	if c.cfg.preambleName != "" {
		s, err := c.loader.LoadPreamble(c.cfg.preambleName)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrPreambleRead, err)
		}
		return s, nil
	}
	p, err := assets.FindPreamble(sourcePath, c.configDir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPreambleRead, err)
	}
	logger.Debug("preamble", "from", p.Source, "path", p.Path)
	return p.Content, nil
}

// finish converts rendered text into the final output. For binary and
// laid-out backends it also returns the text handed to the converter.
func (c *Compiler) finish(ctx context.Context, text, title, sourcePath string) (out, intermediate []byte, err error) {
	switch c.cfg.backend {
	case BackendPDF:
		src := text
		if c.cfg.engine == EngineBrowser {
			if src, err = c.toHTML(ctx, text, title, sourcePath, true); err != nil {
				return nil, nil, err
			}
		}
		pdf, err := c.pdf.ToPDF(ctx, src)
		if err != nil {
			return nil, nil, fmt.Errorf("converting to PDF: %w", err)
		}
		return pdf, []byte(src), nil
	case BackendHTML:
		page, err := c.toHTML(ctx, text, title, sourcePath, false)
		if err != nil {
			return nil, nil, err
		}
		return []byte(page), nil, nil
	case BackendSVG:
		svg, err := render.SVG(ctx, text)
		if err != nil {
			return nil, nil, fmt.Errorf("rendering SVG: %w", err)
		}
		return svg, []byte(text), nil
	}
	return []byte(text), nil, nil
}

// toHTML runs goldmark and the HTML post-processing. Pages meant for the
// browser engine get file:// URLs for local images.
func (c *Compiler) toHTML(ctx context.Context, md, title, sourcePath string, forBrowser bool) (string, error) {
	page, err := c.htmlConverter.ToHTML(ctx, md, title)
	if err != nil {
		return "", fmt.Errorf("converting to HTML: %w", err)
	}
	page = pipeline.ExpandPlaceholders(page)
	page = c.cssInjector.InjectCSS(ctx, page, c.style)
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	if forBrowser && sourcePath != "" {
		page, err = pipeline.FileURLs(page, filepath.Dir(sourcePath))
		if err != nil {
			return "", fmt.Errorf("rewriting local paths: %w", err)
		}
	}
	return page, nil
}

// resolveStyle resolves the style input (name, path, or CSS content) to CSS content.
func (c *Compiler) resolveStyle() error {
	input := c.cfg.style
	switch {
	case input == "":
		input = assets.DefaultStyleName
	case fileutil.IsFilePath(input):
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrStyleLoad, input, err)
		}
		c.style = string(content)
		return nil
	case fileutil.IsCSS(input):
		c.style = input
		return nil
	}

	css, err := c.loader.LoadStyle(input)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrStyleLoad, input, err)
	}
	c.style = css
	return nil
}

// validate checks the options. It is the trust boundary for library
// users; the CLI validates its configuration earlier.
func (c *Compiler) validate() error {
	if _, err := ParseBackend(string(c.cfg.backend)); err != nil {
		return err
	}
	if _, err := ParseEngine(string(c.cfg.engine)); err != nil {
		return err
	}
	if !ValidLanguage(c.cfg.language) {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, c.cfg.language)
	}
	return nil
}

// ValidLanguage reports whether lang can name a groff hyphenation
// package: one to eight ASCII letters.
func ValidLanguage(lang string) bool {
	if lang == "" || len(lang) > 8 {
		return false
	}
	for _, r := range lang {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
