package mato

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/alnah/go-mato/internal/pipeline"
	"github.com/alnah/go-mato/internal/process"
	"github.com/alnah/go-mato/internal/render"
	"github.com/alnah/go-mato/internal/syntax"
)

// Backend selects the output format of a compilation.
type Backend string

const (
	BackendPDF      Backend = "pdf"
	BackendMom      Backend = "mom"
	BackendMan      Backend = "man"
	BackendMandoc   Backend = "mandoc"
	BackendTeX      Backend = "tex"
	BackendMarkdown Backend = "md"
	BackendHTML     Backend = "html"
	BackendDot      Backend = "dot"
	BackendSVG      Backend = "svg"
)

// Backends lists every supported backend, PDF first.
func Backends() []Backend {
	return []Backend{
		BackendPDF, BackendMom, BackendMan, BackendMandoc, BackendTeX,
		BackendMarkdown, BackendHTML, BackendDot, BackendSVG,
	}
}

// ParseBackend maps a backend name to a Backend. Matching ignores case
// and surrounding blanks; "markdown" is accepted for "md".
func ParseBackend(s string) (Backend, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "markdown" {
		return BackendMarkdown, nil
	}
	for _, b := range Backends() {
		if string(b) == name {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidBackend, s)
}

// Binary reports whether the backend produces non-text output.
func (b Backend) Binary() bool {
	return b == BackendPDF
}

// Ext returns the conventional file extension for the backend's output,
// including the dot.
func (b Backend) Ext() string {
	switch b {
	case BackendMom:
		return ".groff"
	case BackendMan:
		return ".7"
	case BackendMandoc:
		return ".mdoc"
	case BackendMarkdown:
		return ".md"
	}
	return "." + string(b)
}

// troff reports whether the backend's text is troff source.
func (b Backend) troff() bool {
	switch b {
	case BackendMom, BackendMan, BackendMandoc:
		return true
	}
	return false
}

// Engine selects how the PDF backend typesets.
type Engine string

const (
	// EngineGroff feeds the mom program to groff.
	EngineGroff Engine = "groff"
	// EngineBrowser prints the HTML rendition with headless Chrome.
	EngineBrowser Engine = "browser"
)

// ParseEngine maps an engine name to an Engine.
func ParseEngine(s string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(s))); e {
	case EngineGroff, EngineBrowser:
		return e, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidEngine, s)
}

// DefaultLanguage is the groff hyphenation macro package suffix, as in
// -mden.
const DefaultLanguage = "den"

// Input is one document to compile.
type Input struct {
	// Source is the document text.
	Source []byte

	// SourcePath locates the document on disk. It is optional; when set,
	// relative image paths resolve against its directory and a
	// preamble.mom next to it takes precedence over the configured one.
	SourcePath string
}

// Result is the output of a compilation.
type Result struct {
	Output  []byte
	Backend Backend
	DocType syntax.DocType
	Title   string

	// Intermediate is the text the final conversion consumed: the mom
	// program or HTML page behind a PDF, the DOT graph behind an SVG.
	// It is nil for text backends.
	Intermediate []byte

	// Warnings holds non-fatal problems, such as diagrams that failed to
	// render. The output is still complete.
	Warnings []error
}

// Option configures a Compiler.
type Option func(*Compiler)

// compilerConfig holds internal configuration for Compiler.
type compilerConfig struct {
	backend         Backend
	engine          Engine
	language        string
	preamble        string
	preambleSet     bool
	preambleName    string
	assetPath       string
	skipPreamble    bool
	oldStyleFigures bool
	manSection      string
	style           string
	timeout         time.Duration
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithBackend selects the output format. The default is BackendPDF.
func WithBackend(b Backend) Option {
	return func(c *Compiler) {
		c.cfg.backend = b
	}
}

// WithEngine selects the PDF engine. The default is EngineGroff.
func WithEngine(e Engine) Option {
	return func(c *Compiler) {
		c.cfg.engine = e
	}
}

// WithLanguage sets the groff hyphenation language (the x in -mx).
func WithLanguage(lang string) Option {
	return func(c *Compiler) {
		c.cfg.language = lang
	}
}

// WithPreamble fixes the mom preamble, bypassing preamble discovery.
func WithPreamble(content string) Option {
	return func(c *Compiler) {
		c.cfg.preamble = content
		c.cfg.preambleSet = true
	}
}

// WithPreambleName loads the mom preamble by name from the asset path,
// falling back to the embedded preambles ("default", "slides").
func WithPreambleName(name string) Option {
	return func(c *Compiler) {
		c.cfg.preambleName = name
	}
}

// WithAssetPath adds a directory of custom assets, laid out as
// preambles/*.mom and styles/*.css, searched before the embedded ones.
func WithAssetPath(dir string) Option {
	return func(c *Compiler) {
		c.cfg.assetPath = dir
	}
}

// WithSkipPreamble omits the preamble from mom output.
func WithSkipPreamble(skip bool) Option {
	return func(c *Compiler) {
		c.cfg.skipPreamble = skip
	}
}

// WithOldStyleFigures typesets body digits as old-style figures.
func WithOldStyleFigures(on bool) Option {
	return func(c *Compiler) {
		c.cfg.oldStyleFigures = on
	}
}

// WithManSection sets the manual section of mandoc output.
func WithManSection(section string) Option {
	return func(c *Compiler) {
		c.cfg.manSection = section
	}
}

// WithStyle selects the CSS of HTML output: a style name, a file path
// or literal CSS.
func WithStyle(style string) Option {
	return func(c *Compiler) {
		c.cfg.style = style
	}
}

// WithRunner replaces the command runner used for groff.
func WithRunner(r process.Runner) Option {
	return func(c *Compiler) {
		c.runner = r
	}
}

// WithDiagramRunner replaces the command runner used for diagram tools.
func WithDiagramRunner(r process.Runner) Option {
	return func(c *Compiler) {
		c.diagramRunner = r
	}
}

// WithDiagramCache stores rendered diagrams across compilations.
func WithDiagramCache(cache pipeline.DiagramCache) Option {
	return func(c *Compiler) {
		c.cache = cache
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(c *Compiler) {
		c.logger = l
	}
}

// WithTimeout bounds each Compile call.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("mato: WithTimeout duration must be positive")
	}
	return func(c *Compiler) {
		c.cfg.timeout = d
	}
}

// withPDFEngine injects the PDF engine (tests).
func withPDFEngine(e pdfEngine) Option {
	return func(c *Compiler) {
		c.pdf = e
	}
}

// rendererFor builds the renderer of a text backend.
func (c *Compiler) rendererFor(b Backend, preamble string) render.Renderer {
	switch b {
	case BackendPDF, BackendMom:
		return &render.Mom{Preamble: preamble, SkipPreamble: c.cfg.skipPreamble}
	case BackendMan:
		return &render.Man{}
	case BackendMandoc:
		return &render.Mandoc{Section: c.cfg.manSection}
	case BackendTeX:
		return &render.TeX{}
	case BackendMarkdown:
		return &render.Markdown{}
	case BackendHTML:
		return &render.HTML{}
	case BackendDot, BackendSVG:
		return &render.Dot{}
	}
	return nil
}
