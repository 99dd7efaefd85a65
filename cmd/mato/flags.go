package main

import (
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// typesetFlags holds troff typesetting flags.
type typesetFlags struct {
	lang            string
	preamble        string
	skipPreamble    bool
	oldStyleFigures bool
	manSection      string
}

// assetFlags holds asset-related flags (styles, preambles, asset path).
type assetFlags struct {
	style     string
	assetPath string
}

// dumpFlags holds flags exposing the intermediate text.
type dumpFlags struct {
	stdout bool // --dump
	file   bool // --dump-file
	noPDF  bool // --no-pdf
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common  commonFlags
	output  string
	to      string
	engine  string
	workers int
	timeout string
	watch   bool
	cache   string
	typeset typesetFlags
	assets  assetFlags
	dump    dumpFlags

	// set records the flags given on the command line, so that only
	// those override config and environment values.
	set map[string]bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common  commonFlags
	addr    string
	to      string
	workers int
	timeout string
	maxBody int64
	cache   string
	typeset typesetFlags
	assets  assetFlags
	set     map[string]bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addTypesetFlags adds troff typesetting flags to a FlagSet.
func addTypesetFlags(fs *flag.FlagSet, f *typesetFlags) {
	fs.StringVarP(&f.lang, "lang", "l", "", "groff hyphenation language, as in -mden (default: den)")
	fs.StringVar(&f.preamble, "preamble", "", "preamble name or .mom file path")
	fs.BoolVar(&f.skipPreamble, "skip-preamble", false, "omit the preamble from mom output")
	fs.BoolVar(&f.oldStyleFigures, "old-style-figures", false, "typeset digits as old-style figures")
	fs.StringVar(&f.manSection, "man-section", "", "manual section for man and mandoc output (default: 7)")
}

// addAssetFlags adds asset-related flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.style, "style", "", "CSS style name or file path (html, browser engine)")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// addDumpFlags adds dump flags to a FlagSet.
func addDumpFlags(fs *flag.FlagSet, f *dumpFlags) {
	fs.BoolVar(&f.stdout, "dump", false, "write the generated groff to stdout")
	fs.BoolVar(&f.file, "dump-file", false, "write the generated groff next to the source")
	fs.BoolVar(&f.noPDF, "no-pdf", false, "skip PDF generation (implies --dump)")
}

// flagError marks parse failures as usage errors. ErrHelp passes
// through unchanged.
func flagError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// visited returns the names of the flags set on the command line.
func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// newConvertFlagSet registers the convert flags into f. Completion
// scripts are generated from the same set.
func newConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory (- for stdout)")
	fs.StringVarP(&f.to, "to", "T", "", "backend: pdf, mom, man, mandoc, tex, md, html, dot, svg")
	fs.StringVarP(&f.engine, "engine", "e", "", "PDF engine: groff, browser")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "compilation timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.watch, "watch", false, "recompile when a source changes")
	fs.StringVar(&f.cache, "cache", "", "diagram cache database path")

	addCommonFlags(fs, &f.common)
	addTypesetFlags(fs, &f.typeset)
	addAssetFlags(fs, &f.assets)
	addDumpFlags(fs, &f.dump)

	fs.Usage = func() { printConvertUsage(os.Stderr) }
	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet(f)

	if err := fs.Parse(args); err != nil {
		return nil, nil, flagError(err)
	}
	f.set = visited(fs)

	return f, fs.Args(), nil
}

func newServeFlagSet(f *serveFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default: localhost:8080)")
	fs.StringVarP(&f.to, "to", "T", "", "backend when the request names none (default: pdf)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "compilers per backend (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-request compilation timeout")
	fs.Int64Var(&f.maxBody, "max-body", 0, "maximum request body in bytes (0 = 4 MiB)")
	fs.StringVar(&f.cache, "cache", "", "diagram cache database path")

	addCommonFlags(fs, &f.common)
	addTypesetFlags(fs, &f.typeset)
	addAssetFlags(fs, &f.assets)

	fs.Usage = func() { printServeUsage(os.Stderr) }
	return fs
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string) (*serveFlags, error) {
	f := &serveFlags{}
	fs := newServeFlagSet(f)

	if err := fs.Parse(args); err != nil {
		return nil, flagError(err)
	}
	if fs.NArg() > 0 {
		return nil, usageError("serve takes no arguments, got %q", fs.Arg(0))
	}
	f.set = visited(fs)

	return f, nil
}
