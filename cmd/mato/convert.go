package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-mato"
	"github.com/alnah/go-mato/internal/cache"
	"github.com/alnah/go-mato/internal/config"
	"github.com/alnah/go-mato/internal/fileutil"
	"github.com/alnah/go-mato/internal/pipeline"
	"github.com/alnah/go-mato/internal/process"
)

// ErrTerminalOutput is returned when binary output would go to a terminal.
var ErrTerminalOutput = errors.New("refusing to write binary output to a terminal")

// runConvertCmd compiles the documents named on the command line.
func runConvertCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, logLevel(flags.common.quiet, flags.common.verbose))
	ctx = withLogger(ctx, logger)
	setMaxProcs(logger)

	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg, err := loadSettings(flags.common.config, logger)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	mergeConvertFlags(flags, cfg)

	// --no-pdf keeps the groff text and drops the typesetting step.
	if flags.dump.noPDF {
		if cfg.Output.Backend == "" || cfg.Output.Backend == string(mato.BackendPDF) {
			cfg.Output.Backend = string(mato.BackendMom)
		}
		flags.dump.stdout = true
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	return runConvert(ctx, cfg, flags, positional, env)
}

// runConvert discovers the inputs and compiles them once, or keeps
// recompiling them in watch mode.
func runConvert(ctx context.Context, cfg *config.Config, flags *convertFlags, positional []string, env *Environment) error {
	logger := loggerFromContext(ctx)

	backend, engine := resolveBackend(cfg)

	inputPath, err := resolveInputPath(positional, cfg)
	if err != nil {
		return err
	}
	outputDir := resolveOutputDir(flags.output, cfg)

	var files []FileToConvert
	if inputPath == stdinPath {
		out := outputDir
		if out == "" {
			out = stdinPath
		}
		files = []FileToConvert{{InputPath: stdinPath, OutputPath: out}}
	} else {
		files, err = discoverFiles(inputPath, outputDir, backend.Ext())
		if err != nil {
			return fmt.Errorf("discovering files: %w", err)
		}
		if len(files) == 0 {
			return fmt.Errorf("%w: no source files found in %s", ErrNoInput, inputPath)
		}
	}

	if flags.watch && inputPath == stdinPath {
		return usageError("--watch needs a file or directory, not stdin")
	}

	if backend.Binary() && !flags.dump.noPDF && env.IsTerminal != nil && env.IsTerminal(env.Stdout) {
		for _, f := range files {
			if f.OutputPath == stdinPath {
				return fmt.Errorf("%w: use -o to name a %s file", ErrTerminalOutput, backend)
			}
		}
	}

	diagrams, closeCache, err := openDiagramCache(cfg.Diagrams.Cache, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	opts, err := compilerOptions(cfg, env.Runner, diagrams, logger)
	if err != nil {
		return err
	}

	pool := mato.NewCompilerPool(mato.ResolvePoolSize(cfg.Runtime.Workers), opts...)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("closing compilers", "err", err)
		}
	}()
	logger.Debug("compiler pool", "size", pool.Size(), "backend", backend, "engine", engine)

	// Surface option errors once instead of once per file.
	c, err := pool.Acquire()
	if err != nil {
		return err
	}
	pool.Release(c)

	params := &conversionParams{
		engine:     engine,
		dumpStdout: flags.dump.stdout,
		dumpFile:   flags.dump.file,
		skipOutput: flags.dump.noPDF,
		stdin:      env.Stdin,
		stdout:     &syncWriter{w: env.Stdout},
		logger:     logger,
	}
	adapter := &poolAdapter{pool: pool}

	if flags.watch {
		target := watchTarget{inputPath: inputPath, outputDir: outputDir, ext: backend.Ext(), files: files}
		return watchFiles(ctx, adapter, target, params, watchDebounce)
	}

	prog := newProgress(logger)
	results := convertBatch(ctx, adapter, files, params)
	failed := printResults(results, logger)
	if failed > 0 {
		if len(results) == 1 {
			return results[0].Err
		}
		return fmt.Errorf("%d compilation(s) failed", failed)
	}
	if len(results) > 1 {
		prog.done(fmt.Sprintf("Compiled %d documents", len(results)))
	}
	return nil
}

// resolveBackend returns the validated backend and engine of cfg with
// their defaults applied.
func resolveBackend(cfg *config.Config) (mato.Backend, mato.Engine) {
	backend := mato.BackendPDF
	if cfg.Output.Backend != "" {
		backend, _ = mato.ParseBackend(cfg.Output.Backend)
	}
	engine := mato.EngineGroff
	if cfg.Output.Engine != "" {
		engine, _ = mato.ParseEngine(cfg.Output.Engine)
	}
	return backend, engine
}

// mergeConvertFlags merges CLI flags into config. Only flags given on
// the command line override config and environment values.
func mergeConvertFlags(flags *convertFlags, cfg *config.Config) {
	set := flags.set
	if set["to"] {
		cfg.Output.Backend = flags.to
	}
	if set["engine"] {
		cfg.Output.Engine = flags.engine
	}
	if set["workers"] {
		cfg.Runtime.Workers = flags.workers
	}
	if set["timeout"] {
		cfg.Runtime.Timeout = flags.timeout
	}
	if set["cache"] {
		cfg.Diagrams.Cache = flags.cache
	}
	mergeTypesetFlags(set, &flags.typeset, &flags.assets, cfg)
}

// mergeTypesetFlags merges the typesetting and asset flags shared by
// convert and serve.
func mergeTypesetFlags(set map[string]bool, t *typesetFlags, a *assetFlags, cfg *config.Config) {
	if set["lang"] {
		cfg.Typeset.Language = t.lang
	}
	if set["preamble"] {
		cfg.Typeset.Preamble = t.preamble
	}
	if set["skip-preamble"] {
		cfg.Typeset.SkipPreamble = t.skipPreamble
	}
	if set["old-style-figures"] {
		cfg.Typeset.OldStyleFigures = t.oldStyleFigures
	}
	if set["man-section"] {
		cfg.Typeset.ManSection = t.manSection
	}
	if set["style"] {
		cfg.HTML.Style = a.style
	}
	if set["asset-path"] {
		cfg.Assets.BasePath = a.assetPath
	}
}

// compilerOptions translates cfg into compiler options. A later
// WithBackend overrides the configured backend.
func compilerOptions(cfg *config.Config, runner process.Runner, diagrams pipeline.DiagramCache, logger *log.Logger) ([]mato.Option, error) {
	backend, engine := resolveBackend(cfg)
	opts := []mato.Option{
		mato.WithBackend(backend),
		mato.WithEngine(engine),
		mato.WithSkipPreamble(cfg.Typeset.SkipPreamble),
		mato.WithOldStyleFigures(cfg.Typeset.OldStyleFigures),
		mato.WithLogger(logger),
	}

	if cfg.Typeset.Language != "" {
		opts = append(opts, mato.WithLanguage(cfg.Typeset.Language))
	}
	if p := cfg.Typeset.Preamble; p != "" {
		if fileutil.IsFilePath(p) {
			content, err := os.ReadFile(p) // #nosec G304 -- user-provided path
			if err != nil {
				return nil, fmt.Errorf("%w: %v", mato.ErrPreambleRead, err)
			}
			opts = append(opts, mato.WithPreamble(string(content)))
		} else {
			opts = append(opts, mato.WithPreambleName(p))
		}
	}
	if cfg.Typeset.ManSection != "" {
		opts = append(opts, mato.WithManSection(cfg.Typeset.ManSection))
	}
	if cfg.HTML.Style != "" {
		opts = append(opts, mato.WithStyle(cfg.HTML.Style))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, mato.WithAssetPath(cfg.Assets.BasePath))
	}
	if d := cfg.Timeout(); d > 0 {
		opts = append(opts, mato.WithTimeout(d))
	}
	if runner != nil {
		opts = append(opts, mato.WithRunner(runner))
	}
	if diagrams != nil {
		opts = append(opts, mato.WithDiagramCache(diagrams))
	}
	return opts, nil
}

// openDiagramCache opens the diagram cache at path. An empty path means
// no cache; the returned close func is always safe to call.
func openDiagramCache(path string, logger *log.Logger) (pipeline.DiagramCache, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	d, err := cache.Open(path)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("diagram cache", "path", path)
	return d, func() {
		if err := d.Close(); err != nil {
			logger.Warn("closing diagram cache", "err", err)
		}
	}, nil
}

// setMaxProcs matches GOMAXPROCS to the container CPU quota.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func setMaxProcs(logger *log.Logger) {
	_, _ = maxprocs.Set(maxprocs.Logger(logger.Debugf))
}
