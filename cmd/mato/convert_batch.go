package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/alnah/go-mato"
	"github.com/alnah/go-mato/internal/fileutil"
)

// File permission constants.
const (
	dirPermissions = 0o750 // rwxr-x---: owner full, group read+execute
)

// Sentinel errors for batch operations.
var (
	ErrReadSource      = errors.New("failed to read source file")
	ErrWriteOutput     = errors.New("failed to write output file")
	ErrCreateOutputDir = errors.New("failed to create output directory")
	ErrCompilerInit    = errors.New("failed to initialize compiler")
)

// Compiler is the interface for the compilation service.
type Compiler interface {
	Compile(ctx context.Context, input mato.Input) (*mato.Result, error)
}

// Compile-time interface implementation check.
var _ Compiler = (*mato.Compiler)(nil)

// Pool abstracts compiler pool operations for testability.
type Pool interface {
	Acquire() (Compiler, error)
	Release(Compiler)
	Size() int
}

// poolAdapter adapts *mato.CompilerPool to Pool.
type poolAdapter struct {
	pool *mato.CompilerPool
}

func (a *poolAdapter) Acquire() (Compiler, error) {
	c, err := a.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (a *poolAdapter) Release(c Compiler) {
	mc, ok := c.(*mato.Compiler)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", c))
	}
	a.pool.Release(mc)
}

func (a *poolAdapter) Size() int { return a.pool.Size() }

// conversionParams groups parameters shared across batch/file conversion.
type conversionParams struct {
	engine     mato.Engine
	dumpStdout bool
	dumpFile   bool
	skipOutput bool // --no-pdf: only the dump is written

	stdin  io.Reader
	stdout io.Writer // shared by workers; must be safe for concurrent use
	logger *log.Logger
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	DumpPath   string
	Warnings   []error
	Err        error
	Duration   time.Duration
}

// syncWriter serializes writes from concurrent workers.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// convertBatch processes files concurrently using the compiler pool.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			c, err := pool.Acquire()
			if err != nil {
				// Compiler creation failed, mark remaining jobs as failed
				for idx := range jobs {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       fmt.Errorf("%w: %w", ErrCompilerInit, err),
					}
				}
				return
			}
			defer pool.Release(c)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, c, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile compiles a single file and writes its output and dumps.
func convertFile(ctx context.Context, c Compiler, f FileToConvert, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	fail := func(err error) ConversionResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	input, err := readSource(f.InputPath, params.stdin)
	if err != nil {
		return fail(err)
	}

	res, err := c.Compile(ctx, input)
	if err != nil {
		return fail(err)
	}
	result.Warnings = res.Warnings

	if params.dumpStdout {
		text, _ := dumpArtifact(res, params.engine)
		if _, err := params.stdout.Write(text); err != nil {
			return fail(fmt.Errorf("%w: stdout: %v", ErrWriteOutput, err))
		}
	}

	if params.dumpFile && f.InputPath != stdinPath {
		text, ext := dumpArtifact(res, params.engine)
		dumpPath := fileutil.ReplaceExt(f.InputPath, ext)
		if dumpPath != f.InputPath && (dumpPath != f.OutputPath || params.skipOutput) {
			if err := writeOutput(dumpPath, text, params.stdout); err != nil {
				return fail(err)
			}
			result.DumpPath = dumpPath
		}
	}

	if params.skipOutput {
		result.OutputPath = ""
	} else if err := writeOutput(f.OutputPath, res.Output, params.stdout); err != nil {
		return fail(err)
	}

	result.Duration = time.Since(start)
	return result
}

// readSource reads a document from path, or from stdin for "-".
func readSource(path string, stdin io.Reader) (mato.Input, error) {
	if path == stdinPath {
		src, err := io.ReadAll(stdin)
		if err != nil {
			return mato.Input{}, fmt.Errorf("%w: stdin: %v", ErrReadSource, err)
		}
		return mato.Input{Source: src}, nil
	}

	src, err := os.ReadFile(path) // #nosec G304 -- discovered path
	if err != nil {
		return mato.Input{}, fmt.Errorf("%w: %w", ErrReadSource, err)
	}
	return mato.Input{Source: src, SourcePath: path}, nil
}

// writeOutput writes data to path, or to stdout for "-".
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == stdinPath {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("%w: stdout: %v", ErrWriteOutput, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrCreateOutputDir, err)
	}
	if err := fileutil.WriteOutput(path, data); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// dumpArtifact returns the text --dump exposes and the extension it is
// saved under: the engine input behind a PDF, the DOT graph behind an
// SVG, or the output itself for text backends.
func dumpArtifact(res *mato.Result, engine mato.Engine) ([]byte, string) {
	switch {
	case res.Backend == mato.BackendPDF && engine == mato.EngineBrowser:
		return res.Intermediate, ".html"
	case res.Backend == mato.BackendPDF:
		return res.Intermediate, mato.BackendMom.Ext()
	case res.Backend == mato.BackendSVG:
		return res.Intermediate, mato.BackendDot.Ext()
	}
	return res.Output, res.Backend.Ext()
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults logs conversion results and returns the failure count.
// A lone failure is left to the caller, which reports it with a hint.
func printResults(results []ConversionResult, logger *log.Logger) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			if len(results) > 1 {
				logger.Error("failed", "input", r.InputPath, "err", r.Err)
			}
			continue
		}
		for _, w := range r.Warnings {
			logger.Warn(w.Error(), "input", r.InputPath)
		}
		if r.DumpPath != "" {
			logger.Info("dumped", "path", r.DumpPath)
		}
		if r.OutputPath != "" && r.OutputPath != stdinPath {
			logger.Info("created", "path", r.OutputPath)
		}
		logger.Debug("compiled", "input", r.InputPath, "duration", r.Duration.Round(time.Millisecond))
	}

	if len(results) > 1 {
		logger.Infof("%d succeeded, %d failed", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}
