package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alnah/go-mato/internal/fileutil"
)

// watchDebounce is how long watch mode lets the events of one save
// settle before recompiling.
const watchDebounce = 100 * time.Millisecond

// watchTarget is what watch mode follows: the discovered files and, for
// a directory input, where sources created later are compiled to.
type watchTarget struct {
	inputPath string
	outputDir string
	ext       string
	files     []FileToConvert
}

// watchFiles compiles the target's files, then recompiles every source
// written or created under it until ctx is canceled. Failures are logged
// and watching goes on.
func watchFiles(ctx context.Context, pool Pool, target watchTarget, params *conversionParams, debounce time.Duration) error {
	logger := params.logger

	info, err := os.Stat(target.inputPath)
	if err != nil {
		return err
	}
	isDir := info.IsDir()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if isDir {
		err = filepath.WalkDir(target.inputPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return watcher.Add(path)
			}
			return nil
		})
	} else {
		// Editors that save by rename replace the file, so its directory
		// is watched instead.
		err = watcher.Add(filepath.Dir(target.inputPath))
	}
	if err != nil {
		return fmt.Errorf("watching %s: %w", target.inputPath, err)
	}

	known := make(map[string]FileToConvert, len(target.files))
	outputs := make(map[string]struct{}, len(target.files))
	for _, f := range target.files {
		known[filepath.Clean(f.InputPath)] = f
		outputs[filepath.Clean(f.OutputPath)] = struct{}{}
	}

	// resolve maps an event path to the file it recompiles. Outputs are
	// never sources, or a markdown target would recompile itself forever.
	resolve := func(path string) (FileToConvert, bool) {
		if f, ok := known[path]; ok {
			return f, true
		}
		if !isDir {
			return FileToConvert{}, false
		}
		if _, ok := outputs[path]; ok {
			return FileToConvert{}, false
		}
		if _, ok := sourceExtensions[filepath.Ext(path)]; !ok {
			return FileToConvert{}, false
		}
		out := resolveOutputPath(path, target.outputDir, target.inputPath, target.ext)
		if out == path {
			return FileToConvert{}, false
		}
		f := FileToConvert{InputPath: path, OutputPath: out}
		known[path] = f
		outputs[filepath.Clean(out)] = struct{}{}
		logger.Debug("new source", "path", path)
		return f, true
	}

	// printResults leaves a lone failure to its caller; here it is logged.
	report := func(results []ConversionResult) {
		if len(results) == 1 && results[0].Err != nil {
			logger.Error("failed", "input", results[0].InputPath, "err", results[0].Err)
		}
		printResults(results, logger)
	}

	report(convertBatch(ctx, pool, target.files, params))
	logger.Info("watching", "files", len(known))

	pending := make(map[string]FileToConvert)
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("watch stopped")
			return nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch", "err", err)

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			path := filepath.Clean(ev.Name)
			if isDir && ev.Has(fsnotify.Create) {
				if st, err := os.Stat(path); err == nil && st.IsDir() {
					if err := watcher.Add(path); err != nil {
						logger.Warn("watch", "path", path, "err", err)
					}
					continue
				}
			}
			f, ok := resolve(path)
			if !ok {
				continue
			}
			pending[path] = f
			timer.Reset(debounce)

		case <-timer.C:
			changed := make([]FileToConvert, 0, len(pending))
			for path, f := range pending {
				// A rename-save may still be in flight.
				if fileutil.FileExists(path) {
					changed = append(changed, f)
				}
			}
			clear(pending)
			if len(changed) == 0 {
				continue
			}
			sort.Slice(changed, func(i, j int) bool { return changed[i].InputPath < changed[j].InputPath })
			report(convertBatch(ctx, pool, changed, params))
		}
	}
}
