package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mato/internal/cache"
)

// runCacheCmd manages the diagram cache: path, stats, clear.
func runCacheCmd(args []string, env *Environment) error {
	fs := flag.NewFlagSet("cache", flag.ContinueOnError)
	var path string
	fs.StringVar(&path, "cache", "", "diagram cache database path")
	fs.Usage = func() { printCacheUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return flagError(err)
	}
	if fs.NArg() != 1 {
		return usageError("cache needs one of: path, stats, clear")
	}

	path, err := resolveCachePath(path)
	if err != nil {
		return err
	}

	switch sub := fs.Arg(0); sub {
	case "path":
		fmt.Fprintln(env.Stdout, path)
		return nil
	case "stats", "clear":
		d, err := cache.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = d.Close() }()

		if sub == "stats" {
			fmt.Fprintf(env.Stdout, "%s: %d diagrams\n", path, d.Len())
			return nil
		}
		n := d.Len()
		if err := d.Clear(); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Fprintf(env.Stdout, "Removed %d diagrams from %s\n", n, path)
		return nil
	default:
		return usageError("unknown cache command %q (want path, stats or clear)", sub)
	}
}

// resolveCachePath picks the --cache flag, then MATO_CACHE, then the
// default location.
func resolveCachePath(flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if p := os.Getenv("MATO_CACHE"); p != "" {
		return p, nil
	}
	return cache.DefaultPath()
}
