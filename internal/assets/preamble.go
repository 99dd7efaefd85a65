package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// PreambleFileName is the file FindPreamble looks for.
const PreambleFileName = "preamble.mom"

// PreambleSource tells where a preamble was found.
type PreambleSource int

const (
	FromEmbedded PreambleSource = iota
	FromSourceDir
	FromConfigDir
)

func (s PreambleSource) String() string {
	switch s {
	case FromSourceDir:
		return "source directory"
	case FromConfigDir:
		return "config directory"
	default:
		return "embedded"
	}
}

// Preamble is a resolved preamble and its origin.
type Preamble struct {
	Content string
	Path    string // empty for the embedded preamble
	Source  PreambleSource
}

type candidate struct {
	path string
	src  PreambleSource
}

// FindPreamble returns the first preamble among:
//
//  1. preamble.mom next to sourcePath (skipped when sourcePath is empty)
//  2. {configDir}/preamble.mom (skipped when configDir is empty)
//  3. the embedded default
//
// A candidate that exists but cannot be read is an error.
func FindPreamble(sourcePath, configDir string) (Preamble, error) {
	var candidates []candidate
	if sourcePath != "" {
		candidates = append(candidates, candidate{filepath.Join(filepath.Dir(sourcePath), PreambleFileName), FromSourceDir})
	}
	if configDir != "" {
		candidates = append(candidates, candidate{filepath.Join(configDir, PreambleFileName), FromConfigDir})
	}

	for _, c := range candidates {
		data, err := os.ReadFile(c.path) // #nosec G304 -- fixed file name
		if err == nil {
			return Preamble{Content: string(data), Path: c.path, Source: c.src}, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return Preamble{}, fmt.Errorf("%w: %v", ErrAssetRead, err)
		}
	}
	return Preamble{Content: DefaultPreamble(), Source: FromEmbedded}, nil
}

// UserConfigDir returns the mato directory under the user configuration
// directory ($XDG_CONFIG_HOME or ~/.config on Unix), or "" if unknown.
func UserConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mato")
}
