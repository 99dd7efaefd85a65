package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mato"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength       = 4096
	MaxManSectionLength = 10 // "7", "3p", "1posix"
	MaxAddrLength       = 256
	MaxWorkers          = 64
)

// Config holds all configuration for document compilation.
type Config struct {
	Input    InputConfig    `yaml:"input" toml:"input"`
	Output   OutputConfig   `yaml:"output" toml:"output"`
	Typeset  TypesetConfig  `yaml:"typeset" toml:"typeset"`
	HTML     HTMLConfig     `yaml:"html" toml:"html"`
	Assets   AssetsConfig   `yaml:"assets" toml:"assets"`
	Diagrams DiagramsConfig `yaml:"diagrams" toml:"diagrams"`
	Runtime  RuntimeConfig  `yaml:"runtime" toml:"runtime"`
	Server   ServerConfig   `yaml:"server" toml:"server"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir" toml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output format and destination.
type OutputConfig struct {
	Backend    string `yaml:"backend" toml:"backend"`       // pdf, mom, man, mandoc, tex, md, html, dot, svg
	Engine     string `yaml:"engine" toml:"engine"`         // groff or browser (PDF only)
	DefaultDir string `yaml:"defaultDir" toml:"defaultDir"` // Default output directory (empty = same as source)
}

// TypesetConfig defines troff typesetting options.
type TypesetConfig struct {
	Language        string `yaml:"language" toml:"language"` // groff hyphenation package, as in -mden
	Preamble        string `yaml:"preamble" toml:"preamble"` // Embedded name or path to a .mom file
	SkipPreamble    bool   `yaml:"skipPreamble" toml:"skipPreamble"`
	OldStyleFigures bool   `yaml:"oldStyleFigures" toml:"oldStyleFigures"`
	ManSection      string `yaml:"manSection" toml:"manSection"`
}

// HTMLConfig defines HTML and browser PDF options.
type HTMLConfig struct {
	Style string `yaml:"style" toml:"style"` // Embedded name, path or CSS content
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath" toml:"basePath"` // Empty = use embedded assets
}

// DiagramsConfig defines diagram rendering options.
type DiagramsConfig struct {
	Cache string `yaml:"cache" toml:"cache"` // Path to the cache database (empty = no cache)
}

// RuntimeConfig defines concurrency and time limits.
type RuntimeConfig struct {
	Workers int    `yaml:"workers" toml:"workers"` // 0 = auto
	Timeout string `yaml:"timeout" toml:"timeout"` // Go duration, e.g. "45s"
}

// ServerConfig defines the HTTP compile service.
type ServerConfig struct {
	Addr         string `yaml:"addr" toml:"addr"`
	MaxBodyBytes int64  `yaml:"maxBodyBytes" toml:"maxBodyBytes"`
}

// Timeout returns the parsed runtime timeout, or zero when unset.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.Runtime.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Validate checks values and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if c.Output.Backend != "" {
		if _, err := mato.ParseBackend(c.Output.Backend); err != nil {
			return fmt.Errorf("output.backend: %w", err)
		}
	}
	if c.Output.Engine != "" {
		if _, err := mato.ParseEngine(c.Output.Engine); err != nil {
			return fmt.Errorf("output.engine: %w", err)
		}
	}
	if c.Typeset.Language != "" && !mato.ValidLanguage(c.Typeset.Language) {
		return fmt.Errorf("%w: typeset.language %q (one to eight ASCII letters)", ErrInvalidValue, c.Typeset.Language)
	}

	paths := []struct{ name, value string }{
		{"input.defaultDir", c.Input.DefaultDir},
		{"output.defaultDir", c.Output.DefaultDir},
		{"typeset.preamble", c.Typeset.Preamble},
		{"assets.basePath", c.Assets.BasePath},
		{"diagrams.cache", c.Diagrams.Cache},
	}
	for _, p := range paths {
		if err := validateFieldLength(p.name, p.value, MaxPathLength); err != nil {
			return err
		}
	}
	// Inline CSS can be long; only names and paths are bounded.
	if !strings.Contains(c.HTML.Style, "{") {
		if err := validateFieldLength("html.style", c.HTML.Style, MaxPathLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("typeset.manSection", c.Typeset.ManSection, MaxManSectionLength); err != nil {
		return err
	}
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}

	if c.Runtime.Workers < 0 || c.Runtime.Workers > MaxWorkers {
		return fmt.Errorf("%w: runtime.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Runtime.Workers)
	}
	if c.Runtime.Timeout != "" {
		d, err := time.ParseDuration(c.Runtime.Timeout)
		if err != nil {
			return fmt.Errorf("%w: runtime.timeout: %v", ErrInvalidValue, err)
		}
		if d <= 0 {
			return fmt.Errorf("%w: runtime.timeout must be positive, got %s", ErrInvalidValue, d)
		}
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("%w: server.maxBodyBytes must not be negative", ErrInvalidValue)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a neutral configuration: every field empty, so
// the compiler's own defaults apply.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := decode(configPath, data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// configExtensions lists the extensions tried when resolving a name.
var configExtensions = []string{".yaml", ".yml", ".toml"}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries locations in order: current directory, ~/.config/mato/
func resolveConfigPath(name string) (string, error) {
	triedPaths := make([]string, 0, len(configExtensions)*2)

	for _, ext := range configExtensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range configExtensions {
			userPath := filepath.Join(userConfigDir, "mato", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
