package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/alnah/go-mato/internal/config"
)

// envPrefix starts every environment variable the CLI reads.
const envPrefix = "MATO_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring config files.
type envConfig struct {
	ConfigPath string // MATO_CONFIG: config file name or path

	Backend  string // MATO_BACKEND: pdf, mom, man, ...
	Engine   string // MATO_ENGINE: groff, browser
	Lang     string // MATO_LANG: groff hyphenation language
	Preamble string // MATO_PREAMBLE: preamble name or path
	Style    string // MATO_STYLE: CSS style name or path

	Timeout string // MATO_TIMEOUT: compilation timeout
	Workers int    // MATO_WORKERS: parallel workers

	InputDir  string // MATO_INPUT_DIR: default input directory
	OutputDir string // MATO_OUTPUT_DIR: default output directory
	Cache     string // MATO_CACHE: diagram cache path
	Addr      string // MATO_ADDR: serve listen address
}

// knownEnvVars lists valid MATO_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MATO_CONFIG":     true,
	"MATO_BACKEND":    true,
	"MATO_ENGINE":     true,
	"MATO_LANG":       true,
	"MATO_PREAMBLE":   true,
	"MATO_STYLE":      true,
	"MATO_TIMEOUT":    true,
	"MATO_WORKERS":    true,
	"MATO_INPUT_DIR":  true,
	"MATO_OUTPUT_DIR": true,
	"MATO_CACHE":      true,
	"MATO_ADDR":       true,
	"MATO_CONTAINER":  true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Malformed worker counts are ignored; the timeout is checked later by
// config validation.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("MATO_CONFIG"),
		Backend:    os.Getenv("MATO_BACKEND"),
		Engine:     os.Getenv("MATO_ENGINE"),
		Lang:       os.Getenv("MATO_LANG"),
		Preamble:   os.Getenv("MATO_PREAMBLE"),
		Style:      os.Getenv("MATO_STYLE"),
		Timeout:    os.Getenv("MATO_TIMEOUT"),
		InputDir:   os.Getenv("MATO_INPUT_DIR"),
		OutputDir:  os.Getenv("MATO_OUTPUT_DIR"),
		Cache:      os.Getenv("MATO_CACHE"),
		Addr:       os.Getenv("MATO_ADDR"),
	}

	if workers := os.Getenv("MATO_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MATO_* variables.
func warnUnknownEnvVars(logger *log.Logger) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			logger.Warn("unknown environment variable (typo?)", "name", name)
		}
	}
}

// applyEnvConfig applies environment values on top of the config file.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied afterwards).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	setString(&cfg.Output.Backend, env.Backend)
	setString(&cfg.Output.Engine, env.Engine)
	setString(&cfg.Typeset.Language, env.Lang)
	setString(&cfg.Typeset.Preamble, env.Preamble)
	setString(&cfg.HTML.Style, env.Style)
	setString(&cfg.Runtime.Timeout, env.Timeout)
	setString(&cfg.Input.DefaultDir, env.InputDir)
	setString(&cfg.Output.DefaultDir, env.OutputDir)
	setString(&cfg.Diagrams.Cache, env.Cache)
	setString(&cfg.Server.Addr, env.Addr)
	if env.Workers > 0 {
		cfg.Runtime.Workers = env.Workers
	}
}

// setString overwrites *dst when v is non-empty.
func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// loadSettings builds the effective config from the config file (flag
// first, then MATO_CONFIG) and the environment. Flags are merged by the
// caller.
func loadSettings(configFlag string, logger *log.Logger) (*config.Config, error) {
	warnUnknownEnvVars(logger)
	env := loadEnvConfig()

	cfg := config.DefaultConfig()
	name := configFlag
	if name == "" {
		name = env.ConfigPath
	}
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		logger.Debug("loaded config", "name", name)
	}

	applyEnvConfig(env, cfg)
	return cfg, nil
}
