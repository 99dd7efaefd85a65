package main

import (
	"context"
	"fmt"

	"github.com/alnah/go-mato/internal/server"
)

// defaultAddr is the serve listen address when none is configured.
const defaultAddr = "localhost:8080"

// runServeCmd runs the HTTP compile service until ctx is canceled.
func runServeCmd(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args)
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, logLevel(flags.common.quiet, flags.common.verbose))
	setMaxProcs(logger)

	cfg, err := loadSettings(flags.common.config, logger)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flags.set["addr"] {
		cfg.Server.Addr = flags.addr
	}
	if flags.set["to"] {
		cfg.Output.Backend = flags.to
	}
	if flags.set["workers"] {
		cfg.Runtime.Workers = flags.workers
	}
	if flags.set["timeout"] {
		cfg.Runtime.Timeout = flags.timeout
	}
	if flags.set["max-body"] {
		cfg.Server.MaxBodyBytes = flags.maxBody
	}
	if flags.set["cache"] {
		cfg.Diagrams.Cache = flags.cache
	}
	mergeTypesetFlags(flags.set, &flags.typeset, &flags.assets, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := validateWorkers(cfg.Runtime.Workers); err != nil {
		return err
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
	backend, _ := resolveBackend(cfg)

	srv := server.New(server.Config{
		Options:        opts,
		Workers:        cfg.Runtime.Workers,
		DefaultBackend: backend,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Logger:         logger,
	})
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Warn("closing compilers", "err", err)
		}
	}()

	addr := cfg.Server.Addr
	if addr == "" {
		addr = defaultAddr
	}
	return srv.ListenAndServe(ctx, addr)
}
