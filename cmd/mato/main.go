package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mato"
	"github.com/alnah/go-mato/internal/assets"
	"github.com/alnah/go-mato/internal/config"
	"github.com/alnah/go-mato/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches to a command and returns the process exit code.
func runMain(args []string, env *Environment) int {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	// "mato notes.mato" is short for "mato convert notes.mato".
	if looksLikeSource(cmd) {
		cmd, rest = "convert", args[1:]
	}

	var err error
	switch cmd {
	case "convert":
		err = runConvertCmd(ctx, rest, env)
	case "serve":
		err = runServeCmd(ctx, rest, env)
	case "cache":
		err = runCacheCmd(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "completion":
		err = runCompletion(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "mato %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		runHelp(rest, env)
		return ExitSuccess
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "mato: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// looksLikeSource reports whether arg names a source document rather
// than a command.
func looksLikeSource(arg string) bool {
	if arg == "-" {
		return true
	}
	_, ok := sourceExtensions[filepath.Ext(arg)]
	return ok
}

// notifyContext returns a context that is canceled when an interrupt
// or termination signal is received.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, mato.ErrToolNotFound):
		return hints.ForToolNotFound(mato.GroffCommand)
	case errors.Is(err, mato.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		var searched []string
		if dir := assets.UserConfigDir(); dir != "" {
			searched = append(searched, filepath.Join(dir, "mato.yaml"))
		}
		return hints.ForConfigNotFound(searched)
	case errors.Is(err, mato.ErrPreambleRead):
		return hints.ForPreambleNotFound(assets.PreambleNames())
	case errors.Is(err, mato.ErrStyleLoad):
		return hints.ForStyleNotFound(assets.StyleNames())
	case errors.Is(err, ErrCreateOutputDir):
		return hints.ForOutputDirectory()
	}
	return ""
}
