package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mato <command> [flags] [args]")
	fmt.Fprintln(w, "       mato <file.mato> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Compile mato documents (the default for a source file)")
	fmt.Fprintln(w, "  serve      Run the HTTP compile service")
	fmt.Fprintln(w, "  cache      Inspect or clear the diagram cache")
	fmt.Fprintln(w, "  doctor     Check groff, pic and Chrome")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mato help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mato convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Compile mato documents. PDF goes through groff and the mom macros.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    .mato/.md file, directory, or - for stdin")
	fmt.Fprintln(w, "           (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory (- for stdout)")
	fmt.Fprintln(w, "  -T, --to <backend>        pdf, mom, man, mandoc, tex, md, html, dot, svg")
	fmt.Fprintln(w, "  -e, --engine <name>       PDF engine: groff (default), browser")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Compilation timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --watch               Recompile when a source changes")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Typesetting:")
	fmt.Fprintln(w, "  -l, --lang <code>         Hyphenation language, as in groff -mden")
	fmt.Fprintln(w, "      --preamble <s>        Preamble name or .mom file path")
	fmt.Fprintln(w, "      --skip-preamble       Omit the preamble")
	fmt.Fprintln(w, "      --old-style-figures   Old-style figures in body text")
	fmt.Fprintln(w, "      --man-section <s>     Manual section for man/mandoc (default 7)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Assets:")
	fmt.Fprintln(w, "      --style <s>           CSS style name, path or content (HTML)")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom preambles/ and styles/ directory")
	fmt.Fprintln(w, "      --cache <path>        Diagram cache database")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Dump:")
	fmt.Fprintln(w, "      --dump                Write the generated groff to stdout")
	fmt.Fprintln(w, "      --dump-file           Write it next to the source (.groff)")
	fmt.Fprintln(w, "      --no-pdf              Skip PDF generation (implies --dump)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mato serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the HTTP compile service.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Routes:")
	fmt.Fprintln(w, "  GET  /healthz")
	fmt.Fprintln(w, "  GET  /v1/backends")
	fmt.Fprintln(w, "  POST /v1/compile?to=<backend>    body is the source")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default localhost:8080)")
	fmt.Fprintln(w, "  -T, --to <backend>        Backend when the request names none")
	fmt.Fprintln(w, "  -w, --workers <n>         Compilers per backend (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-request compilation timeout")
	fmt.Fprintln(w, "      --max-body <n>        Maximum request body in bytes")
	fmt.Fprintln(w, "      --cache <path>        Diagram cache database")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Typesetting and asset flags are the same as for convert.")
}

// printCacheUsage prints usage for the cache command.
func printCacheUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mato cache <path|stats|clear> [--cache <path>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Inspect or clear the diagram cache. The location is --cache,")
	fmt.Fprintln(w, "then MATO_CACHE, then the user cache directory.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "cache":
		printCacheUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: mato doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check that groff, pic and Chrome are available.")
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mato version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mato help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
