// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-mato/internal/fileutil"
)

// IsInContainer reports whether mato runs inside a container: MATO_CONTAINER=1
// or the /.dockerenv file Docker creates.
var IsInContainer = func() bool {
	return os.Getenv("MATO_CONTAINER") == "1" || fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser engine connection errors.
func ForBrowserConnect() string {
	var hints []string

	inCI := false
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		if os.Getenv(v) != "" {
			inCI = true
			break
		}
	}

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	hints = append(hints, "or use --engine groff")

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large documents, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/mato/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/mato.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/mato") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForStyleNotFound returns hints for style not found errors.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForPreambleNotFound returns hints for preamble lookup errors.
func ForPreambleNotFound(available []string) string {
	hint := "put a preamble.mom next to the document or in ~/.config/mato"
	if len(available) > 0 {
		hint += "; embedded: " + strings.Join(available, ", ")
	}
	return format(hint)
}

// ForToolNotFound returns hints for a missing external program.
func ForToolNotFound(tool string) string {
	switch tool {
	case "groff", "pic":
		return format("install groff with the mom macros (apt install groff, brew install groff)")
	case "":
		return ""
	default:
		return format("install " + tool + " and make sure it is on PATH")
	}
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
