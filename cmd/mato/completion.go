package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mato"
	"github.com/alnah/go-mato/internal/assets"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags, e.g. "*.yaml,*.toml"
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	Words       []string // fixed positional words, e.g. cache subcommands
	FilePattern string   // glob for file arguments (e.g., "*.mato,*.md")
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
func flagCompletionMeta() map[string]completionMeta {
	backends := make([]string, 0, len(mato.Backends()))
	for _, b := range mato.Backends() {
		backends = append(backends, string(b))
	}
	return map[string]completionMeta{
		"to":       {Values: backends},
		"engine":   {Values: []string{string(mato.EngineGroff), string(mato.EngineBrowser)}},
		"preamble": {Values: assets.PreambleNames()},
		"style":    {Values: assets.StyleNames()},

		"config": {FileGlob: "*.yaml,*.yml,*.toml"},
		"cache":  {FileGlob: "*.db"},

		"output":     {IsDir: true},
		"asset-path": {IsDir: true},
	}
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	meta := flagCompletionMeta()
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int64":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		if m, ok := meta[f.Name]; ok {
			switch {
			case len(m.Values) > 0:
				fd.Type = flagEnum
				fd.Values = m.Values
			case m.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = m.FileGlob
			case m.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSets.
func getCommands() []commandDef {
	cacheFlags := flag.NewFlagSet("cache", flag.ContinueOnError)
	cacheFlags.String("cache", "", "diagram cache database path")
	doctorFlags := flag.NewFlagSet("doctor", flag.ContinueOnError)
	doctorFlags.Bool("json", false, "machine-readable output")

	commands := []commandDef{
		{
			Name:        "convert",
			Desc:        "Compile mato documents",
			Flags:       extractFlagsFromFlagSet(newConvertFlagSet(&convertFlags{})),
			FilePattern: "*.mato,*.md",
		},
		{
			Name:  "serve",
			Desc:  "Run the HTTP compile service",
			Flags: extractFlagsFromFlagSet(newServeFlagSet(&serveFlags{})),
		},
		{
			Name:  "cache",
			Desc:  "Inspect or clear the diagram cache",
			Flags: extractFlagsFromFlagSet(cacheFlags),
			Words: []string{"path", "stats", "clear"},
		},
		{
			Name:  "doctor",
			Desc:  "Check groff, pic and Chrome",
			Flags: extractFlagsFromFlagSet(doctorFlags),
		},
		{Name: "version", Desc: "Show version information"},
		{Name: "completion", Desc: "Generate shell completion script", Words: []string{"bash", "zsh", "fish"}},
	}

	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.Name)
	}
	return append(commands, commandDef{Name: "help", Desc: "Show help for a command", Words: names})
}

// GenerateCompletion writes shell completion script to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var script string
	switch shell {
	case ShellBash:
		script = generateBash(getCommands())
	case ShellZsh:
		script = generateZsh(getCommands())
	case ShellFish:
		script = generateFish(getCommands())
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
	_, err := io.WriteString(w, script)
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	if len(args) > 1 {
		return usageError("completion takes one shell, got %d arguments", len(args))
	}
	if err := GenerateCompletion(env.Stdout, Shell(args[0])); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return nil
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mato completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(mato completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(mato completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    mato completion fish > ~/.config/fish/completions/mato.fish")
}

// globExts turns "*.mato,*.md" into ["mato", "md"].
func globExts(glob string) []string {
	var exts []string
	for _, g := range strings.Split(glob, ",") {
		exts = append(exts, strings.TrimPrefix(strings.TrimSpace(g), "*."))
	}
	return exts
}

// flagNames returns "--long" and, when present, "-s".
func flagNames(f flagDef) []string {
	names := []string{"--" + f.Long}
	if f.Short != "" {
		names = append(names, "-"+f.Short)
	}
	return names
}

// ---------------------------------------------------------------------------
// bash
// ---------------------------------------------------------------------------

func generateBash(commands []commandDef) string {
	var b strings.Builder
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.Name)
	}

	b.WriteString("# bash completion for mato\n")
	b.WriteString("_mato() {\n")
	b.WriteString("    local cur prev\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n\n")
	b.WriteString("    if [[ $COMP_CWORD -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=( $(compgen -W %q -- \"$cur\") $(compgen -f -X '!*.@(mato|md)' -- \"$cur\") )\n", strings.Join(names, " "))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    local cmd=\"${COMP_WORDS[1]}\"\n")
	b.WriteString("    [[ $cmd == *.mato || $cmd == *.md || $cmd == - ]] && cmd=convert\n\n")
	b.WriteString("    case \"$cmd\" in\n")

	for _, c := range commands {
		fmt.Fprintf(&b, "    %s)\n", c.Name)

		var valued []string
		var all []string
		for _, f := range c.Flags {
			all = append(all, flagNames(f)...)
			if f.Type == flagBool {
				continue
			}
			pattern := strings.Join(flagNames(f), "|")
			switch f.Type {
			case flagEnum:
				valued = append(valued, fmt.Sprintf("            %s) COMPREPLY=( $(compgen -W %q -- \"$cur\") ); return ;;\n", pattern, strings.Join(f.Values, " ")))
			case flagDir:
				valued = append(valued, fmt.Sprintf("            %s) COMPREPLY=( $(compgen -d -- \"$cur\") ); return ;;\n", pattern))
			case flagFile:
				valued = append(valued, fmt.Sprintf("            %s) COMPREPLY=( $(compgen -f -X '!*.@(%s)' -- \"$cur\") ); return ;;\n", pattern, strings.Join(globExts(f.FileGlob), "|")))
			default:
				valued = append(valued, fmt.Sprintf("            %s) return ;;\n", pattern))
			}
		}
		if len(valued) > 0 {
			b.WriteString("        case \"$prev\" in\n")
			for _, v := range valued {
				b.WriteString(v)
			}
			b.WriteString("        esac\n")
		}
		if len(all) > 0 {
			b.WriteString("        if [[ $cur == -* ]]; then\n")
			fmt.Fprintf(&b, "            COMPREPLY=( $(compgen -W %q -- \"$cur\") )\n", strings.Join(all, " "))
			b.WriteString("            return\n")
			b.WriteString("        fi\n")
		}
		switch {
		case len(c.Words) > 0:
			fmt.Fprintf(&b, "        COMPREPLY=( $(compgen -W %q -- \"$cur\") )\n", strings.Join(c.Words, " "))
		case c.FilePattern != "":
			fmt.Fprintf(&b, "        COMPREPLY=( $(compgen -f -X '!*.@(%s)' -- \"$cur\") $(compgen -d -- \"$cur\") )\n", strings.Join(globExts(c.FilePattern), "|"))
		}
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n")
	b.WriteString("shopt -s extglob\n")
	b.WriteString("complete -o filenames -F _mato mato\n")
	return b.String()
}

// ---------------------------------------------------------------------------
// zsh
// ---------------------------------------------------------------------------

// zshQuote escapes s for use inside a single-quoted _arguments spec.
func zshQuote(s string) string {
	r := strings.NewReplacer("'", `'\''`, "[", `\[`, "]", `\]`, ":", `\:`)
	return r.Replace(s)
}

func zshFlagSpec(f flagDef) string {
	var action string
	switch f.Type {
	case flagBool:
	case flagEnum:
		action = ":" + f.Long + ":(" + strings.Join(f.Values, " ") + ")"
	case flagDir:
		action = ":directory:_files -/"
	case flagFile:
		action = ":file:_files -g \"*.(" + strings.Join(globExts(f.FileGlob), "|") + ")\""
	default:
		action = ":" + f.Long + ": "
	}

	desc := "[" + zshQuote(f.Desc) + "]"
	if f.Short == "" {
		return "'--" + f.Long + desc + action + "'"
	}
	return "'(-" + f.Short + " --" + f.Long + ")'{-" + f.Short + ",--" + f.Long + "}'" + desc + action + "'"
}

func generateZsh(commands []commandDef) string {
	var b strings.Builder

	b.WriteString("#compdef mato\n\n")
	b.WriteString("_mato() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshQuote(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        _files -g '*.(mato|md)'\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    local cmd=$words[2]\n")
	b.WriteString("    [[ $cmd == *.mato || $cmd == *.md ]] && cmd=convert\n\n")
	b.WriteString("    case $cmd in\n")

	for _, c := range commands {
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		b.WriteString("        _arguments -s \\\n")
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "            %s \\\n", zshFlagSpec(f))
		}
		switch {
		case len(c.Words) > 0:
			fmt.Fprintf(&b, "            '1:%s:(%s)'\n", c.Name, strings.Join(c.Words, " "))
		case c.FilePattern != "":
			fmt.Fprintf(&b, "            '*:source:_files -g \"*.(%s)\"'\n", strings.Join(globExts(c.FilePattern), "|"))
		default:
			b.WriteString("            && return\n")
		}
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _mato mato\n")
	return b.String()
}

// ---------------------------------------------------------------------------
// fish
// ---------------------------------------------------------------------------

// fishQuote escapes s for a single-quoted fish string.
func fishQuote(s string) string {
	return strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s)
}

func generateFish(commands []commandDef) string {
	var b strings.Builder
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.Name)
	}

	b.WriteString("# fish completion for mato\n")
	b.WriteString("complete -c mato -f\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "complete -c mato -n '__fish_use_subcommand' -a %s -d '%s'\n", c.Name, fishQuote(c.Desc))
	}
	b.WriteString("complete -c mato -n '__fish_use_subcommand' -a '(__fish_complete_suffix .mato)'\n")

	for _, c := range commands {
		cond := fmt.Sprintf("-n '__fish_seen_subcommand_from %s'", c.Name)
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "complete -c mato %s -l %s", cond, f.Long)
			if f.Short != "" {
				fmt.Fprintf(&b, " -s %s", f.Short)
			}
			switch f.Type {
			case flagBool:
			case flagEnum:
				fmt.Fprintf(&b, " -x -a '%s'", strings.Join(f.Values, " "))
			case flagDir:
				b.WriteString(" -x -a '(__fish_complete_directories)'")
			case flagFile:
				b.WriteString(" -r -F")
			default:
				b.WriteString(" -x")
			}
			fmt.Fprintf(&b, " -d '%s'\n", fishQuote(f.Desc))
		}
		switch {
		case len(c.Words) > 0:
			fmt.Fprintf(&b, "complete -c mato %s -a '%s'\n", cond, strings.Join(c.Words, " "))
		case c.FilePattern != "":
			for _, ext := range globExts(c.FilePattern) {
				fmt.Fprintf(&b, "complete -c mato %s -a '(__fish_complete_suffix .%s)'\n", cond, ext)
			}
		}
	}
	return b.String()
}
