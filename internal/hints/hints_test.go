package hints

// Notes:
// - ForBrowserConnect tests cannot use t.Parallel() because they use
//   t.Setenv() and replace the package-level IsInContainer variable.
// These are acceptable gaps: we test observable behavior through environment manipulation.

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestForBrowserConnect - Environment-aware browser hints
// ---------------------------------------------------------------------------

func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name       string
		container  bool
		ci         string
		noSandbox  string
		browserBin string
		want       []string
		notWant    []string
	}{
		{
			name:    "CI without sandbox setting",
			ci:      "true",
			want:    []string{"ROD_NO_SANDBOX=1", "ROD_BROWSER_BIN", "--engine groff"},
			notWant: nil,
		},
		{
			name:      "container",
			container: true,
			want:      []string{"ROD_NO_SANDBOX=1"},
		},
		{
			name:      "sandbox already disabled",
			container: true,
			noSandbox: "1",
			notWant:   []string{"ROD_NO_SANDBOX"},
		},
		{
			name:       "browser binary set",
			browserBin: "/usr/bin/chromium",
			want:       []string{"--engine groff"},
			notWant:    []string{"ROD_BROWSER_BIN", "ROD_NO_SANDBOX"},
		},
		{
			name:       "everything configured",
			container:  true,
			ci:         "true",
			noSandbox:  "1",
			browserBin: "/usr/bin/chromium",
			want:       []string{"\n  hint: or use --engine groff"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := IsInContainer
			defer func() { IsInContainer = orig }()
			IsInContainer = func() bool { return tt.container }

			t.Setenv("CI", tt.ci)
			t.Setenv("GITHUB_ACTIONS", "")
			t.Setenv("GITLAB_CI", "")
			t.Setenv("JENKINS_URL", "")
			t.Setenv("ROD_NO_SANDBOX", tt.noSandbox)
			t.Setenv("ROD_BROWSER_BIN", tt.browserBin)

			hint := ForBrowserConnect()
			for _, w := range tt.want {
				if !strings.Contains(hint, w) {
					t.Errorf("hint %q missing %q", hint, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(hint, w) {
					t.Errorf("hint %q should not mention %q", hint, w)
				}
			}
		})
	}
}

func TestIsInContainer_Env(t *testing.T) {
	t.Setenv("MATO_CONTAINER", "1")
	if !IsInContainer() {
		t.Error("IsInContainer() = false with MATO_CONTAINER=1")
	}
}

// ---------------------------------------------------------------------------
// TestHints - Static hints
// ---------------------------------------------------------------------------

func TestHints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hint string
		want string // empty means the hint must be empty
	}{
		{"timeout", ForTimeout(), "--timeout"},
		{"output directory", ForOutputDirectory(), "parent directory"},
		{"config without paths", ForConfigNotFound(nil), "--config /path/to/mato.yaml"},
		{"config in user dir", ForConfigNotFound([]string{"./mato.yaml", "/home/u/.config/mato/mato.yaml"}), "or create /home/u/.config/mato/mato.yaml"},
		{"style list", ForStyleNotFound([]string{"default", "print"}), "available: default, print"},
		{"no styles", ForStyleNotFound(nil), ""},
		{"preamble", ForPreambleNotFound(nil), "preamble.mom"},
		{"preamble list", ForPreambleNotFound([]string{"default", "slides"}), "embedded: default, slides"},
		{"groff", ForToolNotFound("groff"), "mom macros"},
		{"pic ships with groff", ForToolNotFound("pic"), "install groff"},
		{"other tool", ForToolNotFound("dot"), "install dot and make sure it is on PATH"},
		{"no tool", ForToolNotFound(""), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.want == "" {
				if tt.hint != "" {
					t.Errorf("hint = %q, want empty", tt.hint)
				}
				return
			}
			if !strings.HasPrefix(tt.hint, "\n  hint: ") {
				t.Errorf("hint %q lacks the hint prefix", tt.hint)
			}
			if !strings.Contains(tt.hint, tt.want) {
				t.Errorf("hint = %q, want containing %q", tt.hint, tt.want)
			}
		})
	}

	if strings.Contains(ForPreambleNotFound(nil), "embedded:") {
		t.Error("preamble hint lists embedded preambles when there are none")
	}
}
