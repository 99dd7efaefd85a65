package main

// Notes:
// - runDoctorCmd: the real checks depend on the host (groff, pic, Chrome),
//   so only the shape of the output and the exit code consistency are
//   asserted.
// - printDoctorResult and checkEnvironment are tested with constructed
//   results.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunDoctorCmd - Host-independent checks
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_JSON(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv(nil)
	code := runDoctorCmd([]string{"--json"}, env)

	var got doctorResult
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
	}

	switch got.Status {
	case "ready", "warnings":
		if code != ExitSuccess {
			t.Errorf("status %q with exit code %d", got.Status, code)
		}
	case "errors":
		if code != ExitGeneral {
			t.Errorf("status errors with exit code %d", code)
		}
		if len(got.Errors) == 0 {
			t.Error("status errors without error messages")
		}
	default:
		t.Errorf("status = %q", got.Status)
	}
	groffMissing := strings.Contains(strings.Join(got.Errors, "\n"), "groff not found")
	if got.Groff.Found == groffMissing {
		t.Errorf("groff found = %v, but errors = %v", got.Groff.Found, got.Errors)
	}
	if got.Env.OS == "" {
		t.Error("environment OS not reported")
	}
}

func TestRunDoctorCmd_Human(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv(nil)
	runDoctorCmd(nil, env)

	for _, section := range []string{"mato doctor", "Typesetting", "Chrome/Chromium", "Environment", "System", "Status:"} {
		if !strings.Contains(stdout.String(), section) {
			t.Errorf("output missing %q", section)
		}
	}
}

// ---------------------------------------------------------------------------
// TestPrintDoctorResult - Human-readable report
// ---------------------------------------------------------------------------

func TestPrintDoctorResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result *doctorResult
		want   []string
	}{
		{
			name: "ready",
			result: &doctorResult{
				Status: "ready",
				Groff:  toolInfo{Found: true, Path: "/usr/bin/groff", Version: "GNU groff version 1.23.0"},
				Pic:    toolInfo{Found: true, Path: "/usr/bin/pic"},
				Chrome: chromeInfo{Found: true, Path: "/usr/bin/chromium", Sandbox: true},
				Env:    envInfo{OS: "linux", Arch: "amd64"},
				System: systemInfo{TempWritable: true, Preamble: "embedded"},
			},
			want: []string{"/usr/bin/groff", "GNU groff version 1.23.0", "Sandbox: enabled", "Platform: linux/amd64", "Preamble: embedded", "Status: Ready to compile"},
		},
		{
			name: "warnings",
			result: &doctorResult{
				Status:   "warnings",
				Groff:    toolInfo{Found: true, Path: "/usr/bin/groff"},
				Env:      envInfo{OS: "linux", Arch: "arm64", Container: true, ContainerHint: "/.dockerenv", CI: true},
				System:   systemInfo{TempWritable: true},
				Warnings: []string{"pic not found"},
			},
			want: []string{"Container: detected (/.dockerenv)", "CI: detected", "[WARN] pic not found", "Status: Ready with warnings"},
		},
		{
			name: "errors",
			result: &doctorResult{
				Status: "errors",
				Env:    envInfo{OS: "darwin", Arch: "arm64"},
				Errors: []string{"groff not found"},
			},
			want: []string{"Temp directory: not writable", "[ERROR] groff not found", "Status: Not ready"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			printDoctorResult(&buf, tt.result)
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output missing %q:\n%s", w, buf.String())
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestCheckEnvironment - Sandbox warning
// ---------------------------------------------------------------------------

func TestCheckEnvironment(t *testing.T) {
	t.Setenv("MATO_CONTAINER", "1")

	t.Run("chrome in container without ROD_NO_SANDBOX", func(t *testing.T) {
		r := &doctorResult{Chrome: chromeInfo{Found: true}}
		checkEnvironment(r)
		if !r.Env.Container || r.Env.ContainerHint != "MATO_CONTAINER=1" {
			t.Errorf("container = %v (%q)", r.Env.Container, r.Env.ContainerHint)
		}
		if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0], "ROD_NO_SANDBOX") {
			t.Errorf("warnings = %v", r.Warnings)
		}
	})

	t.Run("no chrome, no sandbox warning", func(t *testing.T) {
		r := &doctorResult{}
		checkEnvironment(r)
		if len(r.Warnings) != 0 {
			t.Errorf("warnings = %v, want none", r.Warnings)
		}
	})

	t.Run("sandbox disabled", func(t *testing.T) {
		r := &doctorResult{Chrome: chromeInfo{Found: true}, Env: envInfo{NoSandbox: "1"}}
		checkEnvironment(r)
		if len(r.Warnings) != 0 {
			t.Errorf("warnings = %v, want none", r.Warnings)
		}
	})
}
