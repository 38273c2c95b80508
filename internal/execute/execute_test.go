package execute

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test relies on sh")
	}
}

func TestExecRunner_capturesStdoutAndHonorsDir(t *testing.T) {
	requireShell(t)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.txt"), []byte("hello\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	result, err := ExecRunner{}.Run(Command{
		Path:   "cat",
		Args:   []string{"x.txt"},
		Dir:    dir,
		Stdout: &out,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("exit code: %d", result.ExitCode)
	}
	if out.String() != "hello\n" {
		t.Errorf("stdout: %q", out.String())
	}
}

func TestExecRunner_nonZeroExitIsToolError(t *testing.T) {
	requireShell(t)

	result, err := ExecRunner{}.Run(Command{
		Path: "sh",
		Args: []string{"-c", "echo boom >&2; exit 3"},
	})

	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected *ToolError, got %v", err)
	}
	if toolErr.ExitCode != 3 || result.ExitCode != 3 {
		t.Errorf("exit code: %d / %d", toolErr.ExitCode, result.ExitCode)
	}
	if !strings.Contains(toolErr.Stderr, "boom") {
		t.Errorf("diagnostics not captured: %q", toolErr.Stderr)
	}
	if !strings.Contains(toolErr.Error(), "status 3") || !strings.Contains(toolErr.Error(), "boom") {
		t.Errorf("error message: %q", toolErr.Error())
	}
}

func TestExecRunner_stderrTeedToWriter(t *testing.T) {
	requireShell(t)

	var diag bytes.Buffer
	result, err := ExecRunner{}.Run(Command{
		Path:   "sh",
		Args:   []string{"-c", "echo warn >&2"},
		Stderr: &diag,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(diag.String(), "warn") {
		t.Errorf("writer did not receive diagnostics: %q", diag.String())
	}
	if !strings.Contains(result.Stderr, "warn") {
		t.Errorf("result did not capture diagnostics: %q", result.Stderr)
	}
}

func TestExecRunner_missingProgram(t *testing.T) {
	_, err := ExecRunner{}.Run(Command{Path: "definitely-not-a-real-program-2481"})
	if err == nil {
		t.Fatal("expected an error for a missing program")
	}
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		t.Errorf("startup failure should not be a ToolError: %v", err)
	}
}
