// Package execute runs external commands with an explicit working directory
// and output destination, and reports non-zero exits as a typed failure.
package execute

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

//go:generate mockgen -source=$GOFILE -package mock_execute -destination=../../test/mock/$GOFILE

// Command describes one external tool invocation.
type Command struct {
	Path string   // program to run
	Args []string // arguments, not including the program name
	Dir  string   // working directory; empty means inherit
	// Stdout receives the tool's standard output; nil discards it.
	Stdout io.Writer
	// Stderr additionally receives the tool's diagnostic stream; diagnostics
	// are always captured into the Result regardless.
	Stderr io.Writer
}

// Result carries the exit status and captured diagnostics of a finished
// invocation.
type Result struct {
	ExitCode int
	Stderr   string
}

// ToolError is the failure of an external tool that exited non-zero.
type ToolError struct {
	Name     string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", strings.Join(append([]string{e.Name}, e.Args...), " "), e.ExitCode)
	if diag := strings.TrimSpace(e.Stderr); diag != "" {
		msg += ": " + diag
	}
	return msg
}

// Runner runs external commands. The default implementation is ExecRunner;
// tests substitute their own.
type Runner interface {
	Run(cmd Command) (Result, error)
}

// ExecRunner runs commands with os/exec, blocking until the process exits.
type ExecRunner struct{}

func (ExecRunner) Run(cmd Command) (Result, error) {
	c := exec.Command(cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = cmd.Stdout

	var diag bytes.Buffer
	if cmd.Stderr != nil {
		c.Stderr = io.MultiWriter(cmd.Stderr, &diag)
	} else {
		c.Stderr = &diag
	}

	err := c.Run()
	result := Result{Stderr: diag.String()}
	if err == nil {
		return result, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
		return result, &ToolError{
			Name:     cmd.Path,
			Args:     cmd.Args,
			ExitCode: result.ExitCode,
			Stderr:   result.Stderr,
		}
	}
	return result, fmt.Errorf("run %s: %w", cmd.Path, err)
}
