// Package runner executes external diagnostic commands and captures their output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a single command when the caller sets none.
	DefaultTimeout = 10 * time.Second
	// Maximum output size to prevent memory exhaustion.
	maxOutputSize = 10 * 1024 // 10KB limit
	// Maximum log output length for readability.
	maxLogLength = 200
	// How long to wait for inherited pipes to close after the command is killed.
	waitDelay = 250 * time.Millisecond
)

// Result is the captured outcome of one command.
type Result struct {
	Err       error  // Launch failure or timeout; nil for a plain non-zero exit
	Command   string // Command line as executed
	Stdout    string
	Stderr    string
	ExitCode  int  // -1 when the command never produced an exit status
	Truncated bool // Stdout or Stderr was cut at 10KB
}

// Success reports whether the command ran and exited 0.
func (r Result) Success() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Runner runs a command and returns what it produced.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) Result
}

// Exec runs commands with os/exec.
type Exec struct {
	Timeout time.Duration
	Debug   bool
}

// Run executes name with args, no stdin, and stdout/stderr captured separately.
func (e *Exec) Run(ctx context.Context, name string, args ...string) Result {
	start := time.Now()
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	command := strings.TrimSpace(name + " " + strings.Join(args, " "))
	if e.Debug {
		log.Printf("[DEBUG] Executing command: %s", command)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	// Children that inherit stdout would otherwise keep Run blocked past the deadline.
	cmd.WaitDelay = waitDelay

	var stdoutBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	duration := time.Since(start)

	stdout, stdoutCut := limitOutput(stdoutBuf.Bytes(), maxOutputSize)
	stderr, stderrCut := limitOutput(stderrBuf.Bytes(), maxOutputSize)
	result := Result{
		Command:   command,
		Stdout:    stdout,
		Stderr:    stderr,
		Truncated: stdoutCut || stderrCut,
	}
	if result.Truncated {
		log.Printf("[WARN] Output truncated to 10KB (stdout: %d bytes, stderr: %d bytes): %s",
			stdoutBuf.Len(), stderrBuf.Len(), command)
	}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			log.Printf("[WARN] Command timed out after %v: %s", duration, command)
			result.ExitCode = -1
			result.Err = fmt.Errorf("command timed out after %v: %w", duration, ctx.Err())
		case errors.As(err, &exitErr):
			result.ExitCode = exitErr.ExitCode()
		default:
			result.ExitCode = -1
			result.Err = fmt.Errorf("failed to run %s: %w", name, err)
		}
	}

	if e.Debug {
		if trimmed := strings.TrimSpace(result.Stderr); trimmed != "" {
			if len(trimmed) > maxLogLength {
				trimmed = trimmed[:maxLogLength] + "..."
			}
			log.Printf("[DEBUG] stderr (%d bytes): %s", len(result.Stderr), trimmed)
		}
		log.Printf("[DEBUG] Command completed in %v (exit: %d, stdout: %d bytes, stderr: %d bytes): %s",
			duration, result.ExitCode, len(result.Stdout), len(result.Stderr), command)
	}

	return result
}

// limitOutput truncates output to maxSize and reports whether it did.
func limitOutput(data []byte, maxSize int) (string, bool) {
	if len(data) > maxSize {
		return string(data[:maxSize]), true
	}
	return string(data), false
}
