// Package runner executes external tool processes synchronously, either
// capturing their output for later interpretation or streaming it to the
// invoking terminal.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxOutput caps captured output per stream when MaxOutput is unset.
const DefaultMaxOutput = 1 << 20 // 1 MB

// Runner executes tool processes one at a time.
type Runner struct {
	Dir string // working directory of the child; empty means the current directory

	// Timeout bounds a single process. Zero waits for the process
	// indefinitely, which is the default for symbol generation.
	Timeout time.Duration

	MaxOutput int // bytes kept per captured stream

	// Stdout and Stderr receive streamed output. They default to the
	// invoking process's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes argv and blocks until the process exits. The first element
// is the binary name (resolved via PATH), and the rest are arguments.
//
// When stream is true the child's stdout and stderr are attached to the
// runner's terminal writers and the returned Result carries no output.
// Otherwise both streams are captured.
//
// A non-zero exit status is reported through Result.ExitCode, not as an
// error. Errors are returned only when the process could not be run.
func (r *Runner) Run(ctx context.Context, argv []string, stream bool) (*Result, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty argv")
	}

	parent := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	runID := uuid.New().String()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	maxOutput := r.MaxOutput
	if maxOutput <= 0 {
		maxOutput = DefaultMaxOutput
	}
	if stream {
		cmd.Stdin = os.Stdin
		cmd.Stdout = orDefault(r.Stdout, os.Stdout)
		cmd.Stderr = orDefault(r.Stderr, os.Stderr)
	} else {
		cmd.Stdout = &limitWriter{buf: &stdout, limit: maxOutput}
		cmd.Stderr = &limitWriter{buf: &stderr, limit: maxOutput}
	}

	runErr := cmd.Run()

	// A process killed by the runner's own deadline exits with -1, which
	// says nothing about why it stopped.
	if runErr != nil && r.Timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) && parent.Err() == nil {
		return nil, fmt.Errorf("%s timed out after %s: %w", argv[0], r.Timeout, context.DeadlineExceeded)
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			// Binary not found or other exec error.
			return nil, fmt.Errorf("executing %s: %w", argv[0], runErr)
		}
	}

	return &Result{
		RunID:     runID,
		ExitCode:  exitCode,
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.Bytes(),
		Streamed:  stream,
		Truncated: !stream && (stdout.Len() >= maxOutput || stderr.Len() >= maxOutput),
	}, nil
}

func orDefault(w io.Writer, def *os.File) io.Writer {
	if w != nil {
		return w
	}
	return def
}

// limitWriter writes up to limit bytes to buf, then silently discards the rest.
type limitWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *limitWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		return len(p), nil // discard
	}
	if len(p) > remaining {
		// Write only what fits, but report all bytes as consumed
		// to avoid short write errors from io.Copy.
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	return w.buf.Write(p)
}
