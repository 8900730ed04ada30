// Package workflow provides the symbol generation and upload pipeline.
// It is consumed by both the MCP server and the CLI commands.
package workflow

import (
	"context"
	"os/exec"
	"strings"

	"github.com/deixis/crashsym/internal/runner"
)

//go:generate go tool mockgen -source=engine.go -destination=mocks/engine.gen.go -package=mocks

// CommandRunner executes tool processes.
// Implemented by runner.Runner.
type CommandRunner interface {
	Run(ctx context.Context, argv []string, stream bool) (*runner.Result, error)
}

// ToolResolver returns the local path of the buildtools jar, fetching it
// if needed. Implemented by buildtools.Fetcher.
type ToolResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// Reporter receives the user-visible status lines of a run.
// Implemented by logger.Logger.
type Reporter interface {
	Bullet(format string, args ...any)
	Warn(format string, args ...any)
	Success(format string, args ...any)
	Debug(format string, args ...any)
}

// Engine holds shared dependencies for all workflow operations.
type Engine struct {
	Java   string // java executable; "java" when empty
	Tools  ToolResolver
	Runner CommandRunner
	Log    Reporter
}

func (e *Engine) javaBinary() string {
	if e.Java != "" {
		return e.Java
	}
	return "java"
}

// LookupJava checks that the java executable can be started and returns
// its resolved path.
func (e *Engine) LookupJava() (string, error) {
	path, err := exec.LookPath(e.javaBinary())
	if err != nil {
		return "", NewErrToolUnavailable("java")
	}
	return path, nil
}

// JavaVersion returns the first line printed by `java -version`.
func (e *Engine) JavaVersion(ctx context.Context) (string, error) {
	res, err := e.Runner.Run(ctx, []string{e.javaBinary(), "-version"}, false)
	if err != nil {
		return "", err
	}
	// java prints its version banner on stderr.
	out := string(res.Stderr)
	if out == "" {
		out = string(res.Stdout)
	}
	return FirstLine(out), nil
}

// FirstLine returns the first non-empty line of s, trimmed.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
