package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfig is returned for missing or invalid run options. It is always
// raised before any file is touched or any process is started.
var ErrConfig = errors.New("invalid configuration")

// ToolExecutionError is returned when the buildtools process exits with a
// non-zero status.
type ToolExecutionError struct {
	Tool       string // executable name, e.g. "java"
	Mode       Mode
	SymbolFile string // set for generate steps
	ExitCode   int
}

func (e *ToolExecutionError) Error() string {
	if e.Mode == Generate {
		return fmt.Sprintf("%s failed generating symbols for %s (exit status %d)", e.Tool, e.SymbolFile, e.ExitCode)
	}
	return fmt.Sprintf("%s failed uploading symbols (exit status %d)", e.Tool, e.ExitCode)
}

// toolInfo holds install metadata for an external executable.
type toolInfo struct {
	Install string
	Note    string
}

// knownTools maps executables the pipeline depends on to install hints.
var knownTools = map[string]toolInfo{
	"java": {
		Install: "https://adoptium.net/",
		Note:    "Set JAVA_HOME/bin on your PATH or point the java key of .crashsym.yaml at a java binary.",
	},
}

// ErrToolUnavailable is returned when a required executable is not installed.
// It includes actionable install instructions when the tool is known.
type ErrToolUnavailable struct {
	Name string
	Info *toolInfo
}

func NewErrToolUnavailable(name string) ErrToolUnavailable {
	e := ErrToolUnavailable{Name: name}
	if info, ok := knownTools[name]; ok {
		e.Info = &info
	}
	return e
}

func (e ErrToolUnavailable) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is required but not installed.", e.Name)

	if e.Info == nil {
		return b.String()
	}
	fmt.Fprintf(&b, "\nInstall: %s", e.Info.Install)
	if e.Info.Note != "" {
		fmt.Fprintf(&b, "\n%s", e.Info.Note)
	}
	return b.String()
}
