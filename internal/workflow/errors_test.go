package workflow

import (
	"strings"
	"testing"
)

func TestToolExecutionError(t *testing.T) {
	err := &ToolExecutionError{Tool: "java", Mode: Generate, SymbolFile: "lib.so", ExitCode: 3}
	want := "java failed generating symbols for lib.so (exit status 3)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrToolUnavailable(t *testing.T) {
	msg := NewErrToolUnavailable("java").Error()
	if !strings.Contains(msg, "java is required but not installed.") {
		t.Errorf("Error() = %q, missing header", msg)
	}
	if !strings.Contains(msg, "https://adoptium.net/") {
		t.Errorf("Error() = %q, missing install hint", msg)
	}

	unknown := NewErrToolUnavailable("javac").Error()
	if unknown != "javac is required but not installed." {
		t.Errorf("Error() = %q", unknown)
	}
}
