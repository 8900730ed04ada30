package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/deixis/crashsym/internal/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type inspectParams struct {
	RunID      string `json:"run_id" jsonschema:"the run ID from a crashlytics_symbols_upload result"`
	SymbolFile string `json:"symbol_file,omitempty" jsonschema:"only show the steps for this library, as listed in the upload result"`
}

func (h *handler) inspectHandler(ctx context.Context, req *mcp.CallToolRequest, params inspectParams) (*mcp.CallToolResult, any, error) {
	if params.RunID == "" {
		return errorResult("run_id is required")
	}

	result, err := h.store.Load(params.RunID)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to load run %s: %v", params.RunID, err))
	}

	steps := report.ByFile(result, params.SymbolFile)
	if len(steps) == 0 {
		return textResult(fmt.Sprintf("No steps found for %s in run %s.", params.SymbolFile, params.RunID))
	}

	return textResult(formatInspectOutput(result, steps))
}

func formatInspectOutput(rr *report.RunResult, steps []report.Step) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run: %s (%s)\n", rr.ID, rr.Summary())
	fmt.Fprintf(&b, "Cache: %s\n", rr.CachePath)

	for _, s := range steps {
		fmt.Fprintln(&b)
		if s.SymbolFile != "" {
			fmt.Fprintf(&b, "%s %s: %s\n", s.Mode, s.SymbolFile, s.Status)
		} else {
			fmt.Fprintf(&b, "%s: %s\n", s.Mode, s.Status)
		}
		if s.Status == report.StatusSkipped {
			continue
		}
		if s.ExitCode != 0 {
			fmt.Fprintf(&b, "Exit status: %d\n", s.ExitCode)
		}
		if s.Message != "" {
			fmt.Fprintf(&b, "Message: %s\n", s.Message)
		}
		if strings.TrimSpace(s.Output) != "" {
			fmt.Fprintln(&b, "Output:")
			for _, line := range strings.Split(strings.TrimRight(s.Output, "\n"), "\n") {
				fmt.Fprintf(&b, "    %s\n", line)
			}
		}
	}

	return b.String()
}
