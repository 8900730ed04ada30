package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/deixis/crashsym/internal/logger"
	"github.com/deixis/crashsym/internal/report"
	"github.com/deixis/crashsym/internal/workflow"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type uploadParams struct {
	App             string   `json:"app,omitempty" jsonschema:"Firebase app id (e.g. 1:1234567890:android:abcdef). Defaults to the app key of .crashsym.yaml."`
	SymbolFiles     []string `json:"symbol_files" jsonschema:"Unstripped native libraries or archives of them. Relative paths resolve against the workspace root."`
	SymbolGenerator string   `json:"symbol_generator,omitempty" jsonschema:"Symbol format: breakpad (default) or csym."`
	DryRun          bool     `json:"dry_run,omitempty" jsonschema:"Generate symbols without uploading them. Default: false."`
}

func (h *handler) uploadHandler(ctx context.Context, req *mcp.CallToolRequest, params uploadParams) (*mcp.CallToolResult, any, error) {
	ws := h.workspace()
	cfg := ws.Config

	app := params.App
	if app == "" {
		app = cfg.App
	}
	generator := params.SymbolGenerator
	if generator == "" {
		generator = cfg.SymbolGenerator
	}

	files := make([]string, len(params.SymbolFiles))
	for i, f := range params.SymbolFiles {
		if !filepath.IsAbs(f) && ws.Dir != "" {
			f = filepath.Join(ws.Dir, f)
		}
		files[i] = f
	}

	// Output is always captured: streaming would write into the stdio
	// transport.
	var log bytes.Buffer
	e := &workflow.Engine{
		Java:   cfg.JavaBinary(),
		Tools:  ws.Jars,
		Runner: ws.Runner,
		Log:    logger.NewPlain(&log, false),
	}
	rr, err := e.Run(ctx, workflow.Request{
		App:       app,
		Generator: generator,
		DryRun:    params.DryRun,
		Files:     files,
		CacheRoot: ws.CacheRoot,
	})
	if rr == nil {
		return errorResult(fmt.Sprintf("upload failed: %v", err))
	}

	// Save results for crashlytics_symbols_inspect.
	_ = h.store.Save(rr)

	return textResult(formatUpload(rr, log.String(), err))
}

func formatUpload(rr *report.RunResult, log string, runErr error) string {
	var b strings.Builder

	if runErr == nil {
		fmt.Fprintln(&b, "Status: PASS")
	} else {
		fmt.Fprintln(&b, "Status: FAIL")
	}
	fmt.Fprintf(&b, "Run: %s\n", rr.ID)
	fmt.Fprintf(&b, "App: %s (%s)\n", rr.AppID, rr.Generator)
	fmt.Fprintf(&b, "Cache: %s\n", rr.CachePath)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "Steps:")
	for _, s := range rr.Steps {
		name := string(s.Mode)
		if s.SymbolFile != "" {
			name += " " + s.SymbolFile
		}
		fmt.Fprintf(&b, "  %s: %s\n", name, s.Status)
	}
	fmt.Fprintln(&b)

	if log != "" {
		fmt.Fprintln(&b, "Log:")
		for _, line := range strings.Split(strings.TrimRight(log, "\n"), "\n") {
			fmt.Fprintf(&b, "    %s\n", line)
		}
		fmt.Fprintln(&b)
	}

	fmt.Fprintf(&b, "Summary: %s\n", rr.Summary())
	if runErr != nil {
		fmt.Fprintf(&b, "Error: %v\n", runErr)

		var unavailable workflow.ErrToolUnavailable
		if errors.As(runErr, &unavailable) {
			fmt.Fprintln(&b, "Action: install java and re-run crashlytics_symbols_upload.")
		} else if f := rr.Failed(); f != nil {
			target := ""
			if f.SymbolFile != "" {
				target = fmt.Sprintf(", symbol_file=%q", f.SymbolFile)
			}
			fmt.Fprintf(&b, "Inspect with crashlytics_symbols_inspect(run_id=%q%s).\n", rr.ID, target)
		}
	}

	return b.String()
}
