package workflow

import (
	"context"
	"fmt"

	"github.com/deixis/crashsym/internal/report"
	"github.com/deixis/crashsym/internal/symbolfile"
)

// Request holds the raw options of one upload invocation, as given on
// the command line or in an MCP tool call.
type Request struct {
	App       string
	Generator string
	DryRun    bool
	Debug     bool
	Files     []string
	CacheRoot string // resolved root for the run's cache location
}

// Run validates req, prepares its symbol files, resolves the buildtools
// jar and runs the pipeline. Option errors are returned before any file
// is read or any process is started.
func (e *Engine) Run(ctx context.Context, req Request) (*report.RunResult, error) {
	cfg, err := Resolve(req.App, req.Generator, req.DryRun, req.Debug)
	if err != nil {
		return nil, err
	}
	if len(req.Files) == 0 {
		return nil, fmt.Errorf("%w: no symbol files given", ErrConfig)
	}

	loc := BuildCacheLocation(req.CacheRoot, cfg.AppID, cfg.Generator)
	e.Log.Debug("symbol cache %s", loc.Path)

	prepared, err := symbolfile.Prepare(req.Files, loc.LibrariesDir())
	if err != nil {
		return nil, err
	}
	for _, f := range prepared.Files {
		if f.Archive != "" {
			e.Log.Debug("extracted %s from %s", f.Path, f.Archive)
		}
		switch f.Kind {
		case symbolfile.Stripped:
			e.Log.Warn("%s has no debug information, generated symbols may be incomplete", f.Path)
		case symbolfile.NotELF:
			e.Log.Warn("%s is not an ELF library", f.Path)
		}
	}
	for _, p := range prepared.Ignored {
		e.Log.Debug("ignoring %s, not an ELF library", p)
	}

	jar, err := e.Tools.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving buildtools: %w", err)
	}
	e.Log.Debug("buildtools %s", jar)

	return e.Upload(ctx, Plan{
		Config:    cfg,
		ToolPath:  jar,
		CachePath: loc.Path,
		Files:     prepared.Paths(),
	})
}
