package workflow

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/deixis/crashsym/internal/report"
	"github.com/google/uuid"
)

// Plan is everything the pipeline needs once options are resolved.
type Plan struct {
	Config    RunConfig
	ToolPath  string   // buildtools jar
	CachePath string   // shared by every step of the run
	Files     []string // unstripped libraries, in the order given
}

// Upload generates symbols for every file in order and then uploads them
// in a single call, unless the run is a dry run. The first failing step
// aborts the run; later steps are recorded as skipped and never started.
//
// The returned RunResult is non-nil whenever the pipeline started, even
// on error, so callers can keep the record of the failed run.
func (e *Engine) Upload(ctx context.Context, p Plan) (*report.RunResult, error) {
	cfg := p.Config
	rr := &report.RunResult{
		ID:        uuid.New().String(),
		AppID:     cfg.AppID,
		Generator: string(cfg.Generator),
		CachePath: p.CachePath,
		DryRun:    cfg.DryRun,
	}
	for _, f := range p.Files {
		rr.Steps = append(rr.Steps, report.Step{Mode: Generate, SymbolFile: f, Status: report.StatusSkipped})
	}
	if !cfg.DryRun {
		rr.Steps = append(rr.Steps, report.Step{Mode: Upload, Status: report.StatusSkipped})
	}

	for i, file := range p.Files {
		e.Log.Bullet("Generating symbols for %s", file)

		inv := Invocation{
			ToolPath:   p.ToolPath,
			Generator:  cfg.Generator,
			CachePath:  p.CachePath,
			Mode:       Generate,
			SymbolFile: file,
		}
		msg, err := e.step(ctx, inv, cfg.Debug, &rr.Steps[i])
		if err != nil {
			return rr, err
		}
		if msg != "" {
			e.Log.Bullet("%s", msg)
		} else {
			e.Log.Bullet("Generated symbols for %s", file)
			e.Log.Bullet("Output Path: %s", p.CachePath)
		}
	}

	if cfg.DryRun {
		e.Log.Bullet("Skipping upload because --dry-run was passed")
		return rr, nil
	}

	e.Log.Bullet("Uploading all generated symbols...")
	inv := Invocation{
		ToolPath:  p.ToolPath,
		Generator: cfg.Generator,
		CachePath: p.CachePath,
		Mode:      Upload,
		AppID:     cfg.AppID,
	}
	msg, err := e.step(ctx, inv, cfg.Debug, &rr.Steps[len(rr.Steps)-1])
	if err != nil {
		return rr, err
	}
	if msg != "" {
		e.Log.Bullet("%s", msg)
	}
	e.Log.Success("Successfully uploaded all symbols")
	return rr, nil
}

// step runs one buildtools invocation and records it in st. It returns
// the interpreted status line, which is empty when output was streamed
// or matched no known pattern.
func (e *Engine) step(ctx context.Context, inv Invocation, stream bool, st *report.Step) (string, error) {
	// The only cancellation point: a step that has not started yet.
	if err := ctx.Err(); err != nil {
		return "", err
	}

	argv := append([]string{e.javaBinary()}, inv.Args()...)
	e.Log.Debug("running %s", strings.Join(argv, " "))

	res, err := e.Runner.Run(ctx, argv, stream)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			err = NewErrToolUnavailable(e.javaBinary())
		}
		st.Status = report.StatusFailed
		st.Message = err.Error()
		return "", err
	}

	out := string(res.Stdout)
	st.ExitCode = res.ExitCode
	st.Output = out

	if res.ExitCode != 0 {
		if !res.Streamed {
			warning := out
			if strings.TrimSpace(warning) == "" {
				warning = "An unknown error occurred"
			}
			e.Log.Warn("%s", warning)
		}
		toolErr := &ToolExecutionError{
			Tool:       e.javaBinary(),
			Mode:       inv.Mode,
			SymbolFile: inv.SymbolFile,
			ExitCode:   res.ExitCode,
		}
		st.Status = report.StatusFailed
		st.Message = toolErr.Error()
		return "", toolErr
	}

	msg := Interpret(out, inv.Mode)
	st.Status = report.StatusOK
	st.Message = msg
	return msg, nil
}
