// Package report records the steps of symbol runs so that captured tool
// output can be retrieved after the run has finished.
package report

import "fmt"

// Mode identifies which buildtools action a step performed.
type Mode string

const (
	// Generate turns one unstripped library into a symbol file.
	Generate Mode = "generate"
	// Upload sends every generated symbol file of a run.
	Upload Mode = "upload"
)

// Status values for a step.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Store persists and retrieves run results.
type Store interface {
	Save(result *RunResult) error
	Load(runID string) (*RunResult, error)
}

// RunResult holds the structured record of one pipeline run.
type RunResult struct {
	ID        string `json:"id"`
	AppID     string `json:"app_id"`
	Generator string `json:"symbol_generator"`
	CachePath string `json:"cache_path"`
	DryRun    bool   `json:"dry_run,omitempty"`
	Steps     []Step `json:"steps"`
}

// Step records one buildtools invocation, or one that was never started
// because an earlier step failed.
type Step struct {
	Mode       Mode   `json:"mode"`
	SymbolFile string `json:"symbol_file,omitempty"` // generate steps only
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"` // status line shown to the user
	ExitCode   int    `json:"exit_code,omitempty"`
	Output     string `json:"output,omitempty"` // captured stdout; empty when streamed
}

// Failed returns the first failed step, or nil.
func (r *RunResult) Failed() *Step {
	for i := range r.Steps {
		if r.Steps[i].Status == StatusFailed {
			return &r.Steps[i]
		}
	}
	return nil
}

// Uploaded reports whether the upload step ran successfully.
func (r *RunResult) Uploaded() bool {
	for _, s := range r.Steps {
		if s.Mode == Upload && s.Status == StatusOK {
			return true
		}
	}
	return false
}

// ByFile returns the steps for a given symbol file. An empty file
// selects every step of the run.
func ByFile(result *RunResult, file string) []Step {
	if file == "" {
		return result.Steps
	}
	var out []Step
	for _, s := range result.Steps {
		if s.SymbolFile == file {
			out = append(out, s)
		}
	}
	return out
}

// Summary returns a one-line description of the run outcome.
func (r *RunResult) Summary() string {
	generated := 0
	for _, s := range r.Steps {
		if s.Mode == Generate && s.Status == StatusOK {
			generated++
		}
	}
	switch {
	case r.Failed() != nil:
		f := r.Failed()
		if f.Mode == Upload {
			return fmt.Sprintf("upload failed after generating %d symbol files", generated)
		}
		return fmt.Sprintf("generation failed for %s", f.SymbolFile)
	case r.DryRun:
		return fmt.Sprintf("generated %d symbol files, upload skipped (dry run)", generated)
	case r.Uploaded():
		return fmt.Sprintf("generated and uploaded %d symbol files", generated)
	default:
		return fmt.Sprintf("generated %d symbol files", generated)
	}
}
