package runner

// Result holds the outcome of one tool process.
type Result struct {
	RunID     string // unique identifier for this process run
	ExitCode  int    // process exit code
	Stdout    []byte // captured stdout; empty when streamed to the terminal
	Stderr    []byte // captured stderr; empty when streamed to the terminal
	Streamed  bool   // true if output went to the terminal instead of being captured
	Truncated bool   // true if captured output exceeded the size cap
}
