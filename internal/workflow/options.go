package workflow

import (
	"fmt"
	"strings"
)

// Generator selects the symbol format produced by buildtools.
type Generator string

const (
	// Breakpad produces Breakpad symbol files. It is the default.
	Breakpad Generator = "breakpad"
	// Csym produces Crashlytics csym files.
	Csym Generator = "csym"
)

// Generators lists the accepted generator kinds.
var Generators = []Generator{Breakpad, Csym}

// ParseGenerator maps a user-supplied value to a Generator. An empty
// value selects Breakpad.
func ParseGenerator(s string) (Generator, error) {
	if s == "" {
		return Breakpad, nil
	}
	for _, g := range Generators {
		if Generator(s) == g {
			return g, nil
		}
	}
	return "", fmt.Errorf(`%w: invalid generator %q, --symbol-generator should be set to either "breakpad" or "csym"`, ErrConfig, s)
}

// RunConfig is the validated set of options for one invocation.
type RunConfig struct {
	AppID     string
	Generator Generator
	DryRun    bool // generate only, never upload
	Debug     bool // stream buildtools output to the terminal
}

// Resolve validates raw options into a RunConfig. It performs no I/O.
func Resolve(app, generator string, dryRun, debug bool) (RunConfig, error) {
	app = strings.TrimSpace(app)
	if app == "" {
		return RunConfig{}, fmt.Errorf("%w: missing app id, set the --app option to a valid Firebase app id and try again", ErrConfig)
	}
	gen, err := ParseGenerator(generator)
	if err != nil {
		return RunConfig{}, err
	}
	return RunConfig{
		AppID:     app,
		Generator: gen,
		DryRun:    dryRun,
		Debug:     debug,
	}, nil
}
