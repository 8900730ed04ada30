package workflow

import "github.com/deixis/crashsym/internal/report"

// Mode selects the buildtools action.
type Mode = report.Mode

// Buildtools actions.
const (
	Generate = report.Generate
	Upload   = report.Upload
)

// Invocation describes a single buildtools call.
type Invocation struct {
	ToolPath   string // buildtools jar
	Generator  Generator
	CachePath  string
	Mode       Mode
	SymbolFile string // generate only
	AppID      string // upload only
}

// Args returns the java arguments for the invocation, starting with
// the -jar marker.
func (inv Invocation) Args() []string {
	args := []string{
		"-jar", inv.ToolPath,
		"-symbolGenerator=" + string(inv.Generator),
		"-symbolFileCacheDir=" + inv.CachePath,
		"-verbose",
	}
	if inv.Mode == Generate {
		return append(args, "-generateNativeSymbols", "-unstrippedLibrary="+inv.SymbolFile)
	}
	return append(args, "-uploadNativeSymbols", "-googleAppId="+inv.AppID)
}
