package workflow

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// CacheLocation is where one run keeps its intermediate files. Every
// generate call and the upload call of a run share the same Path.
type CacheLocation struct {
	RunDir string // <root>/<run uuid>
	Path   string // <RunDir>/nativeSymbols/<app>/<generator>
}

// LibrariesDir is where libraries extracted from input archives are
// written for the run.
func (c CacheLocation) LibrariesDir() string {
	return filepath.Join(c.RunDir, "unstrippedLibraries")
}

// CacheRoot picks the cache root: the override when set, otherwise the
// platform temp directory.
func CacheRoot(override, tempDir string) string {
	if override != "" {
		return override
	}
	return tempDir
}

// BuildCacheLocation derives a fresh location under root. Each call
// embeds a new random uuid, so two runs never share a directory. No
// directory is created.
func BuildCacheLocation(root, appID string, gen Generator) CacheLocation {
	runDir := filepath.Join(root, uuid.NewString())
	return CacheLocation{
		RunDir: runDir,
		Path:   filepath.Join(runDir, "nativeSymbols", strings.ReplaceAll(appID, ":", "-"), string(gen)),
	}
}

// BuildCachePath returns only the symbol directory of a fresh location.
func BuildCachePath(root, appID string, gen Generator) string {
	return BuildCacheLocation(root, appID, gen).Path
}
