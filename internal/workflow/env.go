package workflow

import (
	"os"

	"github.com/deixis/crashsym/internal/buildtools"
	"github.com/deixis/crashsym/internal/config"
	"github.com/deixis/crashsym/internal/runner"
)

// Environment is everything a workspace's .crashsym.yaml and the process
// environment decide about a run.
type Environment struct {
	Dir        string // workspace; tool processes run here
	Config     *config.Config
	ConfigPath string // empty when no config file exists
	Runner     *runner.Runner
	Jars       *buildtools.Fetcher
	CacheRoot  string
}

// NewEnvironment builds the Environment of dir from its loaded config.
// getenv supplies the cache root and local jar overrides.
func NewEnvironment(dir string, loaded *config.LoadResult, getenv func(string) string) (*Environment, error) {
	cfg := loaded.Config

	jarDir, err := cfg.BuildtoolsCacheDir()
	if err != nil {
		return nil, err
	}

	return &Environment{
		Dir:        dir,
		Config:     cfg,
		ConfigPath: loaded.Path,
		Runner: &runner.Runner{
			Dir:       dir,
			Timeout:   cfg.Timeout(),
			MaxOutput: cfg.MaxOutputBytes(),
		},
		Jars: &buildtools.Fetcher{
			LocalJar: cfg.LocalJar(getenv),
			CacheDir: jarDir,
			Version:  cfg.BuildtoolsRelease(),
		},
		CacheRoot: CacheRoot(cfg.CacheRootOverride(getenv), os.TempDir()),
	}, nil
}
