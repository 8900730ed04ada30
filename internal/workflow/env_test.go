package workflow

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deixis/crashsym/internal/config"
)

func TestNewEnvironment_FromConfig(t *testing.T) {
	loaded := &config.LoadResult{
		Path: "/ws/.crashsym.yaml",
		Config: &config.Config{
			Jar:               "/ws/buildtools.jar",
			CacheDir:          "/ws/symcache",
			BuildtoolsDir:     "/ws/jars",
			BuildtoolsVersion: "3.0.2",
			RawTimeout:        "2m",
			RawMaxOutput:      4096,
		},
	}
	none := func(string) string { return "" }

	env, err := NewEnvironment("/ws", loaded, none)
	if err != nil {
		t.Fatalf("NewEnvironment() error = %v", err)
	}
	if env.Dir != "/ws" || env.Runner.Dir != "/ws" {
		t.Errorf("Dir = %q, Runner.Dir = %q, want /ws", env.Dir, env.Runner.Dir)
	}
	if env.ConfigPath != "/ws/.crashsym.yaml" {
		t.Errorf("ConfigPath = %q", env.ConfigPath)
	}
	if env.Runner.Timeout != 2*time.Minute {
		t.Errorf("Runner.Timeout = %v, want 2m", env.Runner.Timeout)
	}
	if env.Runner.MaxOutput != 4096 {
		t.Errorf("Runner.MaxOutput = %d, want 4096", env.Runner.MaxOutput)
	}
	if env.Jars.LocalJar != "/ws/buildtools.jar" || env.Jars.CacheDir != "/ws/jars" || env.Jars.Version != "3.0.2" {
		t.Errorf("Jars = %+v", env.Jars)
	}
	if env.CacheRoot != "/ws/symcache" {
		t.Errorf("CacheRoot = %q, want /ws/symcache", env.CacheRoot)
	}
}

func TestNewEnvironment_Defaults(t *testing.T) {
	env, err := NewEnvironment("/ws", &config.LoadResult{Config: &config.Config{BuildtoolsDir: "/jars"}}, func(string) string { return "" })
	if err != nil {
		t.Fatalf("NewEnvironment() error = %v", err)
	}
	if env.CacheRoot != os.TempDir() {
		t.Errorf("CacheRoot = %q, want %q", env.CacheRoot, os.TempDir())
	}
	if env.Runner.Timeout != 0 {
		t.Errorf("Runner.Timeout = %v, want 0", env.Runner.Timeout)
	}
	if env.Jars.Version != config.DefaultBuildtoolsVersion {
		t.Errorf("Jars.Version = %q", env.Jars.Version)
	}
	if got := env.Jars.Path(); got != filepath.Join("/jars", config.DefaultBuildtoolsVersion, "firebase-crashlytics-buildtools-"+config.DefaultBuildtoolsVersion+".jar") {
		t.Errorf("Jars.Path() = %q", got)
	}
}

func TestNewEnvironment_EnvWins(t *testing.T) {
	loaded := &config.LoadResult{Config: &config.Config{Jar: "/cfg.jar", CacheDir: "/cfg", BuildtoolsDir: "/jars"}}
	env := map[string]string{
		config.EnvLocalJar:  "/env.jar",
		config.EnvCacheRoot: "/env",
	}

	got, err := NewEnvironment("/ws", loaded, func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("NewEnvironment() error = %v", err)
	}
	if got.Jars.LocalJar != "/env.jar" || got.CacheRoot != "/env" {
		t.Errorf("LocalJar = %q, CacheRoot = %q, want env values", got.Jars.LocalJar, got.CacheRoot)
	}
}
