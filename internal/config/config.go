// Package config loads and validates the optional .crashsym.yaml file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file looked up from the
// working directory upwards.
const FileName = ".crashsym.yaml"

// Environment variables consulted by the CLI and MCP server.
const (
	EnvCacheRoot = "FIREBASE_CRASHLYTICS_CACHE_PATH"
	EnvLocalJar  = "CRASHLYTICS_LOCAL_JAR"
)

// Default values.
const (
	DefaultJava              = "java"
	DefaultBuildtoolsVersion = "3.0.3"
	DefaultMaxOutput         = 1 << 20 // 1 MB
)

// Config holds the parsed .crashsym.yaml configuration.
// All fields are optional; zero values represent defaults. Command-line
// flags take precedence over every field.
type Config struct {
	Version           int    `yaml:"version"`
	App               string `yaml:"app"`                // default --app
	SymbolGenerator   string `yaml:"symbol_generator"`   // default --symbol-generator
	Java              string `yaml:"java"`               // java executable
	Jar               string `yaml:"jar"`                // local buildtools jar, skips the download
	CacheDir          string `yaml:"cache_dir"`          // root for intermediate symbol files
	BuildtoolsDir     string `yaml:"buildtools_dir"`     // where downloaded jars are kept
	BuildtoolsVersion string `yaml:"buildtools_version"` // e.g. "3.0.3"
	RawTimeout        string `yaml:"timeout"`            // e.g. "10m"; empty waits forever
	RawMaxOutput      int    `yaml:"max_output"`         // bytes
}

// JavaBinary returns the configured java executable or "java".
func (c *Config) JavaBinary() string {
	if c.Java != "" {
		return c.Java
	}
	return DefaultJava
}

// BuildtoolsRelease returns the configured buildtools version or the default.
func (c *Config) BuildtoolsRelease() string {
	if c.BuildtoolsVersion != "" {
		return c.BuildtoolsVersion
	}
	return DefaultBuildtoolsVersion
}

// Timeout returns the configured per-process timeout. Zero means the
// tool is waited for indefinitely.
func (c *Config) Timeout() time.Duration {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err == nil && d > 0 {
			return d
		}
	}
	return 0
}

// MaxOutputBytes returns the configured max output size or the default.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return DefaultMaxOutput
}

// LocalJar returns the buildtools jar override. The environment wins
// over the config file.
func (c *Config) LocalJar(getenv func(string) string) string {
	if v := getenv(EnvLocalJar); v != "" {
		return v
	}
	return c.Jar
}

// CacheRootOverride returns the cache root override, or "" when the
// platform temp directory should be used. The environment wins over the
// config file.
func (c *Config) CacheRootOverride(getenv func(string) string) string {
	if v := getenv(EnvCacheRoot); v != "" {
		return v
	}
	return c.CacheDir
}

// BuildtoolsCacheDir returns where downloaded jars are kept: the
// configured directory, else <user cache dir>/crashsym/buildtools.
func (c *Config) BuildtoolsCacheDir() (string, error) {
	if c.BuildtoolsDir != "" {
		return c.BuildtoolsDir, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating user cache dir: %w", err)
	}
	return filepath.Join(dir, "crashsym", "buildtools"), nil
}

// LoadResult holds the parsed config and where it was found.
type LoadResult struct {
	Config *Config
	Path   string // empty when no config file exists
}

// Load looks for .crashsym.yaml in dir and its parents. If no file
// exists, a default Config is returned.
func Load(dir string) (*LoadResult, error) {
	path, err := findConfig(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return &LoadResult{Config: &Config{}}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &LoadResult{Config: cfg, Path: path}, nil
}

// findConfig walks upward from dir looking for FileName.
func findConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
