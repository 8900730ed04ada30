// Package buildtools locates the Crashlytics buildtools jar, downloading
// it from the Google Maven repository on first use.
package buildtools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/mod/semver"
	"golang.org/x/sync/singleflight"
)

// DefaultBaseURL is the Maven path of the buildtools artifact.
const DefaultBaseURL = "https://dl.google.com/android/maven2/com/google/firebase/firebase-crashlytics-buildtools"

// ErrBadVersion is returned for release strings that are not x.y.z.
var ErrBadVersion = errors.New("invalid buildtools version")

// Fetcher resolves the jar path. The zero value is not usable: CacheDir
// and Version are required unless LocalJar is set.
type Fetcher struct {
	LocalJar string       // used as is when set
	CacheDir string       // jars are kept in <CacheDir>/<version>/
	Version  string       // e.g. "3.0.3"
	BaseURL  string       // DefaultBaseURL when empty
	Client   *http.Client // http.DefaultClient when nil

	group singleflight.Group
}

// JarName returns the file name of a buildtools release.
func JarName(version string) string {
	return "firebase-crashlytics-buildtools-" + version + ".jar"
}

// CheckVersion reports whether version is a plain x.y.z release.
func CheckVersion(version string) error {
	v := "v" + version
	if !semver.IsValid(v) || semver.Canonical(v) != v || semver.Prerelease(v) != "" {
		return fmt.Errorf("%w: %q", ErrBadVersion, version)
	}
	return nil
}

// Path returns where the jar of f.Version is cached.
func (f *Fetcher) Path() string {
	if f.LocalJar != "" {
		return f.LocalJar
	}
	return filepath.Join(f.CacheDir, f.Version, JarName(f.Version))
}

// URL returns the download location of f.Version.
func (f *Fetcher) URL() string {
	base := f.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return base + "/" + f.Version + "/" + JarName(f.Version)
}

// Resolve returns the local path of the jar. A local jar must exist; a
// cached jar is reused; otherwise the release is downloaded. Concurrent
// calls share one download.
func (f *Fetcher) Resolve(ctx context.Context) (string, error) {
	if f.LocalJar != "" {
		info, err := os.Stat(f.LocalJar)
		if err != nil {
			return "", fmt.Errorf("local buildtools jar: %w", err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("local buildtools jar %s is a directory", f.LocalJar)
		}
		return f.LocalJar, nil
	}

	if err := CheckVersion(f.Version); err != nil {
		return "", err
	}
	path := f.Path()
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	_, err, _ := f.group.Do(path, func() (any, error) {
		if _, err := os.Stat(path); err == nil {
			return nil, nil
		}
		return nil, f.download(ctx, path)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// download writes the release to a temporary file next to dest and
// renames it into place. dest never holds a partial jar.
func (f *Fetcher) download(ctx context.Context, dest string) error {
	url := f.URL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to GET %s: %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write response to file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
