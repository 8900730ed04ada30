package symbolfile

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/xi2/xz"
)

// ErrUnsafePath is returned for archive entries that would be written
// outside the extraction directory.
var ErrUnsafePath = errors.New("archive entry escapes destination")

type format string

const (
	formatZip   format = "zip"
	format7z    format = "7z"
	formatTarGz format = "tar.gz"
	formatTarXz format = "tar.xz"
	formatXz    format = "xz"
)

// archiveExts is ordered so that compound suffixes win over ".xz".
var archiveExts = []struct {
	suffix string
	format format
}{
	{".zip", formatZip},
	{".7z", format7z},
	{".tar.gz", formatTarGz},
	{".tgz", formatTarGz},
	{".tar.xz", formatTarXz},
	{".xz", formatXz},
}

func archiveFormat(path string) format {
	name := strings.ToLower(path)
	for _, ext := range archiveExts {
		if strings.HasSuffix(name, ext.suffix) {
			return ext.format
		}
	}
	return ""
}

// extract unpacks src into dest and returns the regular files written,
// in archive order.
func extract(f format, src, dest string) ([]string, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, err
	}
	switch f {
	case formatZip:
		return extractZip(src, dest)
	case format7z:
		return extract7z(src, dest)
	case formatTarGz, formatTarXz:
		return extractTar(f, src, dest)
	case formatXz:
		return extractXz(src, dest)
	}
	return nil, fmt.Errorf("unsupported archive format: %s", src)
}

func extractZip(src, dest string) ([]string, error) {
	r, err := zip.OpenReader(src)
	if errors.Is(err, zip.ErrInsecurePath) {
		if r != nil {
			r.Close()
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsafePath, src)
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out []string
	for _, f := range r.File {
		if !f.Mode().IsRegular() || skipEntry(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		path, err := writeEntry(dest, f.Name, rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, path)
	}
	return out, nil
}

func extract7z(src, dest string) ([]string, error) {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open 7z archive: %w", err)
	}
	defer r.Close()

	var out []string
	for _, f := range r.File {
		if !f.Mode().IsRegular() || skipEntry(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		path, err := writeEntry(dest, f.Name, rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, path)
	}
	return out, nil
}

func extractTar(f format, src, dest string) ([]string, error) {
	file, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var reader io.Reader
	switch f {
	case formatTarGz:
		gr, err := gzip.NewReader(file)
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		reader = gr
	default:
		xr, err := xz.NewReader(file, 0)
		if err != nil {
			return nil, err
		}
		reader = xr
	}

	tr := tar.NewReader(reader)
	var out []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg || skipEntry(hdr.Name) {
			continue
		}
		path, err := writeEntry(dest, hdr.Name, tr)
		if err != nil {
			return nil, err
		}
		out = append(out, path)
	}
	return out, nil
}

// extractXz decompresses a single xz-compressed library.
func extractXz(src, dest string) ([]string, error) {
	file, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	xr, err := xz.NewReader(file, 0)
	if err != nil {
		return nil, err
	}
	path, err := writeEntry(dest, strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)), xr)
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// skipEntry drops archive metadata that is never a library.
func skipEntry(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(name, "__MACOSX/") || strings.HasPrefix(base, "._") || base == ".DS_Store"
}

// writeEntry copies r to name below dest, refusing paths that escape dest.
func writeEntry(dest, name string, r io.Reader) (string, error) {
	path := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return "", err
	}
	return path, out.Close()
}
