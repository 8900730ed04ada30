// Package symbolfile validates the unstripped libraries handed to the
// pipeline and expands archives of them into individual files.
package symbolfile

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Kind classifies an input file by the debug information it carries.
type Kind int

const (
	// Unstripped libraries carry DWARF or a symbol table.
	Unstripped Kind = iota
	// Stripped libraries are ELF files without debug information.
	Stripped
	// NotELF files are not ELF objects at all.
	NotELF
)

func (k Kind) String() string {
	switch k {
	case Unstripped:
		return "unstripped"
	case Stripped:
		return "stripped"
	case NotELF:
		return "not ELF"
	}
	return "unknown"
}

// File is one library to generate symbols for.
type File struct {
	Path    string
	Archive string // archive the file was extracted from; empty for direct inputs
	Kind    Kind
}

// Result is the outcome of Prepare.
type Result struct {
	Files   []File   // in input order; archive members in archive order
	Ignored []string // archive members that are not ELF objects
}

// debugSections mark a library as unstripped.
var debugSections = []string{".debug_info", ".zdebug_info", ".symtab"}

var elfMagic = []byte(elf.ELFMAG)

// Inspect reports what kind of library path is.
func Inspect(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	magic := make([]byte, len(elfMagic))
	if _, err := io.ReadFull(f, magic); err != nil || !bytes.Equal(magic, elfMagic) {
		return NotELF, nil
	}

	ef, err := elf.NewFile(f)
	if err != nil {
		var fe *elf.FormatError
		if errors.As(err, &fe) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return NotELF, nil
		}
		return 0, fmt.Errorf("reading ELF %s: %w", path, err)
	}
	defer ef.Close()

	for _, name := range debugSections {
		if ef.Section(name) != nil {
			return Unstripped, nil
		}
	}
	return Stripped, nil
}

// Prepare checks every path and expands archives into scratchDir. Direct
// inputs keep their position and are never filtered; archive members
// that are not ELF objects are dropped and listed in Result.Ignored.
// scratchDir is only created when an archive is present.
func Prepare(paths []string, scratchDir string) (*Result, error) {
	res := &Result{}
	for i, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("symbol file %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("symbol file %s is a directory", p)
		}

		format := archiveFormat(p)
		if format == "" {
			kind, err := Inspect(p)
			if err != nil {
				return nil, err
			}
			res.Files = append(res.Files, File{Path: p, Kind: kind})
			continue
		}

		// Members of different archives never share a directory.
		dest := filepath.Join(scratchDir, fmt.Sprintf("%02d-%s", i, stripArchiveExt(filepath.Base(p))))
		members, err := extract(format, p, dest)
		if err != nil {
			return nil, fmt.Errorf("extracting %s: %w", p, err)
		}

		found := 0
		for _, m := range members {
			kind, err := Inspect(m)
			if err != nil {
				return nil, err
			}
			if kind == NotELF {
				res.Ignored = append(res.Ignored, m)
				continue
			}
			res.Files = append(res.Files, File{Path: m, Archive: p, Kind: kind})
			found++
		}
		if found == 0 {
			return nil, fmt.Errorf("archive %s contains no native libraries", p)
		}
	}
	return res, nil
}

// Paths returns the file paths of r in order.
func (r *Result) Paths() []string {
	out := make([]string, len(r.Files))
	for i, f := range r.Files {
		out[i] = f.Path
	}
	return out
}

func stripArchiveExt(name string) string {
	for _, ext := range archiveExts {
		if strings.HasSuffix(name, ext.suffix) {
			return strings.TrimSuffix(name, ext.suffix)
		}
	}
	return name
}
