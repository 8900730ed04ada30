package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrUnknownRun is returned by Load for run ids that were never saved.
var ErrUnknownRun = errors.New("unknown run")

// DiskStore keeps one JSON ledger file per run. Files live in a temp
// directory private to the process, so runs are forgotten on restart.
type DiskStore struct {
	mu  sync.Mutex
	dir string // created on first use
}

func NewDiskStore() *DiskStore {
	return &DiskStore{}
}

func (s *DiskStore) Save(result *RunResult) error {
	path, err := s.ledgerPath(result.ID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding run %s: %w", result.ID, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("saving run %s: %w", result.ID, err)
	}
	return nil
}

func (s *DiskStore) Load(runID string) (*RunResult, error) {
	path, err := s.ledgerPath(runID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("reading run %s: %w", runID, err)
	}
	result := &RunResult{}
	if err := json.Unmarshal(data, result); err != nil {
		return nil, fmt.Errorf("decoding run %s: %w", runID, err)
	}
	return result, nil
}

// ledgerPath maps a run id to its file. Ids that are not a single path
// element are rejected.
func (s *DiskStore) ledgerPath(runID string) (string, error) {
	if runID == "" || runID == "." || runID == ".." || strings.ContainsAny(runID, `/\`) {
		return "", fmt.Errorf("invalid run id %q", runID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dir == "" {
		dir, err := os.MkdirTemp("", "crashsym-runs-*")
		if err != nil {
			return "", fmt.Errorf("creating run ledger directory: %w", err)
		}
		s.dir = dir
	}
	return filepath.Join(s.dir, runID+".json"), nil
}
