// Package store persists the workflow run ledger to a YAML file.
//
// The run file is the single source of truth between CLI invocations.
// Writes are atomic (temp file + rename) so a crash mid-write never leaves
// a corrupted ledger behind.
//
// File discovery order:
//  1. SEQPLAN_RUN_PATH environment variable (used as-is if set)
//  2. Explicit path parameter (e.g. from config)
//  3. Auto-discovery: .seqplan/run.yaml, then legacy seqplan-run.yaml
//  4. Default: .seqplan/run.yaml (created on first save)
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"seqplan/internal/run"
)

// DefaultRunPath is the canonical location of the run file relative to the
// project root.
const DefaultRunPath = ".seqplan/run.yaml"

// LegacyRunPath is the old root-level location of the run file.
const LegacyRunPath = "seqplan-run.yaml"

// runPaths lists the paths to search (in priority order) when
// auto-discovering the run file.
var runPaths = []string{
	DefaultRunPath,
	LegacyRunPath,
}

// ErrNoRun is a sentinel error indicating no workflow run exists yet.
// Callers should start a run with a planning step rather than treat this
// as a failure condition.
var ErrNoRun = errors.New("no workflow run found")

// ResolvePath discovers the run file location.
//
// The basePath is the project root directory; pass empty string for cwd.
// The runPath is an explicit override (e.g. from config); pass empty string
// for auto-discovery. The SEQPLAN_RUN_PATH environment variable takes
// priority over both.
func ResolvePath(basePath, runPath string) string {
	// 1. Environment variable takes highest priority
	if envPath := os.Getenv("SEQPLAN_RUN_PATH"); envPath != "" {
		return envPath
	}

	// 2. Explicit path from config
	if runPath != "" {
		return filepath.Join(basePath, runPath)
	}

	// 3. Auto-discover by checking each path
	for _, p := range runPaths {
		fullPath := filepath.Join(basePath, p)
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath
		}
	}

	// 4. Default path
	return filepath.Join(basePath, DefaultRunPath)
}

// Store reads and writes the workflow run file.
//
// Use [NewStore] for auto-discovery or [NewStoreWithPath] for an explicit
// path. The resolved path is fixed at construction time.
type Store struct {
	path string
}

// NewStore creates a [Store] that auto-discovers the run file under basePath.
// Pass an empty string to use the current working directory.
func NewStore(basePath string) *Store {
	return &Store{
		path: ResolvePath(basePath, ""),
	}
}

// NewStoreWithPath creates a [Store] using the specified run file path
// relative to basePath. The SEQPLAN_RUN_PATH environment variable still
// takes priority if set.
func NewStoreWithPath(basePath, runPath string) *Store {
	return &Store{
		path: ResolvePath(basePath, runPath),
	}
}

// Path returns the resolved run file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a run file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads and parses the run file.
//
// Returns [ErrNoRun] if the file does not exist.
func (s *Store) Load() (*run.WorkflowRun, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNoRun, s.path)
		}
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}

	var r run.WorkflowRun
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse run file: %w", err)
	}

	return &r, nil
}

// Save writes the run to the run file atomically.
//
// The parent directory is created if needed. The write goes to a temp file
// first and is renamed into place, so readers never observe a partial file.
func (s *Store) Save(r *run.WorkflowRun) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create run directory: %w", err)
		}
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write run file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		// Clean up temp file on rename failure
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write run file: %w", err)
	}

	return nil
}

// Delete removes the run file. Deleting a missing file is not an error.
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete run file: %w", err)
	}
	return nil
}
