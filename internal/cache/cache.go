// Package cache persists artifact and step state between swd invocations
// (spec §4.7, §6). Atomic writes follow the teacher's
// internal/cli/executor.go's writeFileAtomic pattern — temp file in the same
// directory, write, rename over the final name — adapted to afero.Fs so the
// same code path is exercised by in-memory tests. Cross-process exclusion
// uses gofrs/flock, since afero has no locking primitive of its own and
// nothing else in the retrieval pack solves that concern.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

// ErrMalformed is wrapped by any save file that fails to parse as JSON.
var ErrMalformed = errors.New("malformed artifact save data")

const (
	artifactsFile = "artifacts.json"
	stepsFile     = "steps.json"
	lockFile      = ".lock"
)

// ArtifactRecord is the persisted state of one artifact: its last known
// content hash, plus the link type recorded against every step that
// references it (spec §4.7).
type ArtifactRecord struct {
	Hash  string            `json:"hash"`
	Marks map[string]string `json:"marks,omitempty"`
}

// DepRecord is the persisted state of one dependency of a step.
type DepRecord struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Hash string `json:"hash"`
}

// StepRecord is the persisted state of one step: whether it has completed,
// and the hashes of the dependencies it completed against.
type StepRecord struct {
	Completed    bool        `json:"completed,omitempty"`
	Dependencies []DepRecord `json:"dependencies,omitempty"`
}

// Store reads and writes artifacts.json/steps.json under a cache directory,
// and guards the directory with an advisory lock file.
type Store struct {
	fs   afero.Fs
	dir  string
	lock *flock.Flock
}

// NewStore returns a Store rooted at dir. dir is created if it does not
// already exist.
func NewStore(fsys afero.Fs, dir string) (*Store, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir %s: %w", dir, err)
	}
	return &Store{fs: fsys, dir: dir}, nil
}

// Lock acquires the cache directory's advisory lock, non-blocking. It
// returns an error if another process already holds it. Locking is always
// done against the real filesystem path, independent of the afero.Fs the
// Store otherwise uses, since advisory locks have no in-memory equivalent.
func (s *Store) Lock() error {
	s.lock = flock.New(filepath.Join(s.dir, lockFile))
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("locking cache dir %s: %w", s.dir, err)
	}
	if !ok {
		return fmt.Errorf("cache dir %s is locked by another swd process", s.dir)
	}
	return nil
}

// Unlock releases the lock acquired by Lock. Safe to call even if Lock was
// never called.
func (s *Store) Unlock() error {
	if s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

// LoadArtifacts reads artifacts.json. A missing file yields an empty map
// and no error; a malformed file aborts with ErrMalformed.
func (s *Store) LoadArtifacts() (map[string]ArtifactRecord, error) {
	records := make(map[string]ArtifactRecord)
	if err := s.loadJSON(artifactsFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveArtifacts atomically overwrites artifacts.json.
func (s *Store) SaveArtifacts(records map[string]ArtifactRecord) error {
	return s.saveJSON(artifactsFile, records)
}

// LoadSteps reads steps.json. A missing file yields an empty map and no
// error; a malformed file aborts with ErrMalformed.
func (s *Store) LoadSteps() (map[string]StepRecord, error) {
	records := make(map[string]StepRecord)
	if err := s.loadJSON(stepsFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveSteps atomically overwrites steps.json.
func (s *Store) SaveSteps(records map[string]StepRecord) error {
	return s.saveJSON(stepsFile, records)
}

func (s *Store) loadJSON(name string, out interface{}) error {
	path := filepath.Join(s.dir, name)

	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if !exists {
		return nil
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return nil
}

func (s *Store) saveJSON(name string, in interface{}) error {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}
	return s.writeFileAtomic(name, data, 0o644)
}

// writeFileAtomic adapts the teacher's os.CreateTemp/os.Rename pattern to
// afero.Fs: create a sibling temp file, write and close it, then rename it
// over the final path so a crash mid-write never leaves a half-written
// artifacts.json or steps.json.
func (s *Store) writeFileAtomic(name string, data []byte, perm os.FileMode) error {
	finalPath := filepath.Join(s.dir, name)

	tmp, err := afero.TempFile(s.fs, s.dir, name+".tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", finalPath, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := s.fs.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := s.fs.Rename(tmpName, finalPath); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", tmpName, finalPath, err)
	}
	return nil
}
