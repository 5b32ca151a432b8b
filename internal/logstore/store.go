// Package logstore persists readings as a single JSON array on disk with
// size-bounded rotation. The whole-array read-modify-write scheme is kept
// deliberately: the log-search utility consumes exactly this format. It is a
// known scaling limit for large logs, not a bug.
package logstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"device_monitor/internal/models"
)

// Store appends readings to a live JSON file and rotates it once it grows
// past the size threshold. Single-writer per process; concurrent processes
// on one file are unsupported.
type Store struct {
	path     string
	maxSize  int64 // rotation threshold in bytes
	maxFiles int   // retained rotated siblings: path.1 .. path.maxFiles
}

// New builds a store for the given live file. maxSize <= 0 disables
// rotation.
func New(path string, maxSize int64, maxFiles int) *Store {
	return &Store{path: path, maxSize: maxSize, maxFiles: maxFiles}
}

// Path returns the live file location.
func (s *Store) Path() string { return s.path }

// Append adds one reading to the persisted array, rotating first when the
// live file exceeds the size threshold. A corrupt or non-array live file is
// reset to an empty array rather than failing the cycle.
func (s *Store) Append(r models.Reading) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("logstore: create directory: %w", err)
		}
	}

	if s.maxSize > 0 {
		if info, err := os.Stat(s.path); err == nil && info.Size() > s.maxSize {
			if err := s.Rotate(); err != nil {
				return fmt.Errorf("logstore: rotate: %w", err)
			}
		}
	}

	readings := s.Readings()
	readings = append(readings, r)

	data, err := json.MarshalIndent(readings, "", "  ")
	if err != nil {
		return fmt.Errorf("logstore: encode: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("logstore: write: %w", err)
	}
	return nil
}

// Readings returns the persisted array in append order. A missing, corrupt
// or non-array file yields an empty slice.
func (s *Store) Readings() []models.Reading {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var out []models.Reading
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

// Rotate shifts the retention chain: path.maxFiles is dropped, each path.i
// becomes path.(i+1), and the live file becomes path.1. The live file is
// recreated fresh by the next Append. With maxFiles = N the chain never
// exceeds N+1 files.
func (s *Store) Rotate() error {
	oldest := s.rotated(s.maxFiles)
	if _, err := os.Stat(oldest); err == nil {
		if err := os.Remove(oldest); err != nil {
			return err
		}
	}

	for i := s.maxFiles - 1; i >= 1; i-- {
		src := s.rotated(i)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := os.Rename(src, s.rotated(i+1)); err != nil {
			return err
		}
	}

	if _, err := os.Stat(s.path); err == nil {
		return os.Rename(s.path, s.rotated(1))
	}
	return nil
}

func (s *Store) rotated(i int) string {
	return fmt.Sprintf("%s.%d", s.path, i)
}
