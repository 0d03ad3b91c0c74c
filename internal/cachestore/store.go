// Package cachestore persists per-model fetch results as one JSON record
// per (kind, key) pair under a configurable base directory.
package cachestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// Kind namespaces cache records so one kind can be refreshed or cleared
// without touching the others.
type Kind string

const (
	KindHash     Kind = "hash"
	KindTriggers Kind = "triggers"
	KindPrompts  Kind = "prompts"
)

// Kinds lists every cache namespace.
var Kinds = []Kind{KindHash, KindTriggers, KindPrompts}

// KindStats summarizes one cache namespace on disk.
type KindStats struct {
	Entries int   `json:"entries"`
	Bytes   int64 `json:"bytes"`
}

// Store is a file-backed key-value cache.
type Store struct {
	baseDir string
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a store rooted at baseDir, creating it if needed.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// BaseDir returns the directory the store persists under.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Get reads the record for (kind, key) into out. A missing or corrupt
// record is a miss, never an error.
func (s *Store) Get(kind Kind, key string, out any) bool {
	data, err := os.ReadFile(s.recordPath(kind, key))
	if err != nil {
		s.misses.Add(1)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.misses.Add(1)
		return false
	}
	s.hits.Add(1)
	return true
}

// Put writes the record for (kind, key), replacing any previous value.
func (s *Store) Put(kind Kind, key string, payload any) error {
	dir := filepath.Join(s.baseDir, string(kind))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache kind directory: %w", err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache record: %w", err)
	}

	// Write via a temp file so a crash never leaves a half-written record.
	path := s.recordPath(kind, key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to finalize cache record: %w", err)
	}
	return nil
}

// Delete removes the record for (kind, key) if present.
func (s *Store) Delete(kind Kind, key string) error {
	err := os.Remove(s.recordPath(kind, key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear removes every record of the given kind and reports how many went.
func (s *Store) Clear(kind Kind) (int, error) {
	dir := filepath.Join(s.baseDir, string(kind))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Stats returns per-kind entry counts and byte totals.
func (s *Store) Stats() map[Kind]KindStats {
	stats := make(map[Kind]KindStats, len(Kinds))
	for _, kind := range Kinds {
		var ks KindStats
		entries, err := os.ReadDir(filepath.Join(s.baseDir, string(kind)))
		if err == nil {
			for _, entry := range entries {
				if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
					continue
				}
				ks.Entries++
				if info, err := entry.Info(); err == nil {
					ks.Bytes += info.Size()
				}
			}
		}
		stats[kind] = ks
	}
	return stats
}

// Hits returns how many reads found a usable record.
func (s *Store) Hits() int64 { return s.hits.Load() }

// Misses returns how many reads found nothing usable.
func (s *Store) Misses() int64 { return s.misses.Load() }

func (s *Store) recordPath(kind Kind, key string) string {
	return filepath.Join(s.baseDir, string(kind), sanitizeKey(key)+".json")
}

// sanitizeKey maps arbitrary keys onto a safe filename charset.
func sanitizeKey(key string) string {
	var sb strings.Builder
	sb.Grow(len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
