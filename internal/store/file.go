package store

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"divenludo/internal/game"
)

// FileStore persists each session as one JSON file under Dir. Files older
// than MaxAge are treated as expired and removed on access.
type FileStore struct {
	Dir    string
	MaxAge time.Duration
}

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string, maxAge time.Duration) *FileStore {
	return &FileStore{Dir: dir, MaxAge: maxAge}
}

func (f *FileStore) path(id string) string {
	return filepath.Join(f.Dir, id+".json")
}

// Save persists a session snapshot to disk.
func (f *FileStore) Save(_ context.Context, s *game.Session) error {
	snapshot := s.ToJSON()
	if snapshot.ID == "" || len(snapshot.ID) < 10 {
		log.Printf("Skipping save for invalid session ID: %s", snapshot.ID)
		return nil
	}

	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		log.Printf("Failed to create sessions directory: %v", err)
		return err
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		log.Printf("Failed to marshal session %s: %v", snapshot.ID, err)
		return err
	}

	sessionFile := f.path(snapshot.ID)
	if err := os.WriteFile(sessionFile, data, 0644); err != nil {
		log.Printf("Failed to write session file %s: %v", sessionFile, err)
		return err
	}
	return nil
}

// load reads and validates a session snapshot, removing expired or corrupt
// files so they are never served again.
func (f *FileStore) load(id string) (game.SessionJSON, error) {
	var snapshot game.SessionJSON
	if id == "" || len(id) < 10 || strings.ContainsAny(id, `/\`) {
		return snapshot, ErrNotFound
	}

	sessionFile := f.path(id)
	info, err := os.Stat(sessionFile)
	if err != nil {
		return snapshot, ErrNotFound
	}

	if f.MaxAge > 0 {
		if fileAge := time.Since(info.ModTime()); fileAge > f.MaxAge {
			log.Printf("Session file is too old (%v, max: %v), removing: %s", fileAge, f.MaxAge, sessionFile)
			os.Remove(sessionFile)
			return snapshot, ErrNotFound
		}
	}

	data, err := os.ReadFile(sessionFile)
	if err != nil {
		log.Printf("Failed to read session file %s: %v", sessionFile, err)
		return snapshot, ErrNotFound
	}

	if err := json.Unmarshal(data, &snapshot); err != nil {
		log.Printf("Failed to unmarshal session file %s (corrupted), removing: %v", sessionFile, err)
		os.Remove(sessionFile)
		return snapshot, ErrNotFound
	}

	if !validSession(snapshot) {
		log.Printf("Session file %s violates word-length invariants, removing", sessionFile)
		os.Remove(sessionFile)
		return snapshot, ErrNotFound
	}

	return snapshot, nil
}

// Get reconstructs a session from its file.
func (f *FileStore) Get(_ context.Context, id string) (*game.Session, error) {
	snapshot, err := f.load(id)
	if err != nil {
		return nil, err
	}
	return game.FromJSON(snapshot), nil
}

// ListGuesses returns the ordered guess records from a session file.
func (f *FileStore) ListGuesses(_ context.Context, id string) ([]game.GuessRecord, error) {
	snapshot, err := f.load(id)
	if err != nil {
		return nil, err
	}
	return snapshot.Records, nil
}

// Delete removes a session file if present.
func (f *FileStore) Delete(_ context.Context, id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil
	}
	err := os.Remove(f.path(id))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// CleanupExpired removes session files older than maxAge.
func (f *FileStore) CleanupExpired(_ context.Context, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(f.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		log.Printf("Failed to read sessions directory: %v", err)
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			log.Printf("Failed to get info for session file %s: %v", entry.Name(), err)
			continue
		}
		if info.ModTime().Before(cutoff) {
			sessionFile := filepath.Join(f.Dir, entry.Name())
			if err := os.Remove(sessionFile); err != nil {
				log.Printf("Failed to remove old session file %s: %v", sessionFile, err)
				continue
			}
			removed++
		}
	}
	return removed, nil
}
