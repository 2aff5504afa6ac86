package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// LetterInfo describes a stored recommendation letter.
type LetterInfo struct {
	FileName  string
	RelPath   string
	CreatedAt time.Time
}

// LetterStore persists recommendation letters on disk, one directory per
// institution under the base directory.
type LetterStore struct {
	baseDir string
}

// NewLetterStore ensures the base directory exists and returns a handle.
func NewLetterStore(baseDir string) (*LetterStore, error) {
	if baseDir == "" {
		baseDir = "./letters"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create letters directory: %w", err)
	}
	return &LetterStore{baseDir: baseDir}, nil
}

// Save writes letter bytes for an institution and returns the relative path.
func (s *LetterStore) Save(insID int64, fileName string, data []byte) (string, error) {
	dir := filepath.Join(s.baseDir, strconv.FormatInt(insID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("prepare letter directory: %w", err)
	}
	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write letter file: %w", err)
	}
	rel, err := filepath.Rel(s.baseDir, path)
	if err != nil {
		rel = path
	}
	return rel, nil
}

// Latest returns the newest letter for an institution, or nil when none exists.
func (s *LetterStore) Latest(insID int64) (*LetterInfo, error) {
	dir := filepath.Join(s.baseDir, strconv.FormatInt(insID, 10))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read letter directory: %w", err)
	}

	var letters []LetterInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		letters = append(letters, LetterInfo{
			FileName:  entry.Name(),
			RelPath:   filepath.Join(strconv.FormatInt(insID, 10), entry.Name()),
			CreatedAt: info.ModTime(),
		})
	}
	if len(letters) == 0 {
		return nil, nil
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i].CreatedAt.After(letters[j].CreatedAt) })
	latest := letters[0]
	return &latest, nil
}

// Open returns a read-only handle for a stored letter.
func (s *LetterStore) Open(relPath string) (*os.File, error) {
	file, err := os.Open(filepath.Join(s.baseDir, relPath))
	if err != nil {
		return nil, fmt.Errorf("open letter file: %w", err)
	}
	return file, nil
}

// Path exposes the underlying absolute path (useful for debugging).
func (s *LetterStore) Path(relPath string) string {
	return filepath.Join(s.baseDir, relPath)
}
