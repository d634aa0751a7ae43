package progress

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"afdscraper/pkg/logger"
)

// DefaultPath is the progress file used when none is configured
const DefaultPath = "finished.txt"

// Set is the deduplicated collection of exported post identifiers
type Set map[string]struct{}

// Has reports whether id has already been exported
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add records id as exported
func (s Set) Add(id string) {
	s[id] = struct{}{}
}

// Store persists completed post identifiers as a newline-delimited file
type Store struct {
	path   string
	logger logger.Logger
}

// NewStore creates a store backed by the file at path
func NewStore(path string, log logger.Logger) *Store {
	if path == "" {
		path = DefaultPath
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Store{path: path, logger: log}
}

// Path returns the location of the progress file
func (s *Store) Path() string {
	return s.path
}

// Exists checks if the progress file exists
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the completed identifiers. A missing file yields an empty set;
// blank lines and repeated identifiers are ignored.
func (s *Store) Load() (Set, error) {
	set := make(Set)

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.DebugWithFields("No progress file, starting fresh", map[string]interface{}{
				"path": s.path,
			})
			return set, nil
		}
		return nil, fmt.Errorf("failed to open progress file: %w", err)
	}
	defer file.Close()

	lines := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		lines++
		set.Add(id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read progress file: %w", err)
	}

	s.logger.InfoWithFields("Progress loaded", map[string]interface{}{
		"path":       s.path,
		"completed":  len(set),
		"duplicates": lines - len(set),
	})

	return set, nil
}

// AppendCompleted appends ids to the progress file, one per line, creating
// the file if needed. Existing lines are not checked for duplicates.
func (s *Store) AppendCompleted(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open progress file: %w", err)
	}

	w := bufio.NewWriter(file)
	for _, id := range ids {
		if _, err := w.WriteString(id + "\n"); err != nil {
			file.Close()
			return fmt.Errorf("failed to write progress: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to write progress: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("failed to sync progress file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close progress file: %w", err)
	}

	s.logger.DebugWithFields("Progress saved", map[string]interface{}{
		"path":     s.path,
		"appended": len(ids),
	})
	return nil
}

// Backup copies the progress file to Path()+".backup". It does nothing when
// there is no progress file.
func (s *Store) Backup() (string, error) {
	if !s.Exists() {
		return "", nil
	}

	backupPath := s.path + ".backup"

	src, err := os.Open(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to open progress file for backup: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(backupPath)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("failed to copy progress to backup: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to close backup file: %w", err)
	}

	return backupPath, nil
}

// Reset backs up and removes the progress file so the next run exports
// every post again.
func (s *Store) Reset() error {
	backupPath, err := s.Backup()
	if err != nil {
		return err
	}

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete progress file: %w", err)
	}

	s.logger.InfoWithFields("Progress reset", map[string]interface{}{
		"path":   s.path,
		"backup": backupPath,
	})
	return nil
}
