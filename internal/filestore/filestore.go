// Package filestore provides the flat key/value file that backs the default storage driver.
//
// The file uses the dotenv syntax: one KEY="value" pair per line, keys restricted to
// letters, digits, '.' and '_'. Every update is written to a temporary file in the same
// directory, fsynced and renamed over the original, so a crash leaves either the old or the
// new content. A missing file reads as an empty store.
//
// Lines are parsed one at a time. A line that does not parse is logged and skipped, and it
// is written back verbatim at the end of the file on the next update, so a hand-editing
// mistake never hides the other entries or gets lost.
package filestore

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	apperrors "github.com/allisson/vault/internal/errors"
)

const (
	fileMode = 0o600
	dirMode  = 0o700

	// maxLineSize bounds a single KEY="value" line; ciphertexts are stored base64 on one line.
	maxLineSize = 64 << 20
)

// Store guards a single key/value file. It is safe for concurrent use within one process.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// New returns a Store for the file at path. The file is created on the first update.
// A nil logger uses slog.Default.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

// View calls fn with a snapshot of the file content under a shared lock.
func (s *Store) View(fn func(entries map[string]string) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, _, err := s.read()
	if err != nil {
		return err
	}
	return fn(entries)
}

// Update calls fn with the current content under an exclusive lock. fn mutates entries in
// place and reports whether anything changed; the file is rewritten only when it did.
func (s *Store) Update(fn func(entries map[string]string) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, skipped, err := s.read()
	if err != nil {
		return err
	}

	changed, err := fn(entries)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.write(entries, skipped)
}

// read returns the parsed entries and the raw lines that could not be parsed. Later
// duplicates of a key win.
func (s *Store) read() (map[string]string, []string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil, nil
		}
		return nil, nil, apperrors.Wrap(err, "failed to open store file")
	}
	defer func() {
		_ = f.Close()
	}()

	entries := map[string]string{}
	var skipped []string

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		parsed, err := godotenv.Unmarshal(line)
		if err != nil || len(parsed) != 1 {
			s.logger.Warn("skipping malformed store line",
				slog.String("path", s.path),
				slog.Int("line", lineNo),
				slog.Any("error", err),
			)
			skipped = append(skipped, line)
			continue
		}
		for k, v := range parsed {
			entries[k] = v
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, apperrors.Wrapf(apperrors.ErrInvalidFormat, "failed to read store file %s: %v", s.path, err)
	}
	return entries, skipped, nil
}

// write replaces the file with entries followed by the skipped lines, kept as they were.
func (s *Store) write(entries map[string]string, skipped []string) error {
	content, err := Marshal(entries)
	if err != nil {
		return err
	}
	for _, line := range skipped {
		content = append(content, line...)
		content = append(content, '\n')
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return apperrors.Wrap(err, "failed to create store directory")
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return apperrors.Wrap(err, "failed to create temporary store file")
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return apperrors.Wrap(err, "failed to set store file mode")
	}
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return apperrors.Wrap(err, "failed to write store file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return apperrors.Wrap(err, "failed to sync store file")
	}
	if err := tmp.Close(); err != nil {
		return apperrors.Wrap(err, "failed to close store file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return apperrors.Wrap(err, "failed to replace store file")
	}
	committed = true

	syncDir(dir)
	return nil
}

// syncDir persists the rename. Not every platform supports fsync on directories.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

// Marshal renders entries as sorted KEY="value" lines. Values are always double-quoted so
// numeric-looking strings survive a round trip unchanged.
func Marshal(entries map[string]string) ([]byte, error) {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		if !ValidKey(k) {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid store key %q", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		fmt.Fprintf(&buf, "%s=\"%s\"\n", k, quoteEscaper.Replace(entries[k]))
	}
	return buf.Bytes(), nil
}

var quoteEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`$`, `\$`,
	"\n", `\n`,
	"\r", `\r`,
)

// ValidKey reports whether k can be written and parsed back.
func ValidKey(k string) bool {
	if k == "" || strings.HasPrefix(k, "export") {
		return false
	}
	for _, r := range k {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_':
		default:
			return false
		}
	}
	return true
}
