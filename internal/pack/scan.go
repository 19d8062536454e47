package pack

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Scanner enumerates candidate scripts in a single directory
// (non-recursive) and turns each into a Record.
type Scanner struct {
	dir     string
	ext     string
	exclude map[string]bool
	logger  *zap.Logger
}

// NewScanner creates a Scanner for dir. ext is the extension filter
// (e.g. ".py"); exclude lists base names that must never be embedded,
// such as a copy of the legacy embedder script sitting next to the
// scripts it used to package.
func NewScanner(dir, ext string, exclude []string, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	ex := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		ex[name] = true
	}
	return &Scanner{dir: dir, ext: ext, exclude: ex, logger: logger}
}

// Scan reads every matching script in the directory and returns one
// Record per readable file, in directory enumeration order. Files that
// cannot be read are logged and skipped; a missing or unreadable
// directory fails the whole scan.
func (s *Scanner) Scan() ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scripts directory %s: %w", s.dir, err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), s.ext) {
			continue
		}
		if s.exclude[name] {
			s.logger.Debug("skipping excluded script", zap.String("name", name))
			continue
		}

		raw, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			s.logger.Warn("skipping unreadable script", zap.String("name", name), zap.Error(err))
			fmt.Printf("Error reading %s: %v\n", name, err)
			continue
		}

		required, derived := ParseMarkers(string(raw))
		records = append(records, Record{
			Name:           name,
			ContentEncoded: EncodeContent(raw),
			RequiredInputs: required,
			DerivedInputs:  derived,
		})
		s.logger.Debug("collected script",
			zap.String("name", name),
			zap.Strings("required_inputs", required),
			zap.Strings("derived_inputs", derived))
	}
	return records, nil
}
