// Package report writes the findings of a run: the JSON document and the
// human-readable ranked summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/naka-gawa/github-code-survey/internal/domain"
)

// DefaultOutputPath is where findings are written when no path is given.
const DefaultOutputPath = "output.json"

// Encode writes findings as pretty-printed JSON.
func Encode(w io.Writer, findings *domain.Findings) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(findings); err != nil {
		return fmt.Errorf("failed to marshal findings to JSON: %w", err)
	}
	return nil
}

// FileWriter persists findings to a JSON file.
type FileWriter struct {
	path   string
	logger *log.Logger
}

// NewFileWriter creates a FileWriter for path, defaulting to DefaultOutputPath.
func NewFileWriter(path string, logger *log.Logger) *FileWriter {
	if path == "" {
		path = DefaultOutputPath
	}
	return &FileWriter{path: path, logger: logger}
}

// Path returns the file the findings are written to.
func (w *FileWriter) Path() string {
	return w.path
}

// Persist writes findings to the file, replacing any previous run.
func (w *FileWriter) Persist(findings *domain.Findings) error {
	dir := filepath.Dir(w.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	err = Encode(f, findings)
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("failed to close output file: %w", closeErr)
	}
	if err != nil {
		return err
	}
	w.logger.Printf("Wrote findings for %d terms and %d repositories to %s", len(findings.Terms), len(findings.Repos), w.path)
	return nil
}
