package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"igcaption/pkg/models"
)

// Manager writes scrape results under an output directory
type Manager struct {
	outputDir string
	mu        sync.Mutex
}

// NewManager creates a new storage manager
func NewManager(outputDir string) (*Manager, error) {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Manager{outputDir: outputDir}, nil
}

// Path resolves filename against the output directory. Absolute paths are
// returned unchanged.
func (m *Manager) Path(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(m.outputDir, filename)
}

// SaveResults writes batch as an indented JSON array, replacing any existing
// file. The same batch always produces the same bytes.
func (m *Manager) SaveResults(filename string, batch models.ScrapeBatch) (string, error) {
	data, err := EncodeResults(batch)
	if err != nil {
		return "", err
	}

	path := m.Path(filename)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := writeAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// LoadResults reads a file written by SaveResults
func (m *Manager) LoadResults(filename string) (models.ScrapeBatch, error) {
	data, err := os.ReadFile(m.Path(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}

	var batch models.ScrapeBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}
	return batch, nil
}

// EncodeResults renders batch the way SaveResults stores it: UTF-8, four
// space indentation, no HTML escaping
func EncodeResults(batch models.ScrapeBatch) ([]byte, error) {
	if batch == nil {
		batch = models.ScrapeBatch{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(batch); err != nil {
		return nil, fmt.Errorf("failed to encode results: %w", err)
	}
	return buf.Bytes(), nil
}

// writeAtomic writes to a temporary file next to path and renames it into place
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}
