package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrArtifactExists is returned when Save would replace an existing file
var ErrArtifactExists = errors.New("artifact already exists")

// Manager writes run artifacts into the output directory
type Manager struct {
	outputDir string
}

// NewManager creates a new storage manager
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Manager{outputDir: outputDir}, nil
}

// Save copies r into name inside the output directory and returns the full
// path. Data is written to a temporary file first and renamed into place, so
// a reader never observes a partial artifact.
func (m *Manager) Save(r io.Reader, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}

	path := filepath.Join(m.outputDir, name)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: %s", ErrArtifactExists, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	out, err := os.CreateTemp(m.outputDir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := out.Name()

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to write artifact data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return path, nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}
