package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestManagerSave(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "output")

	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	if manager.GetOutputDir() != tempDir {
		t.Errorf("Expected output dir %s, got %s", tempDir, manager.GetOutputDir())
	}

	testData := []byte("user,text\nsomeone,hi\n")
	path, err := manager.Save(bytes.NewReader(testData), "refined_tweets_20240501T120000Z.csv")
	if err != nil {
		t.Fatalf("Failed to save artifact: %v", err)
	}

	expectedPath := filepath.Join(tempDir, "refined_tweets_20240501T120000Z.csv")
	if path != expectedPath {
		t.Errorf("Expected path %s, got %s", expectedPath, path)
	}

	content, err := os.ReadFile(expectedPath)
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if !bytes.Equal(content, testData) {
		t.Error("File content does not match expected data")
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the artifact in the directory, found %d entries", len(entries))
	}
}

func TestManagerSaveRefusesOverwrite(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if _, err := manager.Save(bytes.NewReader([]byte("first")), "a.csv"); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	_, err = manager.Save(bytes.NewReader([]byte("second")), "a.csv")
	if !errors.Is(err, ErrArtifactExists) {
		t.Fatalf("Expected ErrArtifactExists, got %v", err)
	}

	content, _ := os.ReadFile(filepath.Join(manager.GetOutputDir(), "a.csv"))
	if string(content) != "first" {
		t.Errorf("existing artifact was modified: %q", content)
	}
}

type errReader struct{}

func (errReader) Read(p []byte) (int, error) { return 0, errors.New("read failed") }

func TestManagerSaveCleansUpOnError(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if _, err := manager.Save(errReader{}, "broken.csv"); err == nil {
		t.Fatal("Expected error from failing reader")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Expected no files left behind, found %d", len(entries))
	}
}

func TestManagerSaveRejectsPaths(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	for _, name := range []string{"", "../escape.csv", "sub/dir.csv", ".hidden.csv"} {
		if _, err := manager.Save(bytes.NewReader(nil), name); err == nil {
			t.Errorf("Expected error for name %q", name)
		}
	}
}

func TestArtifactName(t *testing.T) {
	ts := time.Date(2024, 5, 1, 14, 3, 9, 0, time.FixedZone("CEST", 2*3600))

	if got := RunTimestamp(ts); got != "20240501T120309Z" {
		t.Errorf("RunTimestamp = %s", got)
	}
	if got := ArtifactName("refined_tweets_", ts); got != "refined_tweets_20240501T120309Z.csv" {
		t.Errorf("ArtifactName = %s", got)
	}
}
