package workbook

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage keeps copies of exported workbooks
type Storage interface {
	// Save saves a file and returns its name within the storage
	Save(filename string, data []byte) (string, error)

	// Get retrieves a file by name
	Get(filename string) ([]byte, error)
}

// LocalStorage implements Storage on the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

// Save writes data to the export directory, replacing any file with the same name
func (l *LocalStorage) Save(filename string, data []byte) (string, error) {
	path, err := l.path(filename)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return filename, nil
}

// Get reads a file from the export directory
func (l *LocalStorage) Get(filename string) ([]byte, error) {
	path, err := l.path(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// path rejects names that would leave the export directory
func (l *LocalStorage) path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || filename == "." || filename == ".." {
		return "", fmt.Errorf("invalid file name: %q", filename)
	}
	return filepath.Join(l.basePath, filename), nil
}
