package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pixshop/internal/imaging"
)

// FileStore persists generated images onto the local filesystem.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Write persists the provided bytes at the given relative key and returns the
// canonicalized storage key. Keys are cleaned to prevent directory traversal.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return cleanKey, nil
}

// WriteImage stores img under name, replacing any extension with the one its
// mime type implies. It returns the storage key.
func (s *FileStore) WriteImage(ctx context.Context, name string, img imaging.Resource) (string, error) {
	if img.IsZero() {
		return "", errors.New("storage: empty image")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = img.Name()
	}
	if ext := imaging.ExtensionForMIME(img.MIMEType()); ext != "" {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ext
	}
	return s.Write(ctx, name, img.Bytes())
}

// Path resolves a storage key to its location on disk.
func (s *FileStore) Path(key string) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, filepath.FromSlash(cleanKey)), nil
}

// LoadImage reads an image file from disk. The mime type is sniffed from the
// content so misnamed files still load.
func LoadImage(path string) (imaging.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return imaging.Resource{}, fmt.Errorf("storage: read %s: %w", path, err)
	}
	img, err := imaging.New(filepath.Base(path), "", data)
	if err != nil {
		return imaging.Resource{}, fmt.Errorf("storage: %s: %w", path, err)
	}
	return img, nil
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
