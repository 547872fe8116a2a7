// Package localstore keeps uploaded images on the local disk when no remote
// storage is configured. Files are served by the HTTP layer under a URL prefix.
package localstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes files below a directory and addresses them with a URL prefix.
type Store struct {
	dir    string
	prefix string
}

// New creates the directory when missing.
func New(dir, urlPrefix string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("upload directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{dir: dir, prefix: "/" + strings.Trim(urlPrefix, "/")}, nil
}

// Dir returns the directory files are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Upload stores the payload under a random name keeping the extension.
func (s *Store) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fileName := uuid.NewString() + strings.ToLower(filepath.Ext(name))
	file, err := os.Create(filepath.Join(s.dir, fileName))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return path.Join(s.prefix, fileName), nil
}

// Delete removes a file previously returned by Upload. Other URLs are ignored.
func (s *Store) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !strings.HasPrefix(url, s.prefix+"/") {
		return nil
	}

	name := filepath.Base(strings.TrimPrefix(url, s.prefix+"/"))
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}
