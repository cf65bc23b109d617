// Package storage provides the on-disk file store backing uploads. Files are
// addressed by paths relative to the upload root so database rows stay valid
// when the root moves.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage writes uploads beneath a single root directory.
type LocalStorage struct {
	root string
}

// NewLocalStorage prepares the upload root and returns a store rooted there.
func NewLocalStorage(root string) (*LocalStorage, error) {
	if root == "" {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

// Upload writes the reader's content to <root>/<dir>/<name> and returns the
// path relative to the root's parent, e.g. "uploads/avatars/abc.png".
func (s *LocalStorage) Upload(ctx context.Context, dir, name string, reader io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := filepath.Join(s.root, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	full := filepath.Join(target, name)
	out, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("write file: %w", err)
	}

	return filepath.ToSlash(full), nil
}

// Remove deletes a stored file by its relative path. Missing files are not an
// error.
func (s *LocalStorage) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(filepath.FromSlash(path)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
