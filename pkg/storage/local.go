package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalDisk stores files under a root directory on the local filesystem.
type LocalDisk struct {
	root    string
	baseURL string
}

// NewLocalDisk creates a local disk rooted at root; URLs are formed by
// joining baseURL with the object path.
func NewLocalDisk(root, baseURL string) (*LocalDisk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root %s: %w", root, err)
	}
	return &LocalDisk{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// fullPath resolves an object path under the root, rejecting traversal.
func (d *LocalDisk) fullPath(path string) (string, error) {
	clean := filepath.Clean("/" + path)
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("storage: invalid path %q", path)
	}
	return filepath.Join(d.root, clean), nil
}

func (d *LocalDisk) Put(ctx context.Context, path string, contents []byte) error {
	full, err := d.fullPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, contents, 0o644)
}

func (d *LocalDisk) PutStream(ctx context.Context, path string, r io.Reader) error {
	full, err := d.fullPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	f, err := os.Create(full)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, r)
	return err
}

func (d *LocalDisk) Get(ctx context.Context, path string) ([]byte, error) {
	full, err := d.fullPath(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

func (d *LocalDisk) GetStream(ctx context.Context, path string) (io.ReadCloser, error) {
	full, err := d.fullPath(path)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

func (d *LocalDisk) Exists(ctx context.Context, path string) (bool, error) {
	full, err := d.fullPath(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (d *LocalDisk) Delete(ctx context.Context, path string) error {
	full, err := d.fullPath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (d *LocalDisk) URL(path string) string {
	return d.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (d *LocalDisk) Size(ctx context.Context, path string) (int64, error) {
	full, err := d.fullPath(path)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Root exposes the disk root for mounting a static file server.
func (d *LocalDisk) Root() string { return d.root }
