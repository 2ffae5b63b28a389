package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Filesystem stores files under a root directory. The version token is the
// SHA-256 of the content; the compare-and-write is serialized within the process only.
type Filesystem struct {
	root string
	mu   sync.Mutex
}

// NewFilesystem returns a store rooted at root, creating it if needed.
func NewFilesystem(root string) (*Filesystem, error) {
	if root == "" {
		root = "./data"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Filesystem{root: root}, nil
}

func (s *Filesystem) Driver() Driver { return DriverFilesystem }

// pathFor forbids keys escaping the root.
func (s *Filesystem) pathFor(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

func contentVersion(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *Filesystem) Get(ctx context.Context, key string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	p, err := s.pathFor(key)
	if err != nil {
		return Object{}, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Object{}, ErrNotFound
		}
		return Object{}, Transient("get", err)
	}
	return Object{Key: key, Data: data, Version: contentVersion(data)}, nil
}

func (s *Filesystem) Put(ctx context.Context, key string, data []byte, opts PutOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := s.pathFor(key)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current := ""
	if b, err := os.ReadFile(p); err == nil {
		current = contentVersion(b)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", Transient("put", err)
	}
	if current != opts.IfMatch {
		return "", &ConflictError{Key: key, Expected: opts.IfMatch, Current: current}
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", Transient("put", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return "", Transient("put", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", Transient("put", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", Transient("put", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return "", Transient("put", err)
	}
	return contentVersion(data), nil
}
