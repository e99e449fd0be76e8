package kv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// OpenDiskv creates a Store keeping one file per key under basePath.
func OpenDiskv(basePath string) (Store, error) {
	if basePath == "" {
		return nil, errors.New("kv: base path required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("kv: ensure base path: %w", err)
	}
	return &diskStore{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	}), basePath: basePath}, nil
}

type diskStore struct {
	d        *diskv.Diskv
	basePath string
}

// Read always goes to disk. Another process may have rewritten the file
// since the cache was filled.
func (s *diskStore) Read(key string) ([]byte, error) {
	rc, err := s.d.ReadStream(key, true)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *diskStore) Write(key string, val []byte) error {
	return s.d.Write(key, val)
}

func (s *diskStore) Erase(key string) error {
	if err := s.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *diskStore) Keys(ctx context.Context) []string {
	var keys []string
	for key := range s.d.Keys(ctx.Done()) {
		keys = append(keys, key)
	}
	return keys
}

func (s *diskStore) Close() error {
	return nil
}

// Keys are grouped on disk by their first dash separated segment, so
// "research-protocols" lands in research/protocols.
func keyToPathTransform(s string) *diskv.PathKey {
	prefix, rest, found := strings.Cut(s, "-")
	if !found {
		return &diskv.PathKey{Path: []string{}, FileName: s}
	}
	return &diskv.PathKey{
		Path:     []string{prefix},
		FileName: rest,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}
