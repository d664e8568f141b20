// Package storage holds local file persistence for user uploads.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskAvatarStore writes avatar images under a base directory and serves
// them from a URL prefix. Filenames are generated by the caller and never
// contain path separators.
type DiskAvatarStore struct {
	baseDir   string
	urlPrefix string
}

func NewDiskAvatarStore(baseDir, urlPrefix string) (*DiskAvatarStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create avatar dir: %w", err)
	}
	return &DiskAvatarStore{
		baseDir:   baseDir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}, nil
}

func (s *DiskAvatarStore) Save(filename string, data []byte) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid avatar filename %q", filename)
	}
	path := filepath.Join(s.baseDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write avatar: %w", err)
	}
	return s.urlPrefix + "/" + filename, nil
}

// Dir is the directory the HTTP layer mounts as a static file root.
func (s *DiskAvatarStore) Dir() string { return s.baseDir }
