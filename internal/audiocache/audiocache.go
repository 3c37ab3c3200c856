// Package audiocache stores rendered speech clips and hands out the
// URLs the tutor client fetches them from.
package audiocache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nvoisard/bilingo/internal/client"
)

// Store saves a rendered clip under a name and returns the URL the
// client should fetch it from. Disk-backed stores return a path the
// gateway itself serves; remote stores return an absolute URL.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// DiskStore keeps clips in a local cache directory served at /audio.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the cache directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio cache dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write clip: %w", err)
	}
	return "/audio/" + name, nil
}

// Path returns the on-disk location for a clip name. Names that could
// escape the cache directory are rejected.
func (s *DiskStore) Path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid clip name: %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

// R2Store publishes clips to Cloudflare R2 under an audio/ prefix.
type R2Store struct {
	client *client.R2Client
}

// NewR2Store wraps an R2 client as a clip store.
func NewR2Store(c *client.R2Client) *R2Store {
	return &R2Store{client: c}
}

func (s *R2Store) Save(ctx context.Context, name string, data []byte) (string, error) {
	return s.client.Upload(ctx, "audio/"+name, data, "audio/mpeg")
}
