package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// FileSystemSDLStore implements SDLStore over the local filesystem, keyed by
// the SHA-256 hash of the SDL content so identical schemas are stored once.
// It exists as the local-dev alternative to an S3-backed SDLStore; it does
// not implement the full Storage interface, since versions/checks/contracts
// need the relational queries only pkg/storage/postgres provides.
type FileSystemSDLStore struct {
	rootDir string
}

// NewFileSystemSDLStore creates the store, making rootDir if it doesn't exist.
func NewFileSystemSDLStore(rootDir string) (*FileSystemSDLStore, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}
	return &FileSystemSDLStore{rootDir: rootDir}, nil
}

func (s *FileSystemSDLStore) path(hash string) string {
	return filepath.Join(s.rootDir, hash[:2], hash+".graphql")
}

// PutSDL writes sdl under its content hash, returning the hash. Writing the
// same content twice is a no-op past the first call.
func (s *FileSystemSDLStore) PutSDL(ctx context.Context, sdl string) (string, error) {
	sum := sha256.Sum256([]byte(sdl))
	hash := hex.EncodeToString(sum[:])

	p := s.path(hash)
	if _, err := os.Stat(p); err == nil {
		return hash, nil
	}

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", fmt.Errorf("failed to create shard directory: %w", err)
	}
	if err := os.WriteFile(p, []byte(sdl), 0644); err != nil {
		return "", fmt.Errorf("failed to write sdl blob: %w", err)
	}
	return hash, nil
}

// GetSDL reads back the SDL text previously stored under hash.
func (s *FileSystemSDLStore) GetSDL(ctx context.Context, hash string) (string, error) {
	data, err := os.ReadFile(s.path(hash))
	if err != nil {
		return "", fmt.Errorf("failed to read sdl blob %s: %w", hash, err)
	}
	return string(data), nil
}

// HealthCheck reports whether the root directory is reachable.
func (s *FileSystemSDLStore) HealthCheck(ctx context.Context) error {
	if _, err := os.Stat(s.rootDir); err != nil {
		return fmt.Errorf("filesystem sdl store health check failed: %w", err)
	}
	return nil
}

var (
	_ SDLStore      = (*FileSystemSDLStore)(nil)
	_ HealthChecker = (*FileSystemSDLStore)(nil)
)
