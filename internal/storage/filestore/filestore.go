package filestore

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DiskStore keeps attachment blobs as flat files under one directory.
// Handles are the bare file names; they never contain path separators, so a
// handle cannot escape the directory.
type DiskStore struct {
	dir    string
	logger *zap.Logger
}

func NewDiskStore(dir string, logger *zap.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &DiskStore{
		dir:    dir,
		logger: logger.Named("DiskStore"),
	}, nil
}

func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) Store(data []byte, ext string) (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("failed to generate file name: %w", err)
	}

	ext = filepath.Ext(filepath.Base(ext))
	handle := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), hex.EncodeToString(suffix), ext)

	path := filepath.Join(s.dir, handle)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob %s: %w", handle, err)
	}

	s.logger.Debug("Stored blob", zap.String("handle", handle), zap.Int("bytes", len(data)))
	return handle, nil
}

func (s *DiskStore) Delete(handle string) error {
	path, err := s.resolve(handle)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete blob %s: %w", handle, err)
	}
	return nil
}

// ListOlderThan returns handles whose files were modified before the
// cutoff. The sweep worker uses it to leave in-flight uploads alone.
func (s *DiskStore) ListOlderThan(cutoff time.Time) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload directory: %w", err)
	}

	var handles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			handles = append(handles, entry.Name())
		}
	}
	return handles, nil
}

func (s *DiskStore) resolve(handle string) (string, error) {
	if handle == "" || strings.ContainsAny(handle, `/\`) || handle == "." || handle == ".." {
		return "", fmt.Errorf("invalid blob handle %q", handle)
	}
	return filepath.Join(s.dir, handle), nil
}
