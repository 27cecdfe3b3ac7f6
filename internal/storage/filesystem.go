package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/veridex/authenticity-analyzer/internal/utils"
	"github.com/veridex/authenticity-analyzer/pkg/fault"
)

// FilesystemStore keeps artifacts under a local directory. Suited to
// single-node deployments and the offline CLI.
type FilesystemStore struct {
	baseDir   string
	publicURL string
}

// NewFilesystemStore creates the base directory if needed. publicURL is
// the prefix minted into returned URLs; when empty, bare keys are
// returned instead.
func NewFilesystemStore(baseDir, publicURL string) (*FilesystemStore, error) {
	if err := utils.EnsureDir(baseDir); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &FilesystemStore{
		baseDir:   baseDir,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// resolve maps a key to a path inside baseDir, rejecting traversal.
func (s *FilesystemStore) resolve(key string) (string, error) {
	path := filepath.Clean(filepath.Join(s.baseDir, filepath.FromSlash(key)))
	base := filepath.Clean(s.baseDir)
	if path != base && !strings.HasPrefix(path, base+string(os.PathSeparator)) {
		return "", fault.New(fault.Persistence, stage, fmt.Errorf("invalid key %q: path traversal", key))
	}
	return path, nil
}

// keyFor strips the public prefix off refs that came back as URLs.
func (s *FilesystemStore) keyFor(ref string) string {
	if s.publicURL != "" {
		if rest, ok := strings.CutPrefix(ref, s.publicURL+"/"); ok {
			return rest
		}
	}
	return ref
}

func (s *FilesystemStore) Get(ctx context.Context, ref string) ([]byte, error) {
	path, err := s.resolve(s.keyFor(ref))
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fault.New(fault.NotFound, stage, fmt.Errorf("artifact %s not found", ref))
	}
	if err != nil {
		return nil, fault.New(fault.Persistence, stage, err)
	}
	return data, nil
}

func (s *FilesystemStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return "", fault.New(fault.Persistence, stage, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fault.New(fault.Persistence, stage, err)
	}
	if s.publicURL == "" {
		return key, nil
	}
	return s.publicURL + "/" + key, nil
}

var _ Store = (*FilesystemStore)(nil)
