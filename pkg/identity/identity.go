// Package identity provides the opaque per-installation owner identifier
// sent as X-User-ID. The server never issues or verifies it.
package identity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const fileName = "user-id"

var ErrEmptyID = errors.New("identity: owner id is empty")

type Provider interface {
	OwnerID() (string, error)
}

// FileStore generates a random id on first use and persists it at path.
type FileStore struct {
	path string

	mu     sync.Mutex
	cached string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath is the id file under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("identity: resolve config dir: %w", err)
	}
	return filepath.Join(dir, "jsonshare", fileName), nil
}

func (s *FileStore) OwnerID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != "" {
		return s.cached, nil
	}

	b, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		if id := strings.TrimSpace(string(b)); id != "" {
			s.cached = id
			return id, nil
		}
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("identity: read %s: %w", s.path, err)
	}

	id := uuid.NewString()
	if err = os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return "", fmt.Errorf("identity: create dir: %w", err)
	}
	if err = os.WriteFile(s.path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("identity: write %s: %w", s.path, err)
	}

	s.cached = id
	return id, nil
}

// Static is a fixed owner id, e.g. from a flag or environment variable.
type Static string

func (s Static) OwnerID() (string, error) {
	id := strings.TrimSpace(string(s))
	if id == "" {
		return "", ErrEmptyID
	}
	return id, nil
}
