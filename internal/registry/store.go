package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"

	"keylightctl/internal/lights"
)

// Store persists the list of known lights as a JSON array on disk. The file
// is the only state the tool keeps between runs.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a Store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the standard location of the registry file, creating
// parent directories as needed.
func DefaultPath() (string, error) {
	return xdg.ConfigFile("keylightctl/lights.json")
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load reads the registry file. A missing file is returned as an error that
// satisfies os.IsNotExist so callers can treat it as an empty registry.
func (s *Store) Load() ([]lights.Light, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var ll []lights.Light
	if err := json.Unmarshal(data, &ll); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return ll, nil
}

// Save replaces the registry file with ll, writing to a temporary file first
// so a crash cannot leave a half-written registry behind.
func (s *Store) Save(ll []lights.Light) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(ll, "", "\t")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
