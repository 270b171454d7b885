package scenario

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a named scenario does not exist in the store.
var ErrNotFound = errors.New("scenario not found")

const defaultScenarioName = "scenario"

var unsafeNameChars = regexp.MustCompile(`[^\p{L}\p{N}_\- ]`)

// SafeName maps a scenario name onto a string usable as a file name.
func SafeName(name string) string {
	safe := strings.TrimSpace(unsafeNameChars.ReplaceAllString(name, "_"))
	if safe == "" {
		return defaultScenarioName
	}
	return safe
}

// Store keeps scenario documents as JSON files in a directory.
type Store struct {
	dir    string
	logger *zap.Logger
	mu     sync.RWMutex
}

// NewStore creates the directory if needed and returns a store backed by it.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		return nil, fmt.Errorf("scenario store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scenario directory %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, SafeName(name)+constants.ScenarioFileExtension)
}

// Save writes the document under the given name, replacing any previous one.
// It returns the stored name.
func (s *Store) Save(name string, doc Document) (string, error) {
	data, err := Encode(doc, EncodingJSON)
	if err != nil {
		return "", fmt.Errorf("failed to encode scenario %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write scenario %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to write scenario %s: %w", name, err)
	}

	s.logger.Debug("saved scenario",
		zap.String("op", "scenario.Save"),
		zap.String("name", name),
		zap.String("path", path),
	)
	return SafeName(name), nil
}

// Load reads the named document.
func (s *Store) Load(name string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to read scenario %s: %w", name, err)
	}
	return Decode(data, EncodingJSON)
}

// Delete removes the named document.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("failed to delete scenario %s: %w", name, err)
	}

	s.logger.Debug("deleted scenario",
		zap.String("op", "scenario.Delete"),
		zap.String("name", name),
	)
	return nil
}

// List returns the names of the stored scenarios in lexical order.
func (s *Store) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != constants.ScenarioFileExtension {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), constants.ScenarioFileExtension))
	}
	sort.Strings(names)
	return names, nil
}

// LoadFile reads a scenario document from an arbitrary path, choosing the
// encoding from its extension.
func LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}
	doc, err := Decode(data, EncodingFromPath(path))
	if err != nil {
		return Document{}, fmt.Errorf("scenario file %s: %w", path, err)
	}
	return doc, nil
}

// WriteFile writes a scenario document to a path, choosing the encoding from
// its extension.
func WriteFile(path string, doc Document) error {
	data, err := Encode(doc, EncodingFromPath(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write scenario file %s: %w", path, err)
	}
	return nil
}
