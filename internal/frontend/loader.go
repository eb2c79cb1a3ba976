package frontend

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Loader turns a path or identifier into a Frontend. The returned release
// function frees whatever the loader acquired; it may be nil.
type Loader interface {
	Open(path string) (fe Frontend, release func() error, err error)
}

// StaticLoader resolves identifiers against frontends compiled into the
// binary.
type StaticLoader struct {
	mu        sync.RWMutex
	order     []string
	factories map[string]Factory
}

// NewStaticLoader creates an empty static registry.
func NewStaticLoader() *StaticLoader {
	return &StaticLoader{factories: make(map[string]Factory)}
}

// Register adds a factory under id. Registering an id twice replaces the
// factory but keeps the original position.
func (s *StaticLoader) Register(id string, f Factory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.factories[id]; !ok {
		s.order = append(s.order, id)
	}
	s.factories[id] = f
}

// IDs returns the registered identifiers in registration order.
func (s *StaticLoader) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// Has reports whether id is registered.
func (s *StaticLoader) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.factories[id]
	return ok
}

func (s *StaticLoader) Open(id string) (Frontend, func() error, error) {
	s.mu.RLock()
	f, ok := s.factories[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, &LoadError{Path: id, Kind: LoadFailed, Err: fmt.Errorf("no built-in frontend %q", id)}
	}
	fe := f()
	if fe == nil {
		return nil, nil, &LoadError{Path: id, Kind: SymbolMissing, Err: fmt.Errorf("factory for %q returned nil", id)}
	}
	return fe, nil, nil
}

// PluginExt is the file extension of dynamically loaded frontends.
const PluginExt = ".so"

// Discover lists the frontend bundles in dir, sorted by name. A missing
// directory yields no bundles.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan frontends: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), PluginExt) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// BundleID returns the identifier implied by a bundle path: its base name
// without extension.
func BundleID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
