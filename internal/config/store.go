// Package config holds the process-wide key/value configuration store.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/llehouerou/waved/internal/lockorder"
)

// ErrConfigIO wraps failures to read or write the config file.
var ErrConfigIO = errors.New("config i/o")

// Store is a dotted-key configuration table guarded by its own lock.
//
// The store's lock is a leaf: no other lock may be taken while it is held.
// Single-value accessors lock and unlock internally. Multi-step work goes
// through Lock, which hands out a Tx that can only touch the store.
type Store struct {
	mu lockorder.Mutex

	k        *koanf.Koanf
	defaults map[string]any
	seeded   bool
	log      zerolog.Logger
}

// New creates an empty store. defaults are seeded on first access.
func New(log zerolog.Logger, defaults map[string]any) *Store {
	return &Store{
		mu:       lockorder.Mutex{Name: "config", Leaf: true},
		k:        koanf.New("."),
		defaults: defaults,
		log:      log.With().Str("component", "config").Logger(),
	}
}

// Load merges the TOML file at path into the store. A missing or corrupt
// file returns an error wrapping ErrConfigIO and leaves the defaults in
// place.
func (s *Store) Load(path string) error {
	path = ExpandPath(path)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seedLocked()

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigIO, err)
	}

	loaded := koanf.New(".")
	if err := loaded.Load(file.Provider(path), toml.Parser()); err != nil {
		return fmt.Errorf("%w: parse %s: %w", ErrConfigIO, path, err)
	}
	if err := s.k.Merge(loaded); err != nil {
		return fmt.Errorf("%w: merge %s: %w", ErrConfigIO, path, err)
	}
	s.log.Debug().Str("path", path).Int("keys", len(loaded.Keys())).Msg("config loaded")
	return nil
}

// Save writes the whole store to path as TOML.
func (s *Store) Save(path string) error {
	path = ExpandPath(path)

	s.mu.Lock()
	s.seedLocked()
	data, err := s.k.Marshal(toml.Parser())
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrConfigIO, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigIO, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigIO, err)
	}
	return nil
}

// seedLocked copies defaults for absent keys. It runs once.
func (s *Store) seedLocked() {
	if s.seeded {
		return
	}
	s.seeded = true
	for key, val := range s.defaults {
		if s.k.Exists(key) {
			continue
		}
		if err := s.k.Set(key, val); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("seed default")
		}
	}
}

// Lock acquires the store and returns a transaction handle. The caller must
// call Unlock on the handle and must not acquire any other lock before then.
func (s *Store) Lock() *Tx {
	s.mu.Lock()
	s.seedLocked()
	return &Tx{s: s}
}

// Update runs fn with the store locked.
func (s *Store) Update(fn func(tx *Tx) error) error {
	tx := s.Lock()
	defer tx.Unlock()
	return fn(tx)
}

// String returns the string at key.
func (s *Store) String(key string) string {
	tx := s.Lock()
	defer tx.Unlock()
	return tx.String(key)
}

// Int returns the int at key.
func (s *Store) Int(key string) int {
	tx := s.Lock()
	defer tx.Unlock()
	return tx.Int(key)
}

// Bool returns the bool at key.
func (s *Store) Bool(key string) bool {
	tx := s.Lock()
	defer tx.Unlock()
	return tx.Bool(key)
}

// Strings returns the string slice at key.
func (s *Store) Strings(key string) []string {
	tx := s.Lock()
	defer tx.Unlock()
	return tx.Strings(key)
}

// Exists reports whether key has a value.
func (s *Store) Exists(key string) bool {
	tx := s.Lock()
	defer tx.Unlock()
	return tx.Exists(key)
}

// Set stores val at key.
func (s *Store) Set(key string, val any) error {
	tx := s.Lock()
	defer tx.Unlock()
	return tx.Set(key, val)
}

// Tx is a locked view of a Store.
type Tx struct {
	s    *Store
	done bool
}

// Unlock releases the store. Calling it twice is a no-op.
func (tx *Tx) Unlock() {
	if tx.done {
		return
	}
	tx.done = true
	tx.s.mu.Unlock()
}

func (tx *Tx) String(key string) string    { return tx.s.k.String(key) }
func (tx *Tx) Int(key string) int          { return tx.s.k.Int(key) }
func (tx *Tx) Bool(key string) bool        { return tx.s.k.Bool(key) }
func (tx *Tx) Strings(key string) []string { return tx.s.k.Strings(key) }
func (tx *Tx) Exists(key string) bool      { return tx.s.k.Exists(key) }

// Set stores val at key.
func (tx *Tx) Set(key string, val any) error {
	if err := tx.s.k.Set(key, val); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Keys returns all keys currently set.
func (tx *Tx) Keys() []string { return tx.s.k.Keys() }
