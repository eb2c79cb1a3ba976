// Package state persists the player session (playlist, position, volume)
// between runs.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"

	dbutil "github.com/llehouerou/waved/internal/db"
)

const (
	appName      = "waved"
	dbFileName   = "waved.db"
	saveDebounce = 500 * time.Millisecond
)

// Manager reads and writes the saved session.
type Manager struct {
	db    *sql.DB
	log   zerolog.Logger
	write func(context.Context, Session) error

	writeMu   sync.Mutex // serializes writes; taken before saveMu
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *Session
}

// DefaultPath returns the session database under the XDG data directory.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

// Open opens (or creates) the session database at path.
func Open(path string, log zerolog.Logger) (*Manager, error) {
	sqlDB, err := dbutil.Open(path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	m := &Manager{
		db:  sqlDB,
		log: log.With().Str("component", "state").Logger(),
	}
	m.write = func(ctx context.Context, s Session) error {
		return saveSession(ctx, m.db, s)
	}
	return m, nil
}

// takePending cancels the scheduled save and returns its session.
func (m *Manager) takePending() *Session {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	return pending
}

// Close flushes a pending debounced save and closes the database.
func (m *Manager) Close() error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if pending := m.takePending(); pending != nil {
		if err := m.write(context.Background(), *pending); err != nil {
			m.log.Warn().Err(err).Msg("flush session")
		}
	}
	return m.db.Close()
}

// Load returns the saved session, or nil when none was saved.
func (m *Manager) Load(ctx context.Context) (*Session, error) {
	return loadSession(ctx, m.db)
}

// Save writes s now, replacing any pending debounced save.
func (m *Manager) Save(ctx context.Context, s Session) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	m.takePending()
	return m.write(ctx, s)
}

// SaveDebounced schedules s to be written once no newer session arrived for
// a short while.
func (m *Manager) SaveDebounced(s Session) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &s

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.writeMu.Lock()
		defer m.writeMu.Unlock()

		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()
		if pending == nil {
			return
		}
		if err := m.write(context.Background(), *pending); err != nil {
			m.log.Warn().Err(err).Msg("save session")
		}
	})
}
