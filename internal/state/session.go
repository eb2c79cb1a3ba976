package state

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/llehouerou/waved/internal/db"
	"github.com/llehouerou/waved/internal/playlist"
)

// Session is everything restored at startup.
type Session struct {
	Entries      []playlist.Entry
	CurrentIndex int // -1 if nothing was current
	PlayMode     string
	ElapsedMS    int64
	Volume       int
	SavedAt      time.Time
}

func loadSession(ctx context.Context, db *sql.DB) (*Session, error) {
	var (
		s       Session
		savedAt int64
	)
	row := db.QueryRowContext(ctx, `
		SELECT current_index, play_mode, elapsed_ms, volume, saved_at
		FROM session WHERE id = 1
	`)
	err := row.Scan(&s.CurrentIndex, &s.PlayMode, &s.ElapsedMS, &s.Volume, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.SavedAt = time.Unix(savedAt, 0)

	rows, err := db.QueryContext(ctx, `
		SELECT path, title, artist, album, duration_ms
		FROM session_entries
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e                    playlist.Entry
			title, artist, album sql.NullString
			durationMS           sql.NullInt64
		)
		if err := rows.Scan(&e.Path, &title, &artist, &album, &durationMS); err != nil {
			return nil, err
		}
		e.Title = dbutil.NullStringValue(title)
		e.Artist = dbutil.NullStringValue(artist)
		e.Album = dbutil.NullStringValue(album)
		e.Duration = time.Duration(dbutil.NullInt64Value(durationMS)) * time.Millisecond
		s.Entries = append(s.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if s.CurrentIndex >= len(s.Entries) {
		s.CurrentIndex = -1
	}
	return &s, nil
}

func saveSession(ctx context.Context, sqlDB *sql.DB, s Session) error {
	savedAt := s.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	return dbutil.WithTx(ctx, sqlDB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM session_entries`); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO session (id, current_index, play_mode, elapsed_ms, volume, saved_at)
			VALUES (1, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				current_index = excluded.current_index,
				play_mode = excluded.play_mode,
				elapsed_ms = excluded.elapsed_ms,
				volume = excluded.volume,
				saved_at = excluded.saved_at
		`, s.CurrentIndex, s.PlayMode, s.ElapsedMS, s.Volume, savedAt.Unix())
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO session_entries (position, path, title, artist, album, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, e := range s.Entries {
			_, err = stmt.ExecContext(ctx, i, e.Path, nullString(e.Title), nullString(e.Artist),
				nullString(e.Album), e.Duration.Milliseconds())
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
