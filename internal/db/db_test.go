package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := Open(Memory)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	_, err = sqlDB.Exec(`CREATE TABLE test_table (id INTEGER PRIMARY KEY, value TEXT)`)
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	return sqlDB
}

func count(t *testing.T, sqlDB *sql.DB) int {
	t.Helper()
	var n int
	if err := sqlDB.QueryRow(`SELECT COUNT(*) FROM test_table`).Scan(&n); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	return n
}

func TestWithTx_Success(t *testing.T) {
	sqlDB := setupTestDB(t)

	err := WithTx(context.Background(), sqlDB, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO test_table (value) VALUES (?)`, "test")
		return err
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
	if n := count(t, sqlDB); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestWithTx_Rollback(t *testing.T) {
	sqlDB := setupTestDB(t)
	testErr := errors.New("test error")

	err := WithTx(context.Background(), sqlDB, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO test_table (value) VALUES (?)`, "test"); err != nil {
			return err
		}
		return testErr
	})

	if !errors.Is(err, testErr) {
		t.Fatalf("WithTx should return the error: got %v, want %v", err, testErr)
	}
	if n := count(t, sqlDB); n != 0 {
		t.Errorf("count = %d, want 0 (rolled back)", n)
	}
}

func TestWithTx_CanceledContext(t *testing.T) {
	sqlDB := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithTx(ctx, sqlDB, func(*sql.Tx) error { return nil })
	if err == nil {
		t.Fatal("WithTx with a canceled context should fail")
	}
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.db")
	sqlDB, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer sqlDB.Close()
	if err := sqlDB.Ping(); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestNullHelpers(t *testing.T) {
	if got := NullInt64Value(sql.NullInt64{Int64: 4, Valid: true}); got != 4 {
		t.Errorf("NullInt64Value = %d, want 4", got)
	}
	if got := NullInt64Value(sql.NullInt64{Int64: 4}); got != 0 {
		t.Errorf("NullInt64Value(invalid) = %d, want 0", got)
	}
	if got := NullStringValue(sql.NullString{String: "x", Valid: true}); got != "x" {
		t.Errorf("NullStringValue = %q, want x", got)
	}
	if got := NullStringValue(sql.NullString{String: "x"}); got != "" {
		t.Errorf("NullStringValue(invalid) = %q, want empty", got)
	}
}
