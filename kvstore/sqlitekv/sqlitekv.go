/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package sqlitekv provides a durable, single-file KVStore implementation
// backed by SQLite.
package sqlitekv

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/suparena/draftstore/kvstore"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists key/value pairs in a SQLite table. All methods satisfy the
// synchronous kvstore.KVStore contract; read failures report absence rather
// than surfacing errors.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (creating if necessary) a SQLite-backed store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(
		`CREATE TABLE IF NOT EXISTS kv_items (key TEXT PRIMARY KEY, value TEXT NOT NULL)`,
	); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// GetItem returns the stored value for key.
func (s *Store) GetItem(key string) (string, bool) {
	var value string
	err := s.sqlDB.QueryRow(`SELECT value FROM kv_items WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

// SetItem stores value under key, overwriting any previous value.
func (s *Store) SetItem(key, value string) error {
	_, err := s.sqlDB.Exec(
		`INSERT INTO kv_items (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return classify(err)
	}
	return nil
}

// RemoveItem deletes key.
func (s *Store) RemoveItem(key string) {
	_, _ = s.sqlDB.Exec(`DELETE FROM kv_items WHERE key = ?`, key)
}

// Keys lists every stored key.
func (s *Store) Keys() []string {
	rows, err := s.sqlDB.Query(`SELECT key FROM kv_items`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return keys
		}
		keys = append(keys, k)
	}
	return keys
}

// classify maps SQLite result codes onto the kvstore error taxonomy so the
// quota manager can tell a full disk from a permission problem.
func classify(err error) error {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_FULL:
			return &kvstore.QuotaError{Name: "SQLITE_FULL"}
		case sqlite3lib.SQLITE_READONLY:
			return &kvstore.AccessError{Name: "SQLITE_READONLY"}
		case sqlite3lib.SQLITE_AUTH:
			return &kvstore.AccessError{Name: "SQLITE_AUTH"}
		case sqlite3lib.SQLITE_PERM:
			return &kvstore.AccessError{Name: "SQLITE_PERM"}
		}
	}
	return fmt.Errorf("sqlite write: %w", err)
}
