package services

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// IndexedDBStore reads the object_data table of a Firefox IndexedDB sqlite
// file. The database is opened read-only and immutable so a live or locked
// profile can still be scanned.
type IndexedDBStore struct {
	db   *sql.DB
	path string
}

// OpenIndexedDB opens an sqlite file for scanning.
func OpenIndexedDB(path string) (*IndexedDBStore, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&immutable=1", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite file: %w", err)
	}
	return &IndexedDBStore{db: db, path: path}, nil
}

// HasObjectData reports whether the database carries an IndexedDB
// object_data table. Files without one are not IndexedDB stores and are
// skipped.
func (s *IndexedDBStore) HasObjectData() (bool, error) {
	row := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'object_data'`)
	var n int
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("failed to probe sqlite schema: %w", err)
	}
	return n > 0, nil
}

// Payloads streams the raw (still snappy-compressed) object_data values to
// fn in table order.
func (s *IndexedDBStore) Payloads(fn func(value []byte)) error {
	rows, err := s.db.Query(`SELECT data FROM object_data`)
	if err != nil {
		return fmt.Errorf("failed to read object_data: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var value []byte
		if err := rows.Scan(&value); err != nil {
			return fmt.Errorf("failed to scan object_data row: %w", err)
		}
		fn(value)
	}
	return rows.Err()
}

// Close releases the database handle.
func (s *IndexedDBStore) Close() error {
	return s.db.Close()
}
