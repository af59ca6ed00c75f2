package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite track store.
type Store struct {
	db *sql.DB
}

var _ Backend = (*Store)(nil)

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const createSchema = `
CREATE TABLE Track (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  artist TEXT NOT NULL,
  preference INTEGER NOT NULL DEFAULT 0,
  vector BLOB NOT NULL,
  added_at DATETIME NOT NULL
);

CREATE INDEX TrackPreference ON Track (preference);
`

func createTables(db *sql.DB) error {
	exists, err := dbExists(db)
	if err != nil {
		return err
	}

	if !exists {
		if _, err := db.Exec(createSchema); err != nil {
			return fmt.Errorf("executing schema: %w", err)
		}
	}

	return createRunTable(db)
}

func dbExists(db *sql.DB) (bool, error) {
	// 'Track' stands in for the whole schema
	row := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'Track'")
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking db existence: %w", err)
	}
	return true, nil
}

func createRunTable(db *sql.DB) error {
	query := `
CREATE TABLE IF NOT EXISTS IngestRun (
  id TEXT PRIMARY KEY,
  started DATETIME NOT NULL,
  finished DATETIME NOT NULL,
  requested INTEGER NOT NULL,
  selected INTEGER NOT NULL,
  stored INTEGER NOT NULL,
  skipped INTEGER NOT NULL,
  partial INTEGER NOT NULL DEFAULT 0
);
`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("creating run table: %w", err)
	}
	return nil
}

func ensureSchema(db *sql.DB) error {
	// Track.album
	if err := addColumnIfNotExists(db, "Track", "album", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return err
	}
	// IngestRun.pages
	if err := addColumnIfNotExists(db, "IngestRun", "pages", "INTEGER NOT NULL DEFAULT 0"); err != nil {
		return err
	}
	return nil
}

func addColumnIfNotExists(db *sql.DB, table, column, typeDef string) error {
	exists, err := columnExists(db, table, column)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if !exists {
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, typeDef)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("adding column %s.%s: %w", table, column, err)
		}
	}
	return nil
}

func columnExists(db *sql.DB, tableName string, columnName string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name string
		var ctype string
		var notnull int
		var dfltValue interface{}
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == columnName {
			return true, nil
		}
	}
	return false, rows.Err()
}
