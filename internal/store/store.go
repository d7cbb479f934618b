package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a SQLite snapshot of a loaded panel.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

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

const createQuery = `
CREATE TABLE IF NOT EXISTS PanelRow (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  city TEXT NOT NULL,
  song TEXT NOT NULL,
  song_id TEXT NOT NULL,
  level TEXT NOT NULL,
  measure TEXT NOT NULL,
  period_type TEXT NOT NULL,
  week TEXT NOT NULL,
  previous_period INTEGER NOT NULL,
  current_period INTEGER NOT NULL,
  pct_change TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS PanelRowSongWeek ON PanelRow (song_id, week);

CREATE TABLE IF NOT EXISTS LoadRun (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  loaded_at DATETIME NOT NULL,
  source TEXT NOT NULL,
  rows INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS SkippedFragment (
  path TEXT PRIMARY KEY,
  song_id TEXT NOT NULL,
  week TEXT NOT NULL,
  reason TEXT NOT NULL
);
`

func createTables(db *sql.DB) error {
	if _, err := db.Exec(createQuery); err != nil {
		return fmt.Errorf("executing create: %w", err)
	}
	return nil
}

// ensureSchema upgrades snapshots written before a column existed.
func ensureSchema(db *sql.DB) error {
	if err := addColumnIfNotExists(db, "PanelRow", "grouping", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return err
	}
	if err := addColumnIfNotExists(db, "LoadRun", "skipped", "INTEGER NOT NULL DEFAULT 0"); err != nil {
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
