package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mchmarny/menubuilder/pkg/menu"
)

const schema = `
CREATE TABLE IF NOT EXISTS configurations (
	name       TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// SQLiteRepository stores configurations as JSON documents in a SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (and creates if needed) the database at path.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Load implements Repository.
func (r *SQLiteRepository) Load(name string) ([]menu.Item, error) {
	if err := validateName(name); err != nil {
		return []menu.Item{}, err
	}

	var doc string
	err := r.db.QueryRow(`SELECT document FROM configurations WHERE name = ?`, strings.TrimSpace(name)).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []menu.Item{}, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return []menu.Item{}, fmt.Errorf("failed to query %s: %w", name, err)
	}
	return Decode([]byte(doc))
}

// Save implements Repository.
func (r *SQLiteRepository) Save(name string, items []menu.Item) error {
	if err := validateName(name); err != nil {
		return err
	}
	data, err := Encode(items)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		INSERT INTO configurations (name, document, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		strings.TrimSpace(name), string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	return nil
}

// List implements Repository.
func (r *SQLiteRepository) List() ([]string, error) {
	rows, err := r.db.Query(`SELECT name FROM configurations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list configurations: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan configuration name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Close implements Repository.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
