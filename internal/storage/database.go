package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS extractions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL,
    category TEXT NOT NULL,
    status TEXT NOT NULL,
    error_message TEXT,
    char_count INTEGER DEFAULT 0,
    token_count INTEGER DEFAULT 0,
    duration_ms INTEGER DEFAULT 0,
    content_hash TEXT,
    mime_type TEXT,
    created_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_extractions_path ON extractions(path);
CREATE INDEX IF NOT EXISTS idx_extractions_status ON extractions(status);
`

// Database provides thread-safe SQLite operations.
type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite pragmas
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %s: %w", pragma, err)
		}
	}
	return &Database{db: db}, nil
}

func (d *Database) Initialize() error {
	_, err := d.db.Exec(schemaDDL)
	return err
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) DB() *sql.DB {
	return d.db
}

// -- Extraction journal --

// RecordExtraction appends e to the journal and returns its row ID.
// CreatedAt is filled in when empty.
func (d *Database) RecordExtraction(e Extraction) (int64, error) {
	if e.CreatedAt == "" {
		e.CreatedAt = nowISO()
	}
	res, err := d.db.Exec(`
		INSERT INTO extractions (path, category, status, error_message, char_count,
			token_count, duration_ms, content_hash, mime_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Path, e.Category, string(e.Status), e.ErrorMessage, e.CharCount,
		e.TokenCount, e.DurationMs, e.ContentHash, e.MimeType, e.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListExtractions returns the most recent entries, newest first.
func (d *Database) ListExtractions(limit int) ([]Extraction, error) {
	rows, err := d.db.Query("SELECT * FROM extractions ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return d.scanExtractions(rows)
}

// ListExtractionsForPath returns the entries recorded for path, newest first.
func (d *Database) ListExtractionsForPath(path string, limit int) ([]Extraction, error) {
	rows, err := d.db.Query(
		"SELECT * FROM extractions WHERE path=? ORDER BY id DESC LIMIT ?", path, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return d.scanExtractions(rows)
}

func (d *Database) scanExtractions(rows *sql.Rows) ([]Extraction, error) {
	var out []Extraction
	for rows.Next() {
		var e Extraction
		var status string
		err := rows.Scan(
			&e.ID, &e.Path, &e.Category, &status, &e.ErrorMessage, &e.CharCount,
			&e.TokenCount, &e.DurationMs, &e.ContentHash, &e.MimeType, &e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		e.Status = ExtractionStatus(status)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (d *Database) CountExtractions() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM extractions").Scan(&n)
	return n, err
}

func (d *Database) CountExtractionsByStatus() (map[string]int, error) {
	rows, err := d.db.Query("SELECT status, COUNT(*) as cnt FROM extractions GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make(map[string]int)
	for rows.Next() {
		var status string
		var cnt int
		if err := rows.Scan(&status, &cnt); err != nil {
			return nil, err
		}
		result[status] = cnt
	}
	return result, rows.Err()
}
