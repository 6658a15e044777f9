// Package state persists reading positions in SQLite, keyed by the
// content hash of the book.
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get when no position is stored for a hash.
var ErrNotFound = errors.New("no saved position")

// Position is a place in a book: the chapter and the display width of
// all lines above the top line, plus one.
type Position struct {
	ChapterID string
	Offset    int
}

// Record is one stored reading position.
type Record struct {
	Hash     string
	Filename string
	Position Position
	LastRead time.Time
}

// schemaVersion is recorded as the database user_version.
const schemaVersion = 2

const schema = `
CREATE TABLE IF NOT EXISTS states (
    hash      TEXT NOT NULL PRIMARY KEY,
    filename  TEXT,
    chapter   TEXT,
    position  INTEGER,
    last_read REAL
);
`

// Store is the SQLite state database.
type Store struct {
	db *sql.DB
}

// DefaultPath returns $XDG_DATA_HOME/bookterm/bookterm.sqlite.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "bookterm", "bookterm.sqlite"), nil
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set schema version: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the position saved for hash.
func (s *Store) Get(hash string) (Position, error) {
	rec, err := s.Record(hash)
	return rec.Position, err
}

// Record returns the full record saved for hash.
func (s *Store) Record(hash string) (Record, error) {
	var (
		filename, chapter sql.NullString
		position          sql.NullInt64
		lastRead          sql.NullFloat64
	)
	err := s.db.QueryRow(
		`SELECT filename, chapter, position, last_read FROM states WHERE hash = ?`, hash,
	).Scan(&filename, &chapter, &position, &lastRead)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("reading state: %w", err)
	}
	if !chapter.Valid || !position.Valid {
		return Record{}, fmt.Errorf("reading state: incomplete record for %s", hash)
	}

	sec := lastRead.Float64
	return Record{
		Hash:     hash,
		Filename: filename.String,
		Position: Position{ChapterID: chapter.String, Offset: int(position.Int64)},
		LastRead: time.Unix(0, int64(sec*float64(time.Second))),
	}, nil
}

// Put stores pos for hash, replacing any earlier record.
func (s *Store) Put(hash, filename string, pos Position, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO states (hash, filename, chapter, position, last_read) VALUES (?, ?, ?, ?, ?)`,
		hash, filename, pos.ChapterID, pos.Offset, float64(at.UnixNano())/float64(time.Second),
	)
	if err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}
