package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDB wraps the database connection pool
type SQLiteDB struct {
	db   *sql.DB
	path string
}

// NewSQLiteDB opens a SQLite database from a connection string.
// Plain paths, file: URIs and the "Data Source=<path>" form are accepted.
func NewSQLiteDB(connectionString string) (*SQLiteDB, error) {
	path := ParseConnectionString(connectionString)
	if path == "" {
		return nil, fmt.Errorf("empty database connection string")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// SQLite benefits from limited connections due to write locking
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &SQLiteDB{db: db, path: path}, nil
}

// ParseConnectionString extracts the SQLite data source from a connection string.
func ParseConnectionString(connectionString string) string {
	s := strings.TrimSpace(connectionString)
	for _, part := range strings.Split(s, ";") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "data source", "datasource", "filename":
			return strings.TrimSpace(value)
		}
	}
	return s
}

// Path returns the data source the database was opened with
func (s *SQLiteDB) Path() string {
	return s.path
}

// Conn acquires a single connection from the pool. Callers must Close it.
func (s *SQLiteDB) Conn(ctx context.Context) (*sql.Conn, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	return conn, nil
}

// Ping verifies the database is reachable
func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// InitSchema creates the TvShows table if it does not exist yet
func (s *SQLiteDB) InitSchema(ctx context.Context) error {
	conn, err := s.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	schema := `
	CREATE TABLE IF NOT EXISTS TvShows (
		Id INTEGER PRIMARY KEY,
		Title TEXT NOT NULL,
		ReleaseDate TEXT NOT NULL,
		Genre TEXT,
		Showtype TEXT,
		Actors TEXT,
		Favourite INTEGER
	);
	`

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create TvShows table: %w", err)
	}
	return nil
}
