// Package sqlite implements pomodo's Database and repository interfaces
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/benjamonnguyen/pomodo"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type database struct {
	conn *sql.DB
}

// Open opens the database file at url, creating its directory if needed.
// The pool is capped at one connection so the process has a single writer.
func Open(url string) (pomodo.Database, error) {
	if url == "" {
		return nil, fmt.Errorf("provide database url: %w", pomodo.ErrValidation)
	}
	if url != ":memory:" && !strings.HasPrefix(url, "file:") {
		if err := os.MkdirAll(path.Dir(url), 0o744); err != nil {
			return nil, fmt.Errorf("%w: %w", pomodo.ErrStorage, err)
		}
	}

	conn, err := sql.Open("sqlite", dsn(url))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pomodo.ErrStorage, err)
	}
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %w", pomodo.ErrStorage, err)
	}

	return &database{
		conn: conn,
	}, nil
}

func dsn(url string) string {
	if !strings.HasPrefix(url, "file:") {
		url = "file:" + url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_pragma=foreign_keys(1)"
}

func (db *database) DB() *sql.DB {
	return db.conn
}

// Migrate applies the embedded migrations. An up-to-date schema is not an error.
func (db *database) Migrate() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	d, err := migratesqlite.WithInstance(db.conn, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", d)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: migrate: %w", pomodo.ErrStorage, err)
	}
	return nil
}

func (db *database) Close() error {
	return db.conn.Close()
}
