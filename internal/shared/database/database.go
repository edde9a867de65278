package database

import (
	"database/sql"
	_ "embed"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Open creates or opens the SQLite database at path and applies the schema.
// SQLite allows a single writer, so the pool is limited to one connection;
// transactions and pragmas then always run on the same connection.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, oops.In("database").With("path", path).Wrapf(err, "failed to create database directory")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, oops.In("database").With("path", path).Wrapf(err, "failed to open database")
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, oops.In("database").With("path", path).Wrapf(err, "failed to connect to database")
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, oops.In("database").With("pragma", pragma).Wrapf(err, "failed to apply pragma")
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, oops.In("database").With("path", path).Wrapf(err, "failed to initialize schema")
	}

	return db, nil
}
