package database

import (
	"database/sql"
	"embed"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/alimgiray/prslo/pkg/logger"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open opens (creating if needed) the SQLite archive at dbPath and applies
// the embedded migrations. Use ":memory:" for a throwaway database.
func Open(dbPath string) (*sql.DB, error) {
	// Open SQLite database (creates if doesn't exist)
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, err
	}

	// An in-memory database lives and dies with its connection
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
	}
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	// Test the connection
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}

	if err = optimizeDatabase(db, dbPath); err != nil {
		db.Close()
		return nil, err
	}

	if err = RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	logger.WithField("path", dbPath).Debug("Database connected")
	return db, nil
}

// optimizeDatabase configures SQLite for a single writer CLI
func optimizeDatabase(db *sql.DB, dbPath string) error {
	pragmas := []string{
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	if dbPath != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	return nil
}

// RunMigrations executes the embedded SQL scripts in file name order
func RunMigrations(db *sql.DB) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if path.Ext(entry.Name()) == ".sql" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := migrations.ReadFile(path.Join("migrations", name))
		if err != nil {
			return err
		}

		// Execute the SQL script
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", name, err)
		}

		logger.Debugf("Executed SQL script: %s", name)
	}
	return nil
}
