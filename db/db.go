package db

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/marcus-crane/mediabridge/migrations"
)

// Initialize opens the history database at path and applies migrations.
func Initialize(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// sqlite only tolerates one writer; the recorder and handlers share this pool
	db.SetMaxOpenConns(1)
	if err := migrations.Apply(db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	slog.Info("Initialised DB connection", slog.String("path", path))
	return db, nil
}
