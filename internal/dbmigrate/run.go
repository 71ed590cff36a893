package dbmigrate

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Run применяет goose-команду (up, down, status) к выбранному Target.
func Run(command string, target Target, migrationsDir string) error {
	if target.URL == "" {
		return fmt.Errorf("database URL is empty (target source: %s)", nonEmptySource(target))
	}
	if migrationsDir == "" {
		migrationsDir = DefaultMigrationsDir
	}

	db, err := openDB(target.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Run(command, db, migrationsDir); err != nil {
		return fmt.Errorf("goose %s via %s failed: %w", command, nonEmptySource(target), err)
	}
	return nil
}

func openDB(dbURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func nonEmptySource(target Target) string {
	if target.Source == "" {
		return "unknown"
	}
	return target.Source
}
