package dbmigrate

import (
	"fmt"

	"github.com/fdg312/health-navigator/internal/config"
)

const DefaultMigrationsDir = "migrations"

// Target — выбранное подключение для миграций: URL, имя переменной
// окружения, из которой он взят, и необязательное предупреждение.
type Target struct {
	URL     string
	Source  string
	Warning string
}

// SelectTarget выбирает URL базы для DDL.
// Приоритет: DATABASE_URL_DIRECT > DATABASE_URL > DATABASE_URL_POOLED.
// Pooled-подключение (PgBouncer) для DDL допускается только с предупреждением.
// При requireDirect принимается только DATABASE_URL_DIRECT.
func SelectTarget(cfg *config.Config, requireDirect bool) (Target, error) {
	if requireDirect {
		if cfg.DatabaseURLDirect == "" {
			return Target{}, fmt.Errorf("DATABASE_URL_DIRECT is required for DDL/migrations")
		}
		return Target{URL: cfg.DatabaseURLDirect, Source: "DATABASE_URL_DIRECT"}, nil
	}

	switch {
	case cfg.DatabaseURLDirect != "":
		return Target{URL: cfg.DatabaseURLDirect, Source: "DATABASE_URL_DIRECT"}, nil
	case cfg.DatabaseURLRaw != "":
		return Target{URL: cfg.DatabaseURLRaw, Source: "DATABASE_URL"}, nil
	case cfg.DatabaseURLPooled != "":
		return Target{
			URL:     cfg.DatabaseURLPooled,
			Source:  "DATABASE_URL_POOLED",
			Warning: "using pooled connection for DDL is not recommended; set DATABASE_URL_DIRECT",
		}, nil
	}
	return Target{}, fmt.Errorf("no database URL configured (set DATABASE_URL_DIRECT or DATABASE_URL)")
}
