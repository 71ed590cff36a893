package postgres

import (
	"context"

	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound совпадает с storage.ErrNotFound для единообразия
// с memory-бэкендом.
var ErrNotFound = storage.ErrNotFound

// PostgresStorage — Postgres реализация всех хранилищ
type PostgresStorage struct {
	pool          *pgxpool.Pool
	medications   *PostgresMedicationsStorage
	chat          *PostgresChatStorage
	waterIntakes  *PostgresWaterIntakesStorage
	notifications *PostgresNotificationsStorage
	settings      *PostgresSettingsStorage
	reports       *PostgresReportsStorage
}

// New создаёт пул соединений и проверяет его пингом
func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStorage{
		pool:          pool,
		medications:   NewPostgresMedicationsStorage(pool),
		chat:          NewPostgresChatStorage(pool),
		waterIntakes:  NewPostgresWaterIntakesStorage(pool),
		notifications: NewPostgresNotificationsStorage(pool),
		settings:      NewPostgresSettingsStorage(pool),
		reports:       NewPostgresReportsStorage(pool),
	}, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

func (p *PostgresStorage) GetMedicationsStorage() *PostgresMedicationsStorage {
	return p.medications
}

func (p *PostgresStorage) GetChatStorage() *PostgresChatStorage {
	return p.chat
}

func (p *PostgresStorage) GetWaterIntakesStorage() *PostgresWaterIntakesStorage {
	return p.waterIntakes
}

func (p *PostgresStorage) GetNotificationsStorage() *PostgresNotificationsStorage {
	return p.notifications
}

func (p *PostgresStorage) GetSettingsStorage() *PostgresSettingsStorage {
	return p.settings
}

func (p *PostgresStorage) GetReportsStorage() *PostgresReportsStorage {
	return p.reports
}
