// Подключение к PostgreSQL и миграции.
//
// Пакет выполняет:
//   - открытие пула соединений с PostgreSQL (через драйвер pgx);
//   - включение TLS до базы в боевом окружении;
//   - проверку доступности базы (Ping);
//   - запуск миграций (golang-migrate) при старте сервера.
//
// Пул создаётся явно и передаётся в репозитории, глобального состояния нет.
package config

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/stdlib"

	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// connConfig собирает параметры соединения pgx из DSN и окружения.
func (c *Config) connConfig() (*pgx.ConnConfig, error) {
	cc, err := pgx.ParseConfig(c.DB.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	if c.DB.ConnectTimeout > 0 {
		cc.ConnectTimeout = c.DB.ConnectTimeout
	}

	// В проде база доступна только по TLS; сертификат провайдера не проверяем
	// (managed Postgres отдаёт самоподписанный). Локально TLS выключен.
	cc.Fallbacks = nil
	if c.IsProduction() {
		cc.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	} else {
		cc.TLSConfig = nil
	}
	return cc, nil
}

// OpenDB открывает пул соединений с базой по настройкам из конфига
// и проверяет его доступность.
//
// Пул ограничен db.max_open_conns: лишние запросы ждут свободного соединения,
// пока не истечёт их контекст.
func OpenDB(ctx context.Context, cfg *Config) (*sql.DB, error) {
	cc, err := cfg.connConfig()
	if err != nil {
		return nil, err
	}

	db := stdlib.OpenDB(*cc)
	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.DB.ConnMaxIdleTime)

	pingCtx := ctx
	if cfg.DB.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DB.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// Migrate применяет миграции из sourceURL (например file://migrations/postgres).
//
// Если миграции уже применены, migrate.ErrNoChange не считается ошибкой.
func Migrate(db *sql.DB, sourceURL string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return fmt.Errorf("creating migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}
