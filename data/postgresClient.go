package data

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/tickerduel/stockpick_backend/config"
)

const (
	pgConnAttempts = 10
	pgConnBackoff  = time.Second
)

// NewPostgresClient connects with a bounded retry loop, applies pool settings
// and runs pending migrations. The process is useless without a database, so
// any failure here panics.
func NewPostgresClient(cfg *config.Config) *sqlx.DB {
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable password=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.DbName,
		cfg.Postgres.Password,
	)

	var db *sqlx.DB
	var err error

	for attempt := 1; attempt <= pgConnAttempts; attempt++ {
		db, err = sqlx.Connect("pgx", dsn)
		if err == nil {
			break
		}

		slog.Info("waiting for postgres", slog.Int("attempt", attempt), slog.Int("maxAttempts", pgConnAttempts))
		time.Sleep(pgConnBackoff)
	}

	if err != nil {
		slog.Error("postgres is unreachable, giving up", slog.String("err", err.Error()))
		panic(err)
	}

	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxIdleTime(time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second)

	if err = db.Ping(); err != nil {
		slog.Error("postgres ping failed", slog.String("err", err.Error()))
		panic(err)
	}
	slog.Info("postgres connected")

	migratePostgres(db, cfg.Postgres.MigrationDir)

	return db
}

func migratePostgres(db *sqlx.DB, migrationDir string) {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		slog.Error("migration driver init failed", slog.String("err", err.Error()))
		panic(err)
	}

	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationDir), "postgres", driver)
	if err != nil {
		slog.Error("migration setup failed", slog.String("migrationDir", migrationDir), slog.String("err", err.Error()))
		panic(err)
	}

	if err = m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("postgres schema is up to date")
			return
		}
		slog.Error("migration apply failed", slog.String("err", err.Error()))
		panic(err)
	}

	slog.Info("postgres migrations applied")
}
