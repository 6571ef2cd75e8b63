package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver "pgx" para database/sql
	"github.com/pressly/goose/v3"

	"github.com/jhoicas/Facturacion-api/internal/infrastructure/postgres/migrations"
)

// Comandos de migración soportados por cmd/migrate.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
	MigrateReset  = "reset"
)

// OpenSQL abre una conexión database/sql (driver pgx) para goose.
func OpenSQL(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// RunMigrations aplica el comando goose sobre las migraciones embebidas.
func RunMigrations(db *sql.DB, command string) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	var err error
	switch command {
	case MigrateUp, "":
		err = goose.Up(db, ".")
	case MigrateDown:
		err = goose.Down(db, ".")
	case MigrateStatus:
		err = goose.Status(db, ".")
	case MigrateReset:
		err = goose.Reset(db, ".")
	default:
		return fmt.Errorf("comando de migración desconocido: %q", command)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}
