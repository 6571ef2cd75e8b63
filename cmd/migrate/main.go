// migrate aplica las migraciones embebidas sobre la base de datos configurada.
//
// Uso: go run ./cmd/migrate [up|down|status|reset]
// Sin argumento ejecuta "up".
package main

import (
	"os"

	"github.com/jhoicas/Facturacion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Facturacion-api/pkg/config"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})

	command := postgres.MigrateUp
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	db, err := postgres.OpenSQL(cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, command); err != nil {
		log.Error().Err(err).Str("command", command).Msg("migración fallida")
		os.Exit(1)
	}
	log.Info().Str("command", command).Msg("migración completada")
}
