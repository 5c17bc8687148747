package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/pflag"

	"github.com/ridloal/woodkits-store/internal/platform/config"
	"github.com/ridloal/woodkits-store/internal/platform/logger"
)

const (
	dsnFlag            = "dsn"
	migrationsPathFlag = "migrations-path"
	directionFlag      = "direction"
	stepsFlag          = "steps"
)

type migrationLogger struct{}

func (migrationLogger) Printf(format string, v ...interface{}) {
	logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (migrationLogger) Verbose() bool { return true }

func main() {
	flags := pflag.NewFlagSet("migrator", pflag.ExitOnError)
	dsn := flags.String(dsnFlag, config.GetEnv("STORE_DATABASE_DSN", ""), "postgres connection string")
	migrationsPath := flags.StringP(migrationsPathFlag, "m", "migrations", "directory holding the *.sql migrations")
	direction := flags.StringP(directionFlag, "d", "up", "up or down")
	steps := flags.IntP(stepsFlag, "n", 0, "number of migrations to apply; 0 applies all")
	_ = flags.Parse(os.Args[1:])

	logger.Setup(config.GetEnv("STORE_APP_ENV", "production"), config.GetEnv("STORE_LOG_LEVEL", ""))

	if *dsn == "" {
		logger.Error("Missing database connection string", fmt.Errorf("--%s flag or STORE_DATABASE_DSN: required", dsnFlag))
		os.Exit(2)
	}
	if err := run(*dsn, *migrationsPath, *direction, *steps); err != nil {
		logger.Error("Migration failed", err, logger.Fields{"direction": *direction})
		os.Exit(1)
	}
}

func run(dsn, migrationsPath, direction string, steps int) error {
	m, err := migrate.New("file://"+migrationsPath, pgxURL(dsn))
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	defer m.Close()
	m.Log = migrationLogger{}

	switch {
	case direction == "up" && steps == 0:
		err = m.Up()
	case direction == "up":
		err = m.Steps(steps)
	case direction == "down" && steps == 0:
		err = m.Down()
	case direction == "down":
		err = m.Steps(-steps)
	default:
		return fmt.Errorf("--%s must be up or down, got %q", directionFlag, direction)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No migrations to apply")
		return nil
	}
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}
	logger.Info("Migrations applied", logger.Fields{"version": version, "dirty": dirty})
	return nil
}

// pgxURL rewrites a postgres:// DSN to the scheme the pgx/v5 migrate driver
// registers.
func pgxURL(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}
