// Package migrate applies, creates and checks the goose SQL migrations that
// define the orders and analytics schema.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/bookverse-backend/pkg/config"
)

const DefaultDir = "pkg/migrate/migrations"

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

var errNoDB = errors.New("migrate: db is required")

// DialectFor maps the configured DB driver onto the goose dialect name.
func DialectFor(cfg config.DBConfig) string {
	if cfg.UsesSQLite() {
		return DialectSQLite
	}
	return DialectPostgres
}

func newProvider(db *sql.DB, dialect, dir string) (*goose.Provider, error) {
	if db == nil {
		return nil, errNoDB
	}
	if dir == "" {
		return nil, errors.New("migrate: dir is required")
	}
	gooseDialect := goose.DialectPostgres
	if dialect == DialectSQLite {
		gooseDialect = goose.DialectSQLite3
	}
	provider, err := goose.NewProvider(gooseDialect, db, os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("migrate: open %s: %w", dir, err)
	}
	return provider, nil
}

// Run executes one of up, down, redo, reset or status against dir.
func Run(ctx context.Context, db *sql.DB, dialect, dir, command string) error {
	provider, err := newProvider(db, dialect, dir)
	if err != nil {
		return err
	}
	defer provider.Close()

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		report(results...)
		return commandError(command, err)
	case "down":
		result, err := provider.Down(ctx)
		report(result)
		return commandError(command, err)
	case "redo":
		result, err := provider.Down(ctx)
		report(result)
		if err != nil {
			return commandError(command, err)
		}
		result, err = provider.UpByOne(ctx)
		report(result)
		return commandError(command, err)
	case "reset":
		results, err := provider.DownTo(ctx, 0)
		report(results...)
		return commandError(command, err)
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return commandError(command, err)
		}
		for _, st := range statuses {
			applied := "pending"
			if st.State == goose.StateApplied {
				applied = st.AppliedAt.UTC().Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%-24s %d %s\n", applied, st.Source.Version, st.Source.Path)
		}
		return nil
	default:
		return fmt.Errorf("migrate: unsupported command %q", command)
	}
}

// MigrateToVersion moves the schema up or down until it sits at targetVersion.
func MigrateToVersion(ctx context.Context, db *sql.DB, dialect, dir, targetVersion string) error {
	if targetVersion == "" {
		return errors.New("migrate: target version is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("migrate: invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	provider, err := newProvider(db, dialect, dir)
	if err != nil {
		return err
	}
	defer provider.Close()

	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("migrate: read db version: %w", err)
	}
	var results []*goose.MigrationResult
	switch {
	case current < target:
		results, err = provider.UpTo(ctx, target)
	case current > target:
		results, err = provider.DownTo(ctx, target)
	}
	report(results...)
	return commandError("version", err)
}

func report(results ...*goose.MigrationResult) {
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		fmt.Printf("%-4s %s (%s)\n", res.Direction, res.Source.Path, res.Duration.Round(time.Millisecond))
	}
}

func commandError(command string, err error) error {
	if err == nil || errors.Is(err, goose.ErrNoNextVersion) {
		return nil
	}
	return fmt.Errorf("migrate: goose %s: %w", command, err)
}
