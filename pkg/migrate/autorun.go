package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/bookverse-backend/pkg/config"
	"github.com/angelmondragon/bookverse-backend/pkg/db"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations at startup. It only acts in the dev
// environment with the auto-migrate flag on.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg == nil || !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if client == nil {
		return errNoDB
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("migrate: unwrap sql.DB: %w", err)
	}

	dialect := DialectFor(cfg.DB)
	ctx = logg.WithFields(ctx, map[string]any{"dir": DefaultDir, "dialect": dialect})
	start := time.Now()
	if err := Run(ctx, sqlDB, dialect, DefaultDir, "up"); err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "duration_ms", time.Since(start).Milliseconds()), "migrate.autorun_done")
	return nil
}
