package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/bookverse-backend/pkg/config"
	"github.com/angelmondragon/bookverse-backend/pkg/migrate"
)

func TestMigrationsContainSchemas(t *testing.T) {
	cases := map[string][]string{
		"*_create_books_table.sql": {
			"CREATE TABLE IF NOT EXISTS books",
			"price_minor BIGINT NOT NULL",
			"CREATE INDEX IF NOT EXISTS idx_books_category",
		},
		"*_create_orders_table.sql": {
			"CREATE TABLE IF NOT EXISTS orders",
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_order_id",
			"payment_method IN ('airtel', 'mtn')",
		},
		"*_create_analytics_events_table.sql": {
			"CREATE TABLE IF NOT EXISTS analytics_events",
			"occurred_at TIMESTAMPTZ NOT NULL",
		},
		"*_add_session_id_to_analytics_events.sql": {
			"ADD COLUMN session_id TEXT",
			"CREATE INDEX IF NOT EXISTS idx_analytics_events_session",
		},
	}

	for pattern, checks := range cases {
		matches, err := filepath.Glob(filepath.Join("migrations", pattern))
		if err != nil {
			t.Fatalf("glob migrations: %v", err)
		}
		if len(matches) == 0 {
			t.Fatalf("no migration file matches %s", pattern)
		}
		data, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatalf("read migration file: %v", err)
		}
		content := string(data)
		for _, sub := range checks {
			if !strings.Contains(content, sub) {
				t.Errorf("%s: missing expected statement %q", matches[0], sub)
			}
		}
	}
}

func TestValidateDirAcceptsMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename to be rejected")
	}
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Book Ratings!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_book_ratings.sql") {
		t.Fatalf("unexpected path %q", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
}

func TestRunAppliesMigrationsOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_run?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	dialect := migrate.DialectFor(config.DBConfig{Driver: config.DBDriverSQLite})
	if err := migrate.Run(context.Background(), sqlDB, dialect, "migrations", "up"); err != nil {
		t.Fatalf("goose up: %v", err)
	}

	var count int64
	if err := conn.Table("books").Count(&count).Error; err != nil {
		t.Fatalf("count books: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 seeded books, got %d", count)
	}
	for _, table := range []string{"orders", "analytics_events"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("expected table %s", table)
		}
	}
	if !conn.Migrator().HasColumn("analytics_events", "session_id") {
		t.Fatal("expected analytics_events.session_id")
	}
}

func TestDialectForDefaultsToPostgres(t *testing.T) {
	if got := migrate.DialectFor(config.DBConfig{}); got != migrate.DialectPostgres {
		t.Fatalf("expected postgres dialect, got %q", got)
	}
}
