package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/bookverse-backend/pkg/config"
)

type testModel struct {
	ID   int
	Name string `gorm:"uniqueIndex"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestApplyPoolSetsLimits(t *testing.T) {
	conn := newTestDB(t)
	if err := applyPool(conn, config.DBConfig{MaxOpenConns: 7, MaxIdleConns: 3}); err != nil {
		t.Fatalf("apply pool: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != 7 {
		t.Fatalf("expected 7 max open conns, got %d", got)
	}
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	client := &Client{conn: db}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestNewOpensSQLiteDriver(t *testing.T) {
	client, err := New(context.Background(), config.DBConfig{
		DSN:    "file:client_new_test?mode=memory&cache=shared",
		Driver: config.DBDriverSQLite,
	}, nil)
	if err != nil {
		t.Fatalf("new sqlite client: %v", err)
	}
	defer client.Close()
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestNewRequiresDSN(t *testing.T) {
	if _, err := New(context.Background(), config.DBConfig{}, nil); err == nil {
		t.Fatal("expected missing dsn error")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "orders_order_id_key"}
	if !IsUniqueViolation(fmt.Errorf("insert: %w", pgErr), "") {
		t.Fatal("expected pg unique violation to match")
	}
	if !IsUniqueViolation(pgErr, "orders_order_id_key") {
		t.Fatal("expected named constraint to match")
	}
	if IsUniqueViolation(pgErr, "other_constraint") {
		t.Fatal("unexpected match for other constraint")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatal("foreign key violation is not a unique violation")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error cannot be a violation")
	}

	db := newTestDB(t)
	if err := db.Create(&testModel{ID: 100, Name: "dup"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := db.Create(&testModel{ID: 101, Name: "dup"}).Error
	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected sqlite unique failure to be detected, got %v", err)
	}
}

func TestIsNotFound(t *testing.T) {
	db := newTestDB(t)
	var row testModel
	err := db.Where("name = ?", "missing").First(&row).Error
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
