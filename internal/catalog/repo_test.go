package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/bookverse-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
	"github.com/angelmondragon/bookverse-backend/pkg/money"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	books := `
CREATE TABLE IF NOT EXISTS books (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  author TEXT NOT NULL,
  category TEXT NOT NULL DEFAULT 'general',
  description TEXT,
  isbn TEXT,
  cover_url TEXT,
  published_year INTEGER,
  price_minor INTEGER NOT NULL,
  borrow_price_minor INTEGER,
  currency TEXT NOT NULL DEFAULT 'USD',
  stock INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(books).Error)
	return conn
}

func seedBook(t *testing.T, conn *gorm.DB, book models.Book) {
	t.Helper()
	require.NoError(t, conn.Create(&book).Error)
}

func TestGetItem(t *testing.T) {
	conn := setupCatalogTestDB(t)
	borrow := int64(399)
	seedBook(t, conn, models.Book{
		ID: "42", Title: "The Great Adventure", Author: "John Smith", Category: "fiction",
		PriceMinor: 2499, BorrowPriceMinor: &borrow, Currency: "USD", Stock: 3,
	})
	repo := NewRepository(conn)

	item, err := repo.GetItem(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "The Great Adventure", item.Title)
	assert.Equal(t, money.Money(2499), item.PurchasePrice)
	require.NotNil(t, item.BorrowPrice)
	assert.Equal(t, money.Money(399), *item.BorrowPrice)
	assert.True(t, item.InStock())
}

func TestGetItemNotFound(t *testing.T) {
	repo := NewRepository(setupCatalogTestDB(t))

	_, err := repo.GetItem(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = repo.GetItem(context.Background(), " ")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestListFiltersAndOrdersNewestFirst(t *testing.T) {
	conn := setupCatalogTestDB(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedBook(t, conn, models.Book{ID: "1", Title: "Quantum Physics", Author: "Dr. Emily Chen", Category: "science", PriceMinor: 3499, Currency: "USD", CreatedAt: base})
	seedBook(t, conn, models.Book{ID: "2", Title: "Digital Revolution", Author: "Mike Johnson", Category: "technology", PriceMinor: 2999, Currency: "USD", CreatedAt: base.Add(time.Hour)})
	seedBook(t, conn, models.Book{ID: "3", Title: "Digital Evolution", Author: "Jayce Robinson", Category: "history", PriceMinor: 2099, Currency: "USD", CreatedAt: base.Add(2 * time.Hour)})
	repo := NewRepository(conn)
	ctx := context.Background()

	all, err := repo.List(ctx, ListParams{Category: "all"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "3", all[0].ID)
	assert.Equal(t, "1", all[2].ID)

	science, err := repo.List(ctx, ListParams{Category: "Science"})
	require.NoError(t, err)
	require.Len(t, science, 1)
	assert.Equal(t, "1", science[0].ID)

	digital, err := repo.List(ctx, ListParams{Query: "digital"})
	require.NoError(t, err)
	assert.Len(t, digital, 2)

	byAuthor, err := repo.List(ctx, ListParams{Query: "chen"})
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)

	limited, err := repo.List(ctx, ListParams{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
