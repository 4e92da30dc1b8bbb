package catalog

import (
	"time"

	"github.com/angelmondragon/bookverse-backend/pkg/db/models"
	"github.com/angelmondragon/bookverse-backend/pkg/money"
)

// Item is the catalog view consumed by the cart and the public book endpoints.
type Item struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Author        string       `json:"author"`
	Category      string       `json:"category"`
	Description   *string      `json:"description,omitempty"`
	ISBN          *string      `json:"isbn,omitempty"`
	CoverURL      *string      `json:"coverUrl,omitempty"`
	PublishedYear *int         `json:"publishedYear,omitempty"`
	PurchasePrice money.Money  `json:"purchasePriceMinor"`
	BorrowPrice   *money.Money `json:"borrowPriceMinor,omitempty"`
	Currency      string       `json:"currency"`
	Stock         int          `json:"stock"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// InStock reports whether at least one copy is available.
func (i Item) InStock() bool {
	return i.Stock > 0
}

// ListParams filters the public catalog listing.
type ListParams struct {
	Category string
	Query    string
	Limit    int
}

func fromModel(b models.Book) Item {
	item := Item{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Category:      b.Category,
		Description:   b.Description,
		ISBN:          b.ISBN,
		CoverURL:      b.CoverURL,
		PublishedYear: b.PublishedYear,
		PurchasePrice: money.Money(b.PriceMinor),
		Currency:      b.Currency,
		Stock:         b.Stock,
		CreatedAt:     b.CreatedAt,
	}
	if b.BorrowPriceMinor != nil {
		borrow := money.Money(*b.BorrowPriceMinor)
		item.BorrowPrice = &borrow
	}
	return item
}
