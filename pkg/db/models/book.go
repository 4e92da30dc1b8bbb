package models

import "time"

// Book is a catalog entry. Prices are minor units of Currency.
type Book struct {
	ID               string    `gorm:"column:id;primaryKey"`
	Title            string    `gorm:"column:title;not null"`
	Author           string    `gorm:"column:author;not null"`
	Category         string    `gorm:"column:category;not null;default:'general'"`
	Description      *string   `gorm:"column:description"`
	ISBN             *string   `gorm:"column:isbn"`
	CoverURL         *string   `gorm:"column:cover_url"`
	PublishedYear    *int      `gorm:"column:published_year"`
	PriceMinor       int64     `gorm:"column:price_minor;not null"`
	BorrowPriceMinor *int64    `gorm:"column:borrow_price_minor"`
	Currency         string    `gorm:"column:currency;not null;default:'USD'"`
	Stock            int       `gorm:"column:stock;not null;default:0"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Book) TableName() string { return "books" }
