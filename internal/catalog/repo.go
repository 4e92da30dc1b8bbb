package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/bookverse-backend/pkg/db"
	"github.com/angelmondragon/bookverse-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
	"github.com/angelmondragon/bookverse-backend/pkg/pagination"
)

// Repository is the read-only catalog lookup.
type Repository interface {
	GetItem(ctx context.Context, id string) (*Item, error)
	List(ctx context.Context, params ListParams) ([]Item, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) GetItem(ctx context.Context, id string) (*Item, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id is required")
	}
	var book models.Book
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&book).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	item := fromModel(book)
	return &item, nil
}

func (r *repository) List(ctx context.Context, params ListParams) ([]Item, error) {
	qb := r.db.WithContext(ctx).Model(&models.Book{})
	if category := strings.ToLower(strings.TrimSpace(params.Category)); category != "" && category != "all" {
		qb = qb.Where("LOWER(category) = ?", category)
	}
	if search := strings.TrimSpace(params.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(title) LIKE ? OR LOWER(author) LIKE ?)", pattern, pattern)
	}

	var books []models.Book
	err := qb.Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.NormalizeLimit(params.Limit)).
		Find(&books).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list books")
	}

	items := make([]Item, 0, len(books))
	for _, b := range books {
		items = append(items, fromModel(b))
	}
	return items, nil
}
