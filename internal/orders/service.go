package orders

import (
	"context"
	"errors"
	"strings"

	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
	"github.com/angelmondragon/bookverse-backend/pkg/pagination"
)

const adminFeedLimit = 100

// ListParams page through a user's orders.
type ListParams struct {
	Limit  int
	Cursor string
}

// Service exposes read access to orders for API callers.
type Service interface {
	ListForUser(ctx context.Context, userID string, params ListParams) (*ListResult, error)
	ListRecent(ctx context.Context) ([]OrderDTO, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New("orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListForUser(ctx context.Context, userID string, params ListParams) (*ListResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.ListByUser(ctx, userID, params.Limit, cursor)
	if err != nil {
		return nil, err
	}
	result := &ListResult{Orders: toDTOs(rows)}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// ListRecent returns the latest orders across all users for the admin feed.
func (s *service) ListRecent(ctx context.Context) ([]OrderDTO, error) {
	rows, err := s.repo.ListRecent(ctx, adminFeedLimit)
	if err != nil {
		return nil, err
	}
	return toDTOs(rows), nil
}
