package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/bookverse-backend/api/middleware"
	"github.com/angelmondragon/bookverse-backend/api/responses"
	"github.com/angelmondragon/bookverse-backend/api/validators"
	"github.com/angelmondragon/bookverse-backend/internal/catalog"
	"github.com/angelmondragon/bookverse-backend/internal/events"
	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
	"github.com/angelmondragon/bookverse-backend/pkg/pagination"
)

const maxSearchLength = 120

type bookListResponse struct {
	Books []catalog.Item `json:"books"`
}

// BooksList returns the public catalog, optionally filtered by category and a search term.
func BooksList(repo catalog.Repository, emitter events.Emitter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := validators.SanitizeString(r.URL.Query().Get("q"), maxSearchLength)
		params := catalog.ListParams{
			Category: validators.SanitizeString(r.URL.Query().Get("category"), maxSearchLength),
			Query:    query,
			Limit:    limit,
		}

		books, err := repo.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if books == nil {
			books = []catalog.Item{}
		}

		if query != "" && emitter != nil {
			emitter.Emit(r.Context(), enums.EventSearchQuery, middleware.UserIDFromContext(r.Context()), map[string]any{
				"query":   query,
				"results": len(books),
			})
		}

		responses.WriteSuccess(w, bookListResponse{Books: books})
	}
}

// BookDetail returns one catalog item and records a book_view event.
func BookDetail(repo catalog.Repository, emitter events.Emitter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		bookID := strings.TrimSpace(chi.URLParam(r, "bookId"))
		if bookID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "book id is required"))
			return
		}

		item, err := repo.GetItem(r.Context(), bookID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if emitter != nil {
			emitter.Emit(r.Context(), enums.EventBookView, middleware.UserIDFromContext(r.Context()), map[string]any{
				"book_id":  item.ID,
				"category": item.Category,
			})
		}

		responses.WriteSuccess(w, item)
	}
}
