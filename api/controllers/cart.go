package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/bookverse-backend/api/responses"
	"github.com/angelmondragon/bookverse-backend/api/validators"
	"github.com/angelmondragon/bookverse-backend/internal/cart"
	"github.com/angelmondragon/bookverse-backend/internal/pricing"
	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
	"github.com/angelmondragon/bookverse-backend/pkg/money"
)

type addCartItemRequest struct {
	ItemID   string `json:"itemId" validate:"required"`
	Mode     string `json:"mode" validate:"required,oneof=purchase borrow"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1,max=99"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0,max=99"`
}

type cartLineResponse struct {
	ItemID         string                `json:"itemId"`
	Mode           enums.AcquisitionMode `json:"mode"`
	Quantity       int                   `json:"quantity"`
	UnitPriceMinor int64                 `json:"unitPriceMinor"`
	LineTotalMinor int64                 `json:"lineTotalMinor"`
	Title          string                `json:"title,omitempty"`
	Author         string                `json:"author,omitempty"`
	AddedAt        time.Time             `json:"addedAt"`
}

type cartResponse struct {
	Version            uint64             `json:"version"`
	Items              []cartLineResponse `json:"items"`
	ItemCount          int                `json:"itemCount"`
	PurchaseTotalMinor int64              `json:"purchaseTotalMinor"`
	BorrowTotalMinor   int64              `json:"borrowTotalMinor"`
	GrandTotalMinor    int64              `json:"grandTotalMinor"`
	GrandTotal         string             `json:"grandTotal"`
	Currency           string             `json:"currency"`
}

func newCartResponse(snap cart.Snapshot, currency money.Currency) cartResponse {
	summary := pricing.Summarize(snap, currency)
	items := make([]cartLineResponse, 0, len(summary.Lines))
	for _, line := range summary.Lines {
		items = append(items, cartLineResponse{
			ItemID:         line.ItemID,
			Mode:           line.Mode,
			Quantity:       line.Quantity,
			UnitPriceMinor: line.UnitPrice.Minor(),
			LineTotalMinor: line.Total.Minor(),
			Title:          line.Title,
			Author:         line.Author,
			AddedAt:        line.AddedAt,
		})
	}
	return cartResponse{
		Version:            summary.Version,
		Items:              items,
		ItemCount:          summary.ItemCount,
		PurchaseTotalMinor: summary.PurchaseTotal.Minor(),
		BorrowTotalMinor:   summary.BorrowTotal.Minor(),
		GrandTotalMinor:    summary.GrandTotal.Minor(),
		GrandTotal:         summary.Display(),
		Currency:           string(currency),
	}
}

// CartView returns the caller's cart with computed totals.
func CartView(svc cart.Service, currency money.Currency, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		owner, err := requestOwner(r, svc, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.View(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snap, currency))
	}
}

// CartAddItem adds a book to the cart or bumps the quantity of an existing line.
func CartAddItem(svc cart.Service, currency money.Currency, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		owner, err := requestOwner(r, svc, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mode, err := enums.ParseAcquisitionMode(payload.Mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid mode"))
			return
		}

		snap, err := svc.Add(r.Context(), owner, cart.AddInput{
			ItemID:   payload.ItemID,
			Mode:     mode,
			Quantity: payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(snap, currency))
	}
}

// CartUpdateItem sets a line's quantity. Zero removes the line.
func CartUpdateItem(svc cart.Service, currency money.Currency, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		owner, err := requestOwner(r, svc, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		key, err := lineKeyFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.SetQuantity(r.Context(), owner, key, *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snap, currency))
	}
}

// CartRemoveItem drops a line. Removing a missing line is a no-op.
func CartRemoveItem(svc cart.Service, currency money.Currency, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		owner, err := requestOwner(r, svc, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		key, err := lineKeyFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.Remove(r.Context(), owner, key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snap, currency))
	}
}

// CartClear empties the cart.
func CartClear(svc cart.Service, currency money.Currency, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		owner, err := requestOwner(r, svc, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.Clear(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snap, currency))
	}
}

func lineKeyFromPath(r *http.Request) (cart.Key, error) {
	itemID := strings.TrimSpace(chi.URLParam(r, "itemId"))
	if itemID == "" {
		return cart.Key{}, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	mode, err := enums.ParseAcquisitionMode(strings.TrimSpace(chi.URLParam(r, "mode")))
	if err != nil {
		return cart.Key{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid mode")
	}
	return cart.Key{ItemID: itemID, Mode: mode}, nil
}
