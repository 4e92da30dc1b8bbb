package controllers

import (
	"net/http"

	"github.com/angelmondragon/bookverse-backend/api/responses"
	"github.com/angelmondragon/bookverse-backend/api/validators"
	"github.com/angelmondragon/bookverse-backend/internal/cart"
	"github.com/angelmondragon/bookverse-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
)

type selectProviderRequest struct {
	Provider string `json:"provider" validate:"required"`
}

type enterPhoneRequest struct {
	Phone string `json:"phone" validate:"required,max=32"`
}

type paymentRequest struct {
	Provider string `json:"provider" validate:"required"`
	Phone    string `json:"phone" validate:"required,max=32"`
}

// CheckoutView returns the current checkout state for the caller's cart.
func CheckoutView(svc checkout.Service, carts cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		owner, err := requestOwner(r, carts, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.View(r.Context(), owner))
	}
}

// CheckoutOpen starts provider selection.
func CheckoutOpen(svc checkout.Service, carts cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		owner, err := requestOwner(r, carts, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Open(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CheckoutSelectProvider records the mobile money provider.
func CheckoutSelectProvider(svc checkout.Service, carts cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		owner, err := requestOwner(r, carts, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload selectProviderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.SelectProvider(r.Context(), owner, payload.Provider)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CheckoutEnterPhone records the payer's phone number.
func CheckoutEnterPhone(svc checkout.Service, carts cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		owner, err := requestOwner(r, carts, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload enterPhoneRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.EnterPhone(r.Context(), owner, payload.Phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CheckoutSubmit charges the selected provider and settles the order.
func CheckoutSubmit(svc checkout.Service, carts cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		owner, err := requestOwner(r, carts, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// Payment drives the full checkout in one request.
func Payment(svc checkout.Service, carts cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		owner, err := requestOwner(r, carts, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Pay(r.Context(), owner, checkout.PayInput{
			Provider: payload.Provider,
			Phone:    payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
