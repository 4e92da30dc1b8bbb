package controllers

import (
	"net/http"

	"github.com/angelmondragon/bookverse-backend/api/middleware"
	"github.com/angelmondragon/bookverse-backend/api/responses"
	"github.com/angelmondragon/bookverse-backend/internal/auth"
	"github.com/angelmondragon/bookverse-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
)

type adminTransactionsResponse struct {
	Transactions []orders.OrderDTO `json:"transactions"`
}

// AdminTransactions returns the most recent orders across all users.
func AdminTransactions(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		recent, err := svc.ListRecent(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if recent == nil {
			recent = []orders.OrderDTO{}
		}
		responses.WriteSuccess(w, adminTransactionsResponse{Transactions: recent})
	}
}

// AdminCheckStatus reports whether the caller has admin access.
func AdminCheckStatus(authSvc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if authSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}
		responses.WriteSuccess(w, authSvc.Status(middleware.IdentityFromContext(r.Context())))
	}
}
