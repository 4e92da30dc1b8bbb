package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/bookverse-backend/api/middleware"
	"github.com/angelmondragon/bookverse-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
)

type cartMerger interface {
	Merge(ctx context.Context, from, into cart.Owner) (cart.Snapshot, error)
}

// requestOwner resolves whose cart a request acts on. Signed-in callers own
// their user cart; any guest cart still bound to the session is folded into it.
func requestOwner(r *http.Request, carts cartMerger, logg *logger.Logger) (cart.Owner, error) {
	ctx := r.Context()
	session := middleware.CartSessionFromContext(ctx)
	identity := middleware.IdentityFromContext(ctx)

	if identity == nil {
		if session == "" {
			return cart.Owner{}, pkgerrors.New(pkgerrors.CodeValidation, "cart session is required")
		}
		return cart.GuestOwner(session), nil
	}

	owner := cart.UserOwner(identity.UserID)
	if session != "" && carts != nil {
		if _, err := carts.Merge(ctx, cart.GuestOwner(session), owner); err != nil && logg != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "cart.merge_failed")
		}
	}
	return owner, nil
}
