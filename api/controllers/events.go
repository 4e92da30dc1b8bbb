package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/bookverse-backend/api/middleware"
	"github.com/angelmondragon/bookverse-backend/api/responses"
	"github.com/angelmondragon/bookverse-backend/api/validators"
	"github.com/angelmondragon/bookverse-backend/internal/events"
	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
)

type eventIngester interface {
	Ingest(ctx context.Context, userID string, input events.IngestInput) error
}

// EventsIngest accepts a client-reported analytics event.
func EventsIngest(svc eventIngester, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}

		var payload events.IngestInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Ingest(r.Context(), middleware.UserIDFromContext(r.Context()), payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	}
}
