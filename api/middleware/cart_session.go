package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/bookverse-backend/internal/events"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
)

const (
	CartSessionHeader = "X-Cart-Session"
	CartSessionCookie = "bookverse_cart"
	cartSessionMaxAge = 30 * 24 * time.Hour
)

// CartSession resolves the guest cart session from the X-Cart-Session header
// or the bookverse_cart cookie, minting a new id when neither is present or
// the value is not a uuid. The id is echoed on the response header.
func CartSession(secureCookie bool, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(CartSessionHeader))
			if sessionID == "" {
				if cookie, err := r.Cookie(CartSessionCookie); err == nil {
					sessionID = strings.TrimSpace(cookie.Value)
				}
			}
			if _, err := uuid.Parse(sessionID); err != nil {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     CartSessionCookie,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(cartSessionMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(CartSessionHeader, sessionID)

			ctx := events.WithSessionID(WithCartSession(r.Context(), sessionID), sessionID)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
