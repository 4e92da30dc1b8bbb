package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/bookverse-backend/api/responses"
	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/bookverse-backend/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	maxIdempotencyKey = 200

	// replayTTL bounds how long a completed order submission can be replayed.
	replayTTL = 7 * 24 * time.Hour
	// inFlightTTL bounds the reservation held while the handler runs.
	inFlightTTL = 2 * time.Minute

	inFlightMarker = "in_flight"
)

// idempotentRoutes maps "METHOD pattern" to the replay window for that route.
var idempotentRoutes = map[string]time.Duration{
	http.MethodPost + " /api/v1/checkout/submit": replayTTL,
	http.MethodPost + " /api/v1/payment":         replayTTL,
}

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
	BodyHash    string `json:"body_hash"`
}

// Idempotency makes order-creating POSTs safe to retry. The first request for
// a key reserves it, runs the handler and stores the response; later requests
// with the same key and body receive the stored response. 5xx responses
// release the key so the client may retry.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, ok := routeTTL(r.Method, routePattern(r))
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if clientKey == "" || len(clientKey) > maxIdempotencyKey {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			bodyHash := sha256Hex(body)
			key := store.IdempotencyKey(idempotencyScope(r), clientKey)

			reserved, err := store.SetNX(ctx, key, inFlightMarker, inFlightTTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key"))
				return
			}
			if !reserved {
				replayStored(ctx, store, logg, w, key, bodyHash)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			// The reservation is replaced in place so the key is never free
			// between the handler finishing and the response being stored.
			recordCtx := context.WithoutCancel(ctx)
			if capture.statusCode() >= http.StatusInternalServerError {
				if err := store.Del(recordCtx, key); err != nil {
					logIdempotencyFailure(ctx, logg, "idempotency.release_failed", err)
				}
				return
			}

			payload, err := json.Marshal(storedResponse{
				Status:      capture.statusCode(),
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
				BodyHash:    bodyHash,
			})
			if err == nil {
				err = store.Set(recordCtx, key, string(payload), ttl)
			}
			if err != nil {
				logIdempotencyFailure(ctx, logg, "idempotency.store_failed", err)
			}
		})
	}
}

func replayStored(ctx context.Context, store pkgredis.IdempotencyStore, logg *logger.Logger, w http.ResponseWriter, key, bodyHash string) {
	raw, err := store.Get(ctx, key)
	switch {
	case errors.Is(err, redis.Nil):
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this idempotency key is still in progress"))
		return
	case err != nil:
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotency record"))
		return
	case raw == inFlightMarker:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this idempotency key is still in progress"))
		return
	}

	var stored storedResponse
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if stored.BodyHash != bodyHash {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return
	}

	if stored.ContentType != "" {
		w.Header().Set("Content-Type", stored.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}

// idempotencyScope keeps keys from different callers and routes apart.
func idempotencyScope(r *http.Request) string {
	ctx := r.Context()
	return strings.Join([]string{UserIDFromContext(ctx), CartSessionFromContext(ctx), r.Method, r.URL.Path}, "|")
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func routeTTL(method, pattern string) (time.Duration, bool) {
	ttl, ok := idempotentRoutes[method+" "+pattern]
	return ttl, ok
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

func logIdempotencyFailure(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg != nil {
		logg.Error(ctx, msg, err)
	}
}
