package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/bookverse-backend/internal/events"
)

func serveCartSession(req *http.Request) (*httptest.ResponseRecorder, string) {
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CartSessionFromContext(r.Context())
	})
	rec := httptest.NewRecorder()
	CartSession(false, nil)(handler).ServeHTTP(rec, req)
	return rec, seen
}

func TestCartSessionMintsWhenMissing(t *testing.T) {
	rec, seen := serveCartSession(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("expected minted uuid, got %q", seen)
	}
	if rec.Header().Get(CartSessionHeader) != seen {
		t.Fatalf("expected session echoed in header")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CartSessionCookie || cookies[0].Value != seen {
		t.Fatalf("expected session cookie, got %+v", cookies)
	}
}

func TestCartSessionReusesHeaderThenCookie(t *testing.T) {
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(CartSessionHeader, id)
	req.AddCookie(&http.Cookie{Name: CartSessionCookie, Value: uuid.NewString()})
	rec, seen := serveCartSession(req)
	if seen != id {
		t.Fatalf("expected header session %s, got %s", id, seen)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("existing sessions should not reissue a cookie")
	}

	cookieID := uuid.NewString()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: CartSessionCookie, Value: cookieID})
	if _, seen = serveCartSession(req); seen != cookieID {
		t.Fatalf("expected cookie session %s, got %s", cookieID, seen)
	}
}

func TestCartSessionReplacesMalformedIDs(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(CartSessionHeader, "../../etc")
	if _, seen := serveCartSession(req); seen == "../../etc" {
		t.Fatal("malformed session id should be replaced")
	}
}

func TestCartSessionStampsEventSession(t *testing.T) {
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil)
	req.Header.Set(CartSessionHeader, id)
	var stamped string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stamped = events.SessionIDFrom(r.Context())
	})
	CartSession(false, nil)(handler).ServeHTTP(httptest.NewRecorder(), req)
	if stamped != id {
		t.Fatalf("expected event session %q, got %q", id, stamped)
	}
}
