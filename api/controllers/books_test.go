package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/bookverse-backend/api/middleware"
	"github.com/angelmondragon/bookverse-backend/internal/catalog"
	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
)

type stubCatalog struct {
	items  []catalog.Item
	item   *catalog.Item
	err    error
	params catalog.ListParams
	gotID  string
}

func (s *stubCatalog) GetItem(ctx context.Context, id string) (*catalog.Item, error) {
	s.gotID = id
	return s.item, s.err
}

func (s *stubCatalog) List(ctx context.Context, params catalog.ListParams) ([]catalog.Item, error) {
	s.params = params
	return s.items, s.err
}

func TestBooksListAppliesFilters(t *testing.T) {
	repo := &stubCatalog{items: []catalog.Item{{ID: "b1", Title: "Dune"}}}
	emitter := &recordingEmitter{}
	req := httptest.NewRequest(http.MethodGet, "/api/public/books?category=scifi&q=%20dune%20&limit=10", nil)
	resp := httptest.NewRecorder()
	BooksList(repo, emitter, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if repo.params.Category != "scifi" || repo.params.Query != "dune" || repo.params.Limit != 10 {
		t.Fatalf("unexpected params: %+v", repo.params)
	}
	if len(emitter.events) != 1 || emitter.events[0].eventType != enums.EventSearchQuery {
		t.Fatalf("expected one search event, got %+v", emitter.events)
	}

	var envelope struct {
		Data bookListResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Books) != 1 || envelope.Data.Books[0].ID != "b1" {
		t.Fatalf("unexpected books: %+v", envelope.Data.Books)
	}
}

func TestBooksListReturnsEmptyArray(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/public/books", nil)
	resp := httptest.NewRecorder()
	BooksList(&stubCatalog{}, &recordingEmitter{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Body.String(); got != "{\"data\":{\"books\":[]}}\n" {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestBooksListRejectsOutOfRangeLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/public/books?limit=500", nil)
	resp := httptest.NewRecorder()
	BooksList(&stubCatalog{}, nil, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestBookDetailEmitsView(t *testing.T) {
	repo := &stubCatalog{item: &catalog.Item{ID: "b1", Category: "classics"}}
	emitter := &recordingEmitter{}
	req := httptest.NewRequest(http.MethodGet, "/api/public/books/b1", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), customer("user-1")))
	req = withURLParams(req, map[string]string{"bookId": "b1"})
	resp := httptest.NewRecorder()
	BookDetail(repo, emitter, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if repo.gotID != "b1" {
		t.Fatalf("unexpected id %q", repo.gotID)
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected one event, got %d", len(emitter.events))
	}
	ev := emitter.events[0]
	if ev.eventType != enums.EventBookView || ev.userID != "user-1" || ev.metadata["book_id"] != "b1" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestBookDetailNotFound(t *testing.T) {
	repo := &stubCatalog{err: pkgerrors.New(pkgerrors.CodeNotFound, "book not found")}
	emitter := &recordingEmitter{}
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/public/books/missing", nil), map[string]string{"bookId": "missing"})
	resp := httptest.NewRecorder()
	BookDetail(repo, emitter, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	if len(emitter.events) != 0 {
		t.Fatal("no event expected for a missing book")
	}
}
