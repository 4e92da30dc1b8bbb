package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/bookverse-backend/internal/auth"
	"github.com/angelmondragon/bookverse-backend/internal/cart"
	"github.com/angelmondragon/bookverse-backend/pkg/enums"
)

type stubCartService struct {
	snap      cart.Snapshot
	err       error
	owners    []cart.Owner
	merges    [][2]cart.Owner
	mergeErr  error
	added     *cart.AddInput
	setKey    cart.Key
	setQty    int
	removeKey cart.Key
	cleared   bool
}

func (s *stubCartService) Store(ctx context.Context, owner cart.Owner) (*cart.Store, error) {
	s.owners = append(s.owners, owner)
	return cart.NewStore(nil), s.err
}

func (s *stubCartService) View(ctx context.Context, owner cart.Owner) (cart.Snapshot, error) {
	s.owners = append(s.owners, owner)
	return s.snap, s.err
}

func (s *stubCartService) Add(ctx context.Context, owner cart.Owner, input cart.AddInput) (cart.Snapshot, error) {
	s.owners = append(s.owners, owner)
	s.added = &input
	return s.snap, s.err
}

func (s *stubCartService) SetQuantity(ctx context.Context, owner cart.Owner, key cart.Key, quantity int) (cart.Snapshot, error) {
	s.owners = append(s.owners, owner)
	s.setKey = key
	s.setQty = quantity
	return s.snap, s.err
}

func (s *stubCartService) Remove(ctx context.Context, owner cart.Owner, key cart.Key) (cart.Snapshot, error) {
	s.owners = append(s.owners, owner)
	s.removeKey = key
	return s.snap, s.err
}

func (s *stubCartService) Clear(ctx context.Context, owner cart.Owner) (cart.Snapshot, error) {
	s.owners = append(s.owners, owner)
	s.cleared = true
	return cart.Snapshot{}, s.err
}

func (s *stubCartService) Merge(ctx context.Context, from, into cart.Owner) (cart.Snapshot, error) {
	s.merges = append(s.merges, [2]cart.Owner{from, into})
	return s.snap, s.mergeErr
}

type emitted struct {
	eventType enums.EventType
	userID    string
	metadata  map[string]any
}

type recordingEmitter struct {
	events []emitted
}

func (e *recordingEmitter) Emit(ctx context.Context, eventType enums.EventType, userID string, metadata map[string]any) {
	e.events = append(e.events, emitted{eventType: eventType, userID: userID, metadata: metadata})
}

func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func customer(userID string) *auth.Identity {
	return &auth.Identity{UserID: userID, Role: enums.UserRoleCustomer}
}
