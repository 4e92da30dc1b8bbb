package cart

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/bookverse-backend/internal/catalog"
	"github.com/angelmondragon/bookverse-backend/internal/events"
	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
	"github.com/angelmondragon/bookverse-backend/pkg/money"
)

type catalogReader interface {
	GetItem(ctx context.Context, id string) (*catalog.Item, error)
}

// AddInput is a request to put an item in the cart.
type AddInput struct {
	ItemID   string
	Mode     enums.AcquisitionMode
	Quantity int
}

// Service exposes session-scoped cart operations.
type Service interface {
	Store(ctx context.Context, owner Owner) (*Store, error)
	View(ctx context.Context, owner Owner) (Snapshot, error)
	Add(ctx context.Context, owner Owner, input AddInput) (Snapshot, error)
	SetQuantity(ctx context.Context, owner Owner, key Key, quantity int) (Snapshot, error)
	Remove(ctx context.Context, owner Owner, key Key) (Snapshot, error)
	Clear(ctx context.Context, owner Owner) (Snapshot, error)
	Merge(ctx context.Context, from, into Owner) (Snapshot, error)
}

// ServiceParams wire the cart service.
type ServiceParams struct {
	Registry  *Registry
	Catalog   catalogReader
	Emitter   events.Emitter
	BorrowFee money.Money
}

type service struct {
	registry  *Registry
	catalog   catalogReader
	emitter   events.Emitter
	borrowFee money.Money
}

func NewService(params ServiceParams) (Service, error) {
	if params.Registry == nil {
		return nil, errors.New("cart registry required")
	}
	if params.Catalog == nil {
		return nil, errors.New("catalog reader required")
	}
	if params.BorrowFee < 0 {
		return nil, errors.New("borrow fee must be non-negative")
	}
	emitter := params.Emitter
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	return &service{
		registry:  params.Registry,
		catalog:   params.Catalog,
		emitter:   emitter,
		borrowFee: params.BorrowFee,
	}, nil
}

func (s *service) Store(ctx context.Context, owner Owner) (*Store, error) {
	return s.registry.Get(ctx, owner)
}

func (s *service) View(ctx context.Context, owner Owner) (Snapshot, error) {
	store, err := s.registry.Get(ctx, owner)
	if err != nil {
		return Snapshot{}, err
	}
	return store.Snapshot(), nil
}

func (s *service) Add(ctx context.Context, owner Owner, input AddInput) (Snapshot, error) {
	if !input.Mode.IsValid() {
		return Snapshot{}, invalidMode(input.Mode)
	}
	itemID := strings.TrimSpace(input.ItemID)
	item, err := s.catalog.GetItem(ctx, itemID)
	if err != nil {
		return Snapshot{}, err
	}
	if input.Mode == enums.AcquisitionModePurchase && !item.InStock() {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeStateConflict, "book is out of stock").
			WithDetails(map[string]any{"itemId": item.ID, "reason": "out_of_stock"})
	}

	store, err := s.registry.Get(ctx, owner)
	if err != nil {
		return Snapshot{}, err
	}
	price := s.unitPrice(*item, input.Mode)
	qty := input.Quantity
	if qty < 1 {
		qty = 1
	}
	snap := store.AddItem(ctx, Addition{
		ItemID:    item.ID,
		Mode:      input.Mode,
		Quantity:  qty,
		UnitPrice: price,
		Title:     item.Title,
		Author:    item.Author,
	})

	line, _ := snap.Get(Key{ItemID: item.ID, Mode: input.Mode})
	s.emitter.Emit(ctx, enums.EventCartAdd, owner.UserID, map[string]any{
		"itemId":         item.ID,
		"title":          item.Title,
		"mode":           input.Mode.String(),
		"quantity":       qty,
		"unitPriceMinor": line.UnitPrice.Minor(),
	})
	return snap, nil
}

func (s *service) SetQuantity(ctx context.Context, owner Owner, key Key, quantity int) (Snapshot, error) {
	if !key.Mode.IsValid() {
		return Snapshot{}, invalidMode(key.Mode)
	}
	store, err := s.registry.Get(ctx, owner)
	if err != nil {
		return Snapshot{}, err
	}
	if _, ok := store.Snapshot().Get(key); !ok {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	snap := store.SetQuantity(ctx, key, quantity)
	if quantity < 1 {
		s.emitRemove(ctx, owner, key)
	}
	return snap, nil
}

func (s *service) Remove(ctx context.Context, owner Owner, key Key) (Snapshot, error) {
	if !key.Mode.IsValid() {
		return Snapshot{}, invalidMode(key.Mode)
	}
	store, err := s.registry.Get(ctx, owner)
	if err != nil {
		return Snapshot{}, err
	}
	_, existed := store.Snapshot().Get(key)
	snap := store.RemoveItem(ctx, key)
	if existed {
		s.emitRemove(ctx, owner, key)
	}
	return snap, nil
}

func (s *service) Clear(ctx context.Context, owner Owner) (Snapshot, error) {
	store, err := s.registry.Get(ctx, owner)
	if err != nil {
		return Snapshot{}, err
	}
	return store.Clear(ctx), nil
}

// Merge folds the guest cart into the user's cart and empties the guest cart.
func (s *service) Merge(ctx context.Context, from, into Owner) (Snapshot, error) {
	target, err := s.registry.Get(ctx, into)
	if err != nil {
		return Snapshot{}, err
	}
	if from.Key == into.Key {
		return target.Snapshot(), nil
	}
	source, err := s.registry.Get(ctx, from)
	if err != nil {
		return Snapshot{}, err
	}
	guest := source.Snapshot()
	if guest.IsEmpty() {
		return target.Snapshot(), nil
	}
	merged := target.Merge(ctx, guest)
	source.Clear(ctx)
	return merged, nil
}

func (s *service) unitPrice(item catalog.Item, mode enums.AcquisitionMode) money.Money {
	if mode == enums.AcquisitionModeBorrow {
		if item.BorrowPrice != nil {
			return *item.BorrowPrice
		}
		return s.borrowFee
	}
	return item.PurchasePrice
}

func (s *service) emitRemove(ctx context.Context, owner Owner, key Key) {
	s.emitter.Emit(ctx, enums.EventCartRemove, owner.UserID, map[string]any{
		"itemId": key.ItemID,
		"mode":   key.Mode.String(),
	})
}

func invalidMode(mode enums.AcquisitionMode) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid acquisition mode").
		WithDetails(map[string]any{"mode": string(mode)})
}
