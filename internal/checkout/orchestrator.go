package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/bookverse-backend/internal/cart"
	"github.com/angelmondragon/bookverse-backend/internal/events"
	"github.com/angelmondragon/bookverse-backend/internal/orders"
	"github.com/angelmondragon/bookverse-backend/internal/payments"
	"github.com/angelmondragon/bookverse-backend/internal/pricing"
	"github.com/angelmondragon/bookverse-backend/pkg/db/models"
	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
	"github.com/angelmondragon/bookverse-backend/pkg/metrics"
	"github.com/angelmondragon/bookverse-backend/pkg/money"
)

const (
	// DefaultBorrowDurationDays is recorded on borrow lines when no duration is configured.
	DefaultBorrowDurationDays = 14

	defaultProviderTimeout = 30 * time.Second
	reconcileTimeout       = 5 * time.Second

	errorKindUnexpected = "unexpected"
)

type cartStores interface {
	Store(ctx context.Context, owner cart.Owner) (*cart.Store, error)
}

type orderStore interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	Update(ctx context.Context, orderID string, patch orders.Patch) (*models.Order, error)
}

type idSource interface {
	Next() (string, error)
}

type phoneNormalizer interface {
	Normalize(input string) (string, error)
}

// Result describes a settled checkout.
type Result struct {
	OrderID       string                `json:"orderId"`
	TransactionID string                `json:"transactionId,omitempty"`
	Provider      enums.PaymentProvider `json:"provider"`
	Phone         string                `json:"phone"`
	PurchaseTotal money.Money           `json:"purchaseTotalMinor"`
	BorrowTotal   money.Money           `json:"borrowTotalMinor"`
	GrandTotal    money.Money           `json:"grandTotalMinor"`
	Currency      money.Currency        `json:"currency"`
	Display       string                `json:"grandTotal"`
	State         enums.CheckoutState   `json:"state"`
}

// Service is the checkout surface exposed to the HTTP layer.
type Service interface {
	View(ctx context.Context, owner cart.Owner) View
	Open(ctx context.Context, owner cart.Owner) (View, error)
	SelectProvider(ctx context.Context, owner cart.Owner, provider string) (View, error)
	EnterPhone(ctx context.Context, owner cart.Owner, raw string) (View, error)
	Submit(ctx context.Context, owner cart.Owner) (*Result, error)
	Pay(ctx context.Context, owner cart.Owner, input PayInput) (*Result, error)
}

var _ Service = (*Orchestrator)(nil)

// PayInput drives a whole checkout in one call.
type PayInput struct {
	Provider string
	Phone    string
}

// Params wire the orchestrator.
type Params struct {
	Logger             *logger.Logger
	Carts              cartStores
	Orders             orderStore
	Gateway            payments.Gateway
	Emitter            events.Emitter
	Phone              phoneNormalizer
	OrderIDs           idSource
	Sessions           *Manager
	Locks              LockFactory
	Metrics            *metrics.CheckoutMetrics
	Currency           money.Currency
	BorrowDurationDays int
	ProviderTimeout    time.Duration
}

// Orchestrator runs the checkout state machine against the cart, the order
// store and the payment gateway.
type Orchestrator struct {
	logg            *logger.Logger
	carts           cartStores
	orders          orderStore
	gateway         payments.Gateway
	emitter         events.Emitter
	phone           phoneNormalizer
	ids             idSource
	sessions        *Manager
	locks           LockFactory
	metrics         *metrics.CheckoutMetrics
	currency        money.Currency
	borrowDays      int
	providerTimeout time.Duration
	now             func() time.Time
}

func NewOrchestrator(params Params) (*Orchestrator, error) {
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if params.Carts == nil {
		return nil, errors.New("cart stores required")
	}
	if params.Orders == nil {
		return nil, errors.New("order store required")
	}
	if params.Gateway == nil {
		return nil, errors.New("payment gateway required")
	}
	if params.Phone == nil {
		return nil, errors.New("phone normalizer required")
	}
	emitter := params.Emitter
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	ids := params.OrderIDs
	if ids == nil {
		ids = orders.NewIDGenerator()
	}
	sessions := params.Sessions
	if sessions == nil {
		sessions = NewManager(0)
	}
	currency := params.Currency
	if currency == "" {
		currency = money.CurrencyUSD
	}
	borrowDays := params.BorrowDurationDays
	if borrowDays <= 0 {
		borrowDays = DefaultBorrowDurationDays
	}
	timeout := params.ProviderTimeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	return &Orchestrator{
		logg:            params.Logger,
		carts:           params.Carts,
		orders:          params.Orders,
		gateway:         params.Gateway,
		emitter:         emitter,
		phone:           params.Phone,
		ids:             ids,
		sessions:        sessions,
		locks:           params.Locks,
		metrics:         params.Metrics,
		currency:        currency,
		borrowDays:      borrowDays,
		providerTimeout: timeout,
		now:             time.Now,
	}, nil
}

// View returns the owner's current checkout state without creating a session.
func (o *Orchestrator) View(ctx context.Context, owner cart.Owner) View {
	if session, ok := o.sessions.Peek(owner.Key); ok {
		return session.View()
	}
	return View{State: enums.CheckoutStateIdle}
}

// Open starts a checkout. An empty cart is a state conflict and leaves the
// session untouched.
func (o *Orchestrator) Open(ctx context.Context, owner cart.Owner) (View, error) {
	store, err := o.carts.Store(ctx, owner)
	if err != nil {
		return View{}, err
	}
	session := o.sessions.Get(owner.Key)
	if store.Snapshot().IsEmpty() {
		return session.View(), errEmptyCart()
	}
	return session.open(o.now())
}

func (o *Orchestrator) SelectProvider(ctx context.Context, owner cart.Owner, provider string) (View, error) {
	parsed, err := enums.ParsePaymentProvider(provider)
	if err != nil {
		return o.sessions.Get(owner.Key).View(), pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported payment provider").
			WithDetails(map[string]any{"provider": provider})
	}
	return o.sessions.Get(owner.Key).selectProvider(parsed, o.now())
}

// EnterPhone validates and stores the payer's number. An invalid number
// leaves the session where it was.
func (o *Orchestrator) EnterPhone(ctx context.Context, owner cart.Owner, raw string) (View, error) {
	session := o.sessions.Get(owner.Key)
	if err := session.requirePhoneStep(); err != nil {
		return session.View(), err
	}
	normalized, err := o.phone.Normalize(raw)
	if err != nil {
		return session.View(), err
	}
	return session.enterPhone(normalized, o.now())
}

// Submit creates the order and charges the provider. It blocks until the
// charge settles or the provider timeout elapses.
func (o *Orchestrator) Submit(ctx context.Context, owner cart.Owner) (*Result, error) {
	userID := strings.TrimSpace(owner.UserID)
	if userID == "" {
		o.metrics.IncRejected("unauthenticated")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to complete checkout")
	}
	ctx = o.logg.WithUserID(ctx, userID)

	session := o.sessions.Get(owner.Key)
	sub, err := session.beginSubmit(o.now())
	if err != nil {
		o.metrics.IncRejected(rejectionReason(err))
		return nil, err
	}

	release, err := o.acquireSubmitLock(ctx, owner)
	if err != nil {
		session.abortSubmit(o.now())
		o.metrics.IncRejected(rejectionReason(err))
		return nil, err
	}
	defer release()

	store, err := o.carts.Store(ctx, owner)
	if err != nil {
		session.abortSubmit(o.now())
		return nil, err
	}
	snap := store.Snapshot()
	if snap.IsEmpty() {
		session.abortSubmit(o.now())
		o.metrics.IncRejected("empty_cart")
		return nil, errEmptyCart()
	}
	summary := pricing.Summarize(snap, o.currency)

	order, err := o.createOrder(ctx, userID, sub, summary)
	if err != nil {
		o.logg.Error(ctx, "create order failed", err)
		o.emitFailure(ctx, userID, "", sub.provider, summary.GrandTotal, "order could not be created", errorKindUnexpected, err)
		session.settleFailure("", "order_not_created", o.now())
		o.metrics.IncSettled(errorKindUnexpected)
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create order")
	}
	ctx = o.logg.WithOrderID(ctx, order.OrderID)
	session.markPending(order.OrderID, o.now())
	o.emitter.Emit(ctx, enums.EventPaymentAttempt, userID, map[string]any{
		"orderId":     order.OrderID,
		"provider":    sub.provider.String(),
		"amountMinor": summary.GrandTotal.Minor(),
		"currency":    string(summary.Currency),
		"itemCount":   summary.ItemCount,
	})

	receipt, chargeErr := o.charge(ctx, payments.ChargeRequest{
		Provider: sub.provider,
		Phone:    sub.phone,
		Amount:   summary.GrandTotal,
		Currency: summary.Currency,
		OrderID:  order.OrderID,
	})
	if chargeErr != nil {
		return nil, o.failCharge(ctx, session, userID, order.OrderID, sub.provider, summary, chargeErr)
	}

	// The provider has taken the money; settling must outlive the request.
	settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reconcileTimeout)
	defer cancel()
	if _, err := o.orders.Update(settleCtx, order.OrderID, orders.Settled(receipt.TransactionID)); err != nil {
		o.logg.Error(ctx, "record settled order failed", err)
		o.emitFailure(ctx, userID, order.OrderID, sub.provider, summary.GrandTotal, "order could not be settled", errorKindUnexpected, err)
		session.settleFailure(order.OrderID, "order_not_settled", o.now())
		o.metrics.IncSettled(errorKindUnexpected)
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "settle order").
			WithDetails(map[string]any{"orderId": order.OrderID})
	}

	o.emitter.Emit(ctx, enums.EventPaymentSuccess, userID, map[string]any{
		"orderId":       order.OrderID,
		"transactionId": receipt.TransactionID,
		"provider":      sub.provider.String(),
		"amountMinor":   summary.GrandTotal.Minor(),
		"currency":      string(summary.Currency),
	})
	for _, item := range order.Items {
		o.emitter.Emit(ctx, item.Mode.ItemEvent(), userID, itemMetadata(order.OrderID, item))
	}
	store.Clear(settleCtx)

	result := Result{
		OrderID:       order.OrderID,
		TransactionID: receipt.TransactionID,
		Provider:      sub.provider,
		Phone:         sub.phone,
		PurchaseTotal: summary.PurchaseTotal,
		BorrowTotal:   summary.BorrowTotal,
		GrandTotal:    summary.GrandTotal,
		Currency:      summary.Currency,
		Display:       summary.Display(),
	}
	session.settleSuccess(result, o.now())
	o.metrics.IncSettled("success")
	o.logg.Info(ctx, "checkout settled")
	result.State = enums.CheckoutStateSettledSuccess
	return &result, nil
}

// Pay runs open, provider selection, phone entry and submit in one call.
func (o *Orchestrator) Pay(ctx context.Context, owner cart.Owner, input PayInput) (*Result, error) {
	if strings.TrimSpace(owner.UserID) == "" {
		o.metrics.IncRejected("unauthenticated")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to complete checkout")
	}
	if _, err := o.Open(ctx, owner); err != nil {
		return nil, err
	}
	if _, err := o.SelectProvider(ctx, owner, input.Provider); err != nil {
		return nil, err
	}
	if _, err := o.EnterPhone(ctx, owner, input.Phone); err != nil {
		return nil, err
	}
	return o.Submit(ctx, owner)
}

func (o *Orchestrator) createOrder(ctx context.Context, userID string, sub submission, summary pricing.Summary) (*models.Order, error) {
	orderID, err := o.ids.Next()
	if err != nil {
		return nil, err
	}
	items := make(models.OrderItems, 0, len(summary.Lines))
	for _, line := range summary.Lines {
		item := models.OrderItem{
			ItemID:         line.ItemID,
			Title:          line.Title,
			Author:         line.Author,
			Mode:           line.Mode,
			Quantity:       line.Quantity,
			UnitPriceMinor: line.UnitPrice.Minor(),
			LineTotalMinor: line.Total.Minor(),
		}
		if line.Mode == enums.AcquisitionModeBorrow {
			days := o.borrowDays
			item.BorrowDurationDays = &days
		}
		items = append(items, item)
	}
	return o.orders.Create(ctx, &models.Order{
		OrderID:       orderID,
		UserID:        userID,
		Items:         items,
		TotalMinor:    summary.GrandTotal.Minor(),
		Currency:      string(summary.Currency),
		PaymentMethod: sub.provider,
		PaymentStatus: enums.PaymentStatusPending,
		Status:        enums.OrderStatusPending,
		CustomerPhone: sub.phone,
	})
}

// charge runs detached from the request so a dropped client cannot abandon
// an attempt halfway; only the provider timeout aborts it.
func (o *Orchestrator) charge(ctx context.Context, req payments.ChargeRequest) (receipt payments.Receipt, err error) {
	chargeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.providerTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gateway panic: %v", r)
		}
	}()
	receipt, err = o.gateway.Charge(chargeCtx, req)
	if err == nil && strings.TrimSpace(receipt.TransactionID) == "" {
		err = errors.New("gateway returned an empty transaction id")
	}
	if err != nil && payments.KindOf(err) == "" && errors.Is(chargeCtx.Err(), context.DeadlineExceeded) {
		err = payments.TimedOut(req.Provider, err)
	}
	return receipt, err
}

func (o *Orchestrator) failCharge(ctx context.Context, session *Session, userID, orderID string, provider enums.PaymentProvider, summary pricing.Summary, chargeErr error) error {
	kind := string(payments.KindOf(chargeErr))
	reason := failureReason(chargeErr)
	if kind == "" {
		kind = errorKindUnexpected
	}

	reconcileCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reconcileTimeout)
	defer cancel()
	if _, err := o.orders.Update(reconcileCtx, orderID, orders.Failed(reason)); err != nil {
		o.logg.Error(ctx, "record failed order failed", err)
	}

	o.emitFailure(ctx, userID, orderID, provider, summary.GrandTotal, reason, kind, chargeErr)
	session.settleFailure(orderID, reason, o.now())
	o.metrics.IncSettled(kind)
	o.logg.Warn(o.logg.WithFields(ctx, map[string]any{"error_kind": kind, "reason": reason}), "checkout payment failed")

	return pkgerrors.Wrap(pkgerrors.CodePayment, chargeErr, "payment failed").
		WithDetails(map[string]any{"orderId": orderID, "reason": reason, "errorKind": kind})
}

func (o *Orchestrator) emitFailure(ctx context.Context, userID, orderID string, provider enums.PaymentProvider, amount money.Money, reason, kind string, cause error) {
	metadata := map[string]any{
		"provider":    provider.String(),
		"amountMinor": amount.Minor(),
		"reason":      reason,
		"error_kind":  kind,
	}
	if orderID != "" {
		metadata["orderId"] = orderID
	}
	if kind == errorKindUnexpected && cause != nil {
		metadata["cause"] = cause.Error()
	}
	o.emitter.Emit(ctx, enums.EventPaymentFailed, userID, metadata)
}

func (o *Orchestrator) acquireSubmitLock(ctx context.Context, owner cart.Owner) (func(), error) {
	if o.locks == nil {
		return func() {}, nil
	}
	lock, err := o.locks(owner.Key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build submit lock")
	}
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire submit lock")
	}
	if !acquired {
		return nil, errSubmitInFlight()
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reconcileTimeout)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil {
			o.logg.Error(ctx, "release submit lock failed", err)
		}
	}, nil
}

func itemMetadata(orderID string, item models.OrderItem) map[string]any {
	metadata := map[string]any{
		"orderId":        orderID,
		"itemId":         item.ItemID,
		"title":          item.Title,
		"mode":           item.Mode.String(),
		"quantity":       item.Quantity,
		"unitPriceMinor": item.UnitPriceMinor,
		"lineTotalMinor": item.LineTotalMinor,
	}
	if item.BorrowDurationDays != nil {
		metadata["borrowDurationDays"] = *item.BorrowDurationDays
	}
	return metadata
}

func failureReason(err error) string {
	var payErr *payments.Error
	if errors.As(err, &payErr) {
		if payErr.Reason != "" {
			return payErr.Reason
		}
		return string(payErr.Kind)
	}
	return err.Error()
}

func rejectionReason(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return strings.ToLower(string(typed.Code()))
	}
	return "error"
}

func errEmptyCart() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty").
		WithDetails(map[string]any{"reason": "empty_cart"})
}
