package enums

import "slices"

// EventType names a storefront analytics event.
type EventType string

const (
	EventUserSignup     EventType = "user_signup"
	EventUserLogin      EventType = "user_login"
	EventBookView       EventType = "book_view"
	EventBookPurchase   EventType = "book_purchase"
	EventBookBorrow     EventType = "book_borrow"
	EventCartAdd        EventType = "cart_add"
	EventCartRemove     EventType = "cart_remove"
	EventPaymentAttempt EventType = "payment_attempt"
	EventPaymentSuccess EventType = "payment_success"
	EventPaymentFailed  EventType = "payment_failed"
	EventSearchQuery    EventType = "search_query"
	EventPageView       EventType = "page_view"
)

var validEventTypes = []EventType{
	EventUserSignup,
	EventUserLogin,
	EventBookView,
	EventBookPurchase,
	EventBookBorrow,
	EventCartAdd,
	EventCartRemove,
	EventPaymentAttempt,
	EventPaymentSuccess,
	EventPaymentFailed,
	EventSearchQuery,
	EventPageView,
}

func (v EventType) String() string { return string(v) }

func (v EventType) IsValid() bool { return slices.Contains(validEventTypes, v) }

func ParseEventType(value string) (EventType, error) {
	return parseEnum(validEventTypes, "event type", value)
}
