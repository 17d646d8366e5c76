package models

import (
	"errors"
	"fmt"
	"time"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderPending        OrderStatus = "PENDING"
	OrderConfirmed      OrderStatus = "CONFIRMED"
	OrderPreparing      OrderStatus = "PREPARING"
	OrderReady          OrderStatus = "READY"
	OrderOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderDelivered      OrderStatus = "DELIVERED"
	OrderCompleted      OrderStatus = "COMPLETED"
	OrderCancelled      OrderStatus = "CANCELLED"
)

// PaymentStatus is the financial settlement state of an order. It
// advances independently of the fulfillment status.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPartial  PaymentStatus = "PARTIAL"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

type DeliveryMethod string

const (
	HomeDelivery DeliveryMethod = "HOME_DELIVERY"
	FarmPickup   DeliveryMethod = "FARM_PICKUP"
)

type PaymentMethod string

const (
	PayCash         PaymentMethod = "CASH"
	PayCard         PaymentMethod = "CARD"
	PayBankTransfer PaymentMethod = "BANK_TRANSFER"
	PayOnline       PaymentMethod = "ONLINE"
)

// ItemKind distinguishes the catalog entity a line item points at.
type ItemKind string

const (
	KindAnimal ItemKind = "animal"
	KindOffer  ItemKind = "offer"
)

// ValidationError reports operator-correctable input problems (empty
// cart, missing delivery fields, over-large discounts).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ErrOrderNotFound is returned by the repository when no order matches.
var ErrOrderNotFound = errors.New("order not found")

// OrderLineItem is one priced, quantified reference to an animal or an
// offer. Name and unit price are captured when the item is added and
// never re-read from the catalog afterwards.
type OrderLineItem struct {
	ID         int64  `json:"id,omitempty"`
	ItemName   string `json:"item_name"`
	Quantity   int64  `json:"quantity"`
	UnitPrice  Money  `json:"unit_price"`
	TotalPrice Money  `json:"total_price"`
	AnimalID   *int64 `json:"animal,omitempty"`
	OfferID    *int64 `json:"offer,omitempty"`
}

// Kind reports which catalog entity the item references.
func (li OrderLineItem) Kind() ItemKind {
	if li.AnimalID != nil {
		return KindAnimal
	}
	return KindOffer
}

// RefID returns the referenced animal or offer ID.
func (li OrderLineItem) RefID() int64 {
	if li.AnimalID != nil {
		return *li.AnimalID
	}
	if li.OfferID != nil {
		return *li.OfferID
	}
	return 0
}

// Validate checks the line item payload contract: exactly one of
// animal/offer, a captured name and a positive quantity.
func (li OrderLineItem) Validate() error {
	if (li.AnimalID == nil) == (li.OfferID == nil) {
		return NewValidationError("line item %q must reference exactly one of animal or offer", li.ItemName)
	}
	if li.ItemName == "" {
		return NewValidationError("line item is missing item_name")
	}
	if li.Quantity < 1 {
		return NewValidationError("line item %q quantity must be at least 1", li.ItemName)
	}
	if li.UnitPrice.IsNegative() {
		return NewValidationError("line item %q unit price cannot be negative", li.ItemName)
	}
	return nil
}

// OrderDraft is the pre-submission shape of an order: everything but
// identity, timestamps and status. Totals are computed, never taken
// from the client.
type OrderDraft struct {
	CustomerID       int64           `json:"customer"`
	Items            []OrderLineItem `json:"items"`
	DeliveryMethod   DeliveryMethod  `json:"delivery_method"`
	DeliveryAddress  string          `json:"delivery_address"`
	DeliveryDate     string          `json:"delivery_date,omitempty"`
	DeliveryTimeSlot string          `json:"delivery_time_slot,omitempty"`
	DeliveryNotes    string          `json:"delivery_notes,omitempty"`
	CustomerNotes    string          `json:"customer_notes,omitempty"`
	InternalNotes    string          `json:"internal_notes,omitempty"`
	PaymentMethod    PaymentMethod   `json:"payment_method,omitempty"`
	Subtotal         Money           `json:"subtotal"`
	DeliveryFee      Money           `json:"delivery_fee"`
	DiscountAmount   Money           `json:"discount_amount"`
	TotalAmount      Money           `json:"total_amount"`
}

// Order is a persisted order. Line items are immutable once the order
// has left PENDING; corrections happen through new orders, not silent
// edits to history.
type Order struct {
	ID               int64           `json:"id"`
	OrderNumber      string          `json:"order_number"`
	CustomerID       int64           `json:"customer"`
	CustomerName     string          `json:"customer_name,omitempty"`
	Items            []OrderLineItem `json:"items"`
	Status           OrderStatus     `json:"status"`
	DeliveryMethod   DeliveryMethod  `json:"delivery_method"`
	DeliveryAddress  string          `json:"delivery_address"`
	DeliveryDate     string          `json:"delivery_date,omitempty"`
	DeliveryTimeSlot string          `json:"delivery_time_slot,omitempty"`
	DeliveryNotes    string          `json:"delivery_notes,omitempty"`
	CustomerNotes    string          `json:"customer_notes,omitempty"`
	InternalNotes    string          `json:"internal_notes,omitempty"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	PaymentMethod    PaymentMethod   `json:"payment_method,omitempty"`
	Subtotal         Money           `json:"subtotal"`
	DeliveryFee      Money           `json:"delivery_fee"`
	DiscountAmount   Money           `json:"discount_amount"`
	TotalAmount      Money           `json:"total_amount"`
	AmountPaid       Money           `json:"amount_paid"`
	BalanceDue       Money           `json:"balance_due"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	ConfirmedAt      *time.Time      `json:"confirmed_at,omitempty"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
}

// ComputeBalanceDue refreshes the derived remaining balance, clamped
// at zero for overpayments.
func (o *Order) ComputeBalanceDue() {
	due := o.TotalAmount.Sub(o.AmountPaid)
	if due.IsNegative() {
		due = ZeroMoney()
	}
	o.BalanceDue = due
}

// OrderUpdate is a partial update; nil fields are left untouched.
// Changing items, fee or discount forces a totals recomputation.
type OrderUpdate struct {
	Items            *[]OrderLineItem `json:"items,omitempty"`
	DeliveryMethod   *DeliveryMethod  `json:"delivery_method,omitempty"`
	DeliveryAddress  *string          `json:"delivery_address,omitempty"`
	DeliveryDate     *string          `json:"delivery_date,omitempty"`
	DeliveryTimeSlot *string          `json:"delivery_time_slot,omitempty"`
	DeliveryNotes    *string          `json:"delivery_notes,omitempty"`
	CustomerNotes    *string          `json:"customer_notes,omitempty"`
	InternalNotes    *string          `json:"internal_notes,omitempty"`
	PaymentMethod    *PaymentMethod   `json:"payment_method,omitempty"`
	DeliveryFee      *Money           `json:"delivery_fee,omitempty"`
	DiscountAmount   *Money           `json:"discount_amount,omitempty"`
}

// OrderFilter narrows List results.
type OrderFilter struct {
	Status         OrderStatus
	PaymentStatus  PaymentStatus
	DeliveryMethod DeliveryMethod
	CustomerID     int64
}

// OrderEvent is the broker payload published after order mutations.
type OrderEvent struct {
	OrderID       int64         `json:"order_id"`
	OrderNumber   string        `json:"order_number"`
	Type          string        `json:"type"` // created, status_updated, payment_updated, payment_check
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Total         Money         `json:"total"`
	Occurred      time.Time     `json:"occurred"`
}
