// Package lifecycle owns the two state machines that coexist on every
// order: fulfillment progress and payment settlement. All status
// mutations go through here before anything is persisted; handlers
// never flip status fields directly.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/abm5616/farmcloud/models"
)

// InvalidTransitionError names the rejected from/to pair so the
// operator can pick a valid next state.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// InconsistentPaymentError reports a payment status that contradicts
// the recorded amount paid.
type InconsistentPaymentError struct {
	Status     models.PaymentStatus
	AmountPaid models.Money
	Total      models.Money
}

func (e *InconsistentPaymentError) Error() string {
	return fmt.Sprintf("payment status %s inconsistent with amount paid %s of total %s",
		e.Status, e.AmountPaid, e.Total)
}

// fulfillmentNext lists the forward edges of the fulfillment chain.
// CANCELLED is additionally reachable from every non-terminal state.
var fulfillmentNext = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:        {models.OrderConfirmed},
	models.OrderConfirmed:      {models.OrderPreparing},
	models.OrderPreparing:      {models.OrderReady, models.OrderOutForDelivery},
	models.OrderReady:          {models.OrderOutForDelivery, models.OrderDelivered, models.OrderCompleted},
	models.OrderOutForDelivery: {models.OrderDelivered, models.OrderCompleted},
	models.OrderDelivered:      {},
	models.OrderCompleted:      {},
	models.OrderCancelled:      {},
}

var fulfillmentTerminal = map[models.OrderStatus]bool{
	models.OrderDelivered: true,
	models.OrderCompleted: true,
	models.OrderCancelled: true,
}

var paymentNext = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentUnpaid:   {models.PaymentPartial, models.PaymentPaid},
	models.PaymentPartial:  {models.PaymentPaid},
	models.PaymentPaid:     {models.PaymentRefunded},
	models.PaymentRefunded: {},
}

// IsTerminal reports whether the fulfillment status accepts no further
// transitions.
func IsTerminal(s models.OrderStatus) bool { return fulfillmentTerminal[s] }

// FulfillmentTargets returns the valid next fulfillment statuses from
// the given state, including CANCELLED where reachable.
func FulfillmentTargets(from models.OrderStatus) []models.OrderStatus {
	next, ok := fulfillmentNext[from]
	if !ok {
		return nil
	}
	out := make([]models.OrderStatus, 0, len(next)+1)
	out = append(out, next...)
	if !fulfillmentTerminal[from] {
		out = append(out, models.OrderCancelled)
	}
	return out
}

// PaymentTargets returns the valid next payment statuses.
func PaymentTargets(from models.PaymentStatus) []models.PaymentStatus {
	return paymentNext[from]
}

func canAdvance(from, to models.OrderStatus) bool {
	if to == models.OrderCancelled {
		return !fulfillmentTerminal[from]
	}
	for _, next := range fulfillmentNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ApplyStatus validates and applies a fulfillment transition in place.
// Re-applying the current status is an idempotent no-op so retried
// updates never fail; changed reports whether anything moved. Entering
// CONFIRMED or a completion state stamps its timestamp exactly once.
func ApplyStatus(order *models.Order, to models.OrderStatus, now time.Time) (changed bool, err error) {
	if _, known := fulfillmentNext[to]; !known {
		return false, models.NewValidationError("unknown order status %q", to)
	}
	if order.Status == to {
		return false, nil
	}
	if !canAdvance(order.Status, to) {
		return false, &InvalidTransitionError{From: string(order.Status), To: string(to)}
	}

	order.Status = to
	switch to {
	case models.OrderConfirmed:
		if order.ConfirmedAt == nil {
			t := now
			order.ConfirmedAt = &t
		}
	case models.OrderDelivered, models.OrderCompleted:
		if order.CompletedAt == nil {
			t := now
			order.CompletedAt = &t
		}
	}
	return true, nil
}

func canAdvancePayment(from, to models.PaymentStatus) bool {
	for _, next := range paymentNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ApplyPayment validates and applies a payment transition together
// with the amount paid the caller supplies. The status and the amount
// are checked against each other: PAID requires amount_paid >= total,
// UNPAID requires amount_paid == 0. Re-applying the current status
// only revalidates and records the amount.
func ApplyPayment(order *models.Order, to models.PaymentStatus, amountPaid models.Money) (changed bool, err error) {
	if _, known := paymentNext[to]; !known {
		return false, models.NewValidationError("unknown payment status %q", to)
	}
	if amountPaid.IsNegative() {
		return false, models.NewValidationError("amount paid cannot be negative")
	}
	if to != order.PaymentStatus && !canAdvancePayment(order.PaymentStatus, to) {
		return false, &InvalidTransitionError{From: string(order.PaymentStatus), To: string(to)}
	}

	switch to {
	case models.PaymentPaid:
		if amountPaid.LessThan(order.TotalAmount) {
			return false, &InconsistentPaymentError{Status: to, AmountPaid: amountPaid, Total: order.TotalAmount}
		}
	case models.PaymentUnpaid:
		if !amountPaid.IsZero() {
			return false, &InconsistentPaymentError{Status: to, AmountPaid: amountPaid, Total: order.TotalAmount}
		}
	}

	changed = order.PaymentStatus != to || order.AmountPaid.Cmp(amountPaid) != 0
	order.PaymentStatus = to
	order.AmountPaid = amountPaid
	order.ComputeBalanceDue()
	return changed, nil
}
