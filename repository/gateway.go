// Package repository is the persistence boundary for orders. The
// Gateway owns order-number generation and runs every status change
// through the lifecycle package before anything is stored.
package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abm5616/farmcloud/lifecycle"
	"github.com/abm5616/farmcloud/models"
	"github.com/abm5616/farmcloud/pricing"
)

// StatusChange is the dedicated partial status-update contract: either
// a fulfillment status, or a payment status with its amount paid.
// Never the full order body.
type StatusChange struct {
	Status        *models.OrderStatus  `json:"status,omitempty"`
	PaymentStatus *models.PaymentStatus `json:"payment_status,omitempty"`
	AmountPaid    *models.Money         `json:"amount_paid,omitempty"`
}

// Gateway exposes order persistence. Create assigns the order number
// and timestamps; Update recomputes totals whenever line items, fee or
// discount change.
type Gateway interface {
	Create(ctx context.Context, d models.OrderDraft) (*models.Order, error)
	Get(ctx context.Context, id int64) (*models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	Update(ctx context.Context, id int64, patch models.OrderUpdate) (*models.Order, error)
	UpdateStatus(ctx context.Context, id int64, change StatusChange) (*models.Order, error)
	Delete(ctx context.Context, id int64) error
}

const orderNumberPrefix = "ORD"

// FormatOrderNumber renders ORD-YYYYMMDD-NNNN.
func FormatOrderNumber(day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", orderNumberPrefix, day.Format("20060102"), seq)
}

// NumberSequence extracts the per-day sequence from an order number,
// returning 0 for anything that does not match the format.
func NumberSequence(number string) int {
	parts := strings.Split(number, "-")
	if len(parts) != 3 {
		return 0
	}
	seq, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0
	}
	return seq
}

// validateDraft enforces the create contract shared by all gateway
// implementations: at least one item, a customer, and an address when
// delivering. Totals are then recomputed from the items so client
// figures are never trusted.
func validateDraft(d *models.OrderDraft) error {
	if len(d.Items) == 0 {
		return models.NewValidationError("order must contain at least one item")
	}
	if d.CustomerID == 0 {
		return models.NewValidationError("order is missing a customer")
	}
	if d.DeliveryMethod == "" {
		d.DeliveryMethod = models.HomeDelivery
	}
	if d.DeliveryMethod == models.HomeDelivery && strings.TrimSpace(d.DeliveryAddress) == "" {
		return models.NewValidationError("home delivery requires a delivery address")
	}
	if d.DeliveryMethod == models.FarmPickup {
		d.DeliveryFee = models.ZeroMoney()
	}
	for _, item := range d.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return pricing.Apply(d)
}

// mergeItems collapses duplicate (kind, id) references so the stored
// line-item sequence never carries duplicates.
func mergeItems(items []models.OrderLineItem) []models.OrderLineItem {
	out := make([]models.OrderLineItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		key := string(item.Kind()) + ":" + strconv.FormatInt(item.RefID(), 10)
		if at, ok := index[key]; ok {
			out[at].Quantity += item.Quantity
			continue
		}
		index[key] = len(out)
		out = append(out, item)
	}
	return out
}

// applyUpdate mutates a loaded order with a partial update and
// recomputes totals when any pricing input changed. Line items are
// immutable once the order has left PENDING.
func applyUpdate(order *models.Order, patch models.OrderUpdate) error {
	reprice := false

	if patch.Items != nil {
		if order.Status != models.OrderPending {
			return models.NewValidationError(
				"line items are immutable once the order is %s; create a new order or an explicit adjustment", order.Status)
		}
		items := mergeItems(*patch.Items)
		if len(items) == 0 {
			return models.NewValidationError("order must contain at least one item")
		}
		for _, item := range items {
			if err := item.Validate(); err != nil {
				return err
			}
		}
		order.Items = items
		reprice = true
	}
	if patch.DeliveryMethod != nil {
		order.DeliveryMethod = *patch.DeliveryMethod
		if order.DeliveryMethod == models.FarmPickup {
			order.DeliveryFee = models.ZeroMoney()
			reprice = true
		}
	}
	if patch.DeliveryAddress != nil {
		order.DeliveryAddress = *patch.DeliveryAddress
	}
	if patch.DeliveryDate != nil {
		order.DeliveryDate = *patch.DeliveryDate
	}
	if patch.DeliveryTimeSlot != nil {
		order.DeliveryTimeSlot = *patch.DeliveryTimeSlot
	}
	if patch.DeliveryNotes != nil {
		order.DeliveryNotes = *patch.DeliveryNotes
	}
	if patch.CustomerNotes != nil {
		order.CustomerNotes = *patch.CustomerNotes
	}
	if patch.InternalNotes != nil {
		order.InternalNotes = *patch.InternalNotes
	}
	if patch.PaymentMethod != nil {
		order.PaymentMethod = *patch.PaymentMethod
	}
	if patch.DeliveryFee != nil {
		if order.DeliveryMethod == models.FarmPickup && !patch.DeliveryFee.IsZero() {
			return models.NewValidationError("farm pickup orders cannot carry a delivery fee")
		}
		order.DeliveryFee = *patch.DeliveryFee
		reprice = true
	}
	if patch.DiscountAmount != nil {
		order.DiscountAmount = *patch.DiscountAmount
		reprice = true
	}

	if order.DeliveryMethod == models.HomeDelivery && strings.TrimSpace(order.DeliveryAddress) == "" {
		return models.NewValidationError("home delivery requires a delivery address")
	}

	if reprice {
		totals, err := pricing.Calculate(order.Items, order.DeliveryFee, order.DiscountAmount)
		if err != nil {
			return err
		}
		order.Subtotal = totals.Subtotal
		order.DeliveryFee = totals.DeliveryFee
		order.DiscountAmount = totals.Discount
		order.TotalAmount = totals.Total
		for i := range order.Items {
			order.Items[i].TotalPrice = order.Items[i].UnitPrice.MulInt(order.Items[i].Quantity)
		}
	}
	order.ComputeBalanceDue()
	return nil
}

// applyStatusChange runs a StatusChange through the lifecycle rules,
// mutating the order in place. Exactly one of the two machines may
// advance per call.
func applyStatusChange(order *models.Order, change StatusChange, now time.Time) (changed bool, err error) {
	switch {
	case change.Status != nil && change.PaymentStatus != nil:
		return false, models.NewValidationError("provide either status or payment_status, not both")
	case change.Status != nil:
		return lifecycle.ApplyStatus(order, *change.Status, now)
	case change.PaymentStatus != nil:
		amount := order.AmountPaid
		if change.AmountPaid != nil {
			amount = *change.AmountPaid
		}
		return lifecycle.ApplyPayment(order, *change.PaymentStatus, amount)
	default:
		return false, models.NewValidationError("status update requires status or payment_status")
	}
}
