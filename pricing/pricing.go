// Package pricing turns a set of line items plus delivery fee and
// discount into order totals. It is pure: no I/O, no shared state, so
// the persisted totals on an order are always a cache of Calculate,
// never a second source of truth.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/abm5616/farmcloud/models"
)

// Totals is the result of a pricing run.
type Totals struct {
	Subtotal    models.Money `json:"subtotal"`
	DeliveryFee models.Money `json:"delivery_fee"`
	Discount    models.Money `json:"discount_amount"`
	Total       models.Money `json:"total_amount"`
}

// Calculate sums unit price times quantity over all line items,
// rounding half-up once at the final summation, then applies the
// delivery fee and discount. A discount larger than subtotal plus fee
// is rejected rather than clamped, so a stored total can never go
// negative.
func Calculate(items []models.OrderLineItem, deliveryFee, discount models.Money) (Totals, error) {
	if deliveryFee.IsNegative() {
		return Totals{}, models.NewValidationError("delivery fee cannot be negative")
	}
	if discount.IsNegative() {
		return Totals{}, models.NewValidationError("discount cannot be negative")
	}

	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.UnitPrice.Decimal().Mul(decimal.NewFromInt(item.Quantity)))
	}
	subtotal := models.NewMoney(sum)

	gross := subtotal.Add(deliveryFee)
	if discount.GreaterThan(gross) {
		return Totals{}, models.NewValidationError(
			"discount %s exceeds subtotal plus delivery fee %s", discount, gross)
	}

	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		Discount:    discount,
		Total:       gross.Sub(discount),
	}, nil
}

// Apply recomputes and stores totals on a draft.
func Apply(draft *models.OrderDraft) error {
	totals, err := Calculate(draft.Items, draft.DeliveryFee, draft.DiscountAmount)
	if err != nil {
		return err
	}
	draft.Subtotal = totals.Subtotal
	draft.DeliveryFee = totals.DeliveryFee
	draft.DiscountAmount = totals.Discount
	draft.TotalAmount = totals.Total
	for i := range draft.Items {
		draft.Items[i].TotalPrice = draft.Items[i].UnitPrice.MulInt(draft.Items[i].Quantity)
	}
	return nil
}
