// Package draft maintains the working state of an order before
// submission: the line-item set, header fields and running totals. A
// Builder is owned by a single authoring session and holds no hidden
// package-level state.
package draft

import (
	"github.com/abm5616/farmcloud/models"
	"github.com/abm5616/farmcloud/pricing"
)

// Builder accumulates line items and header fields for a new order.
// The zero value is not usable; construct with NewBuilder.
type Builder struct {
	defaultFee models.Money
	draft      models.OrderDraft

	// autoFilled tracks whether the current delivery address came from
	// customer selection rather than the operator. Auto-fill never
	// overwrites a hand-edited address.
	autoFilled bool
}

// NewBuilder starts an empty draft with home delivery and the
// configured default delivery fee.
func NewBuilder(defaultFee models.Money) *Builder {
	return &Builder{
		defaultFee: defaultFee,
		draft: models.OrderDraft{
			DeliveryMethod: models.HomeDelivery,
			DeliveryFee:    defaultFee,
			DiscountAmount: models.ZeroMoney(),
			PaymentMethod:  models.PayCash,
		},
	}
}

// FromDraft rebuilds a session from a submitted draft payload, merging
// any duplicate (kind, id) entries so the no-duplicates invariant
// holds regardless of what the client sent. An omitted delivery fee
// falls back to the configured default.
func FromDraft(defaultFee models.Money, d models.OrderDraft) (*Builder, error) {
	b := NewBuilder(defaultFee)
	b.draft.CustomerID = d.CustomerID
	b.draft.DeliveryAddress = d.DeliveryAddress
	b.draft.DeliveryDate = d.DeliveryDate
	b.draft.DeliveryTimeSlot = d.DeliveryTimeSlot
	b.draft.DeliveryNotes = d.DeliveryNotes
	b.draft.CustomerNotes = d.CustomerNotes
	b.draft.InternalNotes = d.InternalNotes
	if d.PaymentMethod != "" {
		b.draft.PaymentMethod = d.PaymentMethod
	}
	if d.DeliveryMethod != "" {
		b.SetDeliveryMethod(d.DeliveryMethod)
	}
	if b.draft.DeliveryMethod != models.FarmPickup && !d.DeliveryFee.IsZero() {
		b.draft.DeliveryFee = d.DeliveryFee
	}
	b.draft.DiscountAmount = d.DiscountAmount

	for _, item := range d.Items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
		b.addQuantity(item.Kind(), item.RefID(), item.ItemName, item.UnitPrice, item.Quantity)
	}
	return b, nil
}

// AddItem appends a line item with quantity 1, or bumps the quantity
// when a line with the same (kind, id) already exists.
func (b *Builder) AddItem(kind models.ItemKind, id int64, name string, unitPrice models.Money) {
	b.addQuantity(kind, id, name, unitPrice, 1)
}

func (b *Builder) addQuantity(kind models.ItemKind, id int64, name string, unitPrice models.Money, qty int64) {
	if idx := b.find(kind, id); idx >= 0 {
		b.draft.Items[idx].Quantity += qty
		return
	}
	item := models.OrderLineItem{
		ItemName:  name,
		Quantity:  qty,
		UnitPrice: unitPrice,
	}
	ref := id
	switch kind {
	case models.KindAnimal:
		item.AnimalID = &ref
	default:
		item.OfferID = &ref
	}
	b.draft.Items = append(b.draft.Items, item)
}

// SetQuantity sets the quantity of the matching line item. A quantity
// of zero or less removes the line, same as RemoveItem.
func (b *Builder) SetQuantity(kind models.ItemKind, id int64, quantity int64) {
	if quantity <= 0 {
		b.RemoveItem(kind, id)
		return
	}
	if idx := b.find(kind, id); idx >= 0 {
		b.draft.Items[idx].Quantity = quantity
	}
}

// RemoveItem removes the matching line item; removing an absent item
// is a no-op.
func (b *Builder) RemoveItem(kind models.ItemKind, id int64) {
	idx := b.find(kind, id)
	if idx < 0 {
		return
	}
	b.draft.Items = append(b.draft.Items[:idx], b.draft.Items[idx+1:]...)
}

func (b *Builder) find(kind models.ItemKind, id int64) int {
	for i, item := range b.draft.Items {
		if item.Kind() == kind && item.RefID() == id {
			return i
		}
	}
	return -1
}

// SetCustomer selects the customer and auto-fills the delivery address
// when the field is still empty or was itself auto-filled. A
// hand-edited address is left alone.
func (b *Builder) SetCustomer(c models.Customer) {
	b.draft.CustomerID = c.ID
	if addr := c.DeliveryAddress(); addr != "" {
		if b.draft.DeliveryAddress == "" || b.autoFilled {
			b.draft.DeliveryAddress = addr
			b.autoFilled = true
		}
	}
}

// SetDeliveryAddress records a manual address edit, which pins the
// value against future auto-fills.
func (b *Builder) SetDeliveryAddress(addr string) {
	b.draft.DeliveryAddress = addr
	b.autoFilled = false
}

// SetDeliveryMethod switches the delivery method. Farm pickup forces
// the fee to zero; switching back to home delivery restores the
// default fee.
func (b *Builder) SetDeliveryMethod(m models.DeliveryMethod) {
	b.draft.DeliveryMethod = m
	if m == models.FarmPickup {
		b.draft.DeliveryFee = models.ZeroMoney()
	} else {
		b.draft.DeliveryFee = b.defaultFee
	}
}

// SetDeliveryFee overrides the fee; ignored while farm pickup is
// selected, where the fee is pinned to zero.
func (b *Builder) SetDeliveryFee(fee models.Money) {
	if b.draft.DeliveryMethod == models.FarmPickup {
		return
	}
	b.draft.DeliveryFee = fee
}

func (b *Builder) SetDiscount(d models.Money)          { b.draft.DiscountAmount = d }
func (b *Builder) SetDeliveryDate(date string)         { b.draft.DeliveryDate = date }
func (b *Builder) SetDeliveryTimeSlot(slot string)     { b.draft.DeliveryTimeSlot = slot }
func (b *Builder) SetPaymentMethod(m models.PaymentMethod) { b.draft.PaymentMethod = m }
func (b *Builder) SetDeliveryNotes(notes string)       { b.draft.DeliveryNotes = notes }
func (b *Builder) SetCustomerNotes(notes string)       { b.draft.CustomerNotes = notes }
func (b *Builder) SetInternalNotes(notes string)       { b.draft.InternalNotes = notes }

// Items returns a copy of the current line-item sequence.
func (b *Builder) Items() []models.OrderLineItem {
	out := make([]models.OrderLineItem, len(b.draft.Items))
	copy(out, b.draft.Items)
	return out
}

// Totals runs the pricing calculator over the current draft state.
func (b *Builder) Totals() (pricing.Totals, error) {
	return pricing.Calculate(b.draft.Items, b.draft.DeliveryFee, b.draft.DiscountAmount)
}

// Build validates the draft and returns it with computed totals. The
// builder remains usable so the operator can correct and retry after a
// validation failure.
func (b *Builder) Build() (models.OrderDraft, error) {
	if len(b.draft.Items) == 0 {
		return models.OrderDraft{}, models.NewValidationError("order must contain at least one item")
	}
	if b.draft.CustomerID == 0 {
		return models.OrderDraft{}, models.NewValidationError("order is missing a customer")
	}
	if b.draft.DeliveryMethod == models.HomeDelivery && b.draft.DeliveryAddress == "" {
		return models.OrderDraft{}, models.NewValidationError("home delivery requires a delivery address")
	}
	for _, item := range b.draft.Items {
		if err := item.Validate(); err != nil {
			return models.OrderDraft{}, err
		}
	}

	out := b.draft
	out.Items = b.Items()
	if err := pricing.Apply(&out); err != nil {
		return models.OrderDraft{}, err
	}
	return out, nil
}
