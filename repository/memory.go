package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/abm5616/farmcloud/models"
)

// Memory is an in-process Gateway used by tests and local development.
// It follows the same contracts as the MySQL implementation, including
// per-day order-number sequencing.
type Memory struct {
	mu     sync.Mutex
	orders map[int64]*models.Order
	nextID int64

	// Now is injectable so tests can pin order-number dates.
	Now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		orders: make(map[int64]*models.Order),
		nextID: 1,
		Now:    time.Now,
	}
}

func cloneOrder(o *models.Order) *models.Order {
	out := *o
	out.Items = make([]models.OrderLineItem, len(o.Items))
	copy(out.Items, o.Items)
	if o.ConfirmedAt != nil {
		t := *o.ConfirmedAt
		out.ConfirmedAt = &t
	}
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}

func (m *Memory) nextOrderNumber(day time.Time) string {
	prefix := orderNumberPrefix + "-" + day.Format("20060102") + "-"
	max := 0
	for _, o := range m.orders {
		if strings.HasPrefix(o.OrderNumber, prefix) {
			if seq := NumberSequence(o.OrderNumber); seq > max {
				max = seq
			}
		}
	}
	return FormatOrderNumber(day, max+1)
}

func (m *Memory) Create(_ context.Context, d models.OrderDraft) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := validateDraft(&d); err != nil {
		return nil, err
	}

	now := m.Now()
	order := &models.Order{
		ID:               m.nextID,
		OrderNumber:      m.nextOrderNumber(now),
		CustomerID:       d.CustomerID,
		Items:            mergeItems(d.Items),
		Status:           models.OrderPending,
		DeliveryMethod:   d.DeliveryMethod,
		DeliveryAddress:  d.DeliveryAddress,
		DeliveryDate:     d.DeliveryDate,
		DeliveryTimeSlot: d.DeliveryTimeSlot,
		DeliveryNotes:    d.DeliveryNotes,
		CustomerNotes:    d.CustomerNotes,
		InternalNotes:    d.InternalNotes,
		PaymentStatus:    models.PaymentUnpaid,
		PaymentMethod:    d.PaymentMethod,
		Subtotal:         d.Subtotal,
		DeliveryFee:      d.DeliveryFee,
		DiscountAmount:   d.DiscountAmount,
		TotalAmount:      d.TotalAmount,
		AmountPaid:       models.ZeroMoney(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	for i := range order.Items {
		order.Items[i].ID = int64(i + 1)
		order.Items[i].TotalPrice = order.Items[i].UnitPrice.MulInt(order.Items[i].Quantity)
	}
	order.ComputeBalanceDue()

	m.nextID++
	m.orders[order.ID] = order
	return cloneOrder(order), nil
}

func (m *Memory) Get(_ context.Context, id int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (m *Memory) List(_ context.Context, filter models.OrderFilter) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Order, 0, len(m.orders))
	for _, o := range m.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && o.PaymentStatus != filter.PaymentStatus {
			continue
		}
		if filter.DeliveryMethod != "" && o.DeliveryMethod != filter.DeliveryMethod {
			continue
		}
		if filter.CustomerID != 0 && o.CustomerID != filter.CustomerID {
			continue
		}
		out = append(out, *cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) Update(_ context.Context, id int64, patch models.OrderUpdate) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	updated := cloneOrder(stored)
	if err := applyUpdate(updated, patch); err != nil {
		return nil, err
	}
	updated.UpdatedAt = m.Now()
	m.orders[id] = updated
	return cloneOrder(updated), nil
}

func (m *Memory) UpdateStatus(_ context.Context, id int64, change StatusChange) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	updated := cloneOrder(stored)
	changed, err := applyStatusChange(updated, change, m.Now())
	if err != nil {
		return nil, err
	}
	if changed {
		updated.UpdatedAt = m.Now()
		m.orders[id] = updated
	}
	return cloneOrder(updated), nil
}

func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[id]; !ok {
		return models.ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}
