package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abm5616/farmcloud/lifecycle"
	"github.com/abm5616/farmcloud/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testDraft() models.OrderDraft {
	animal := int64(3)
	return models.OrderDraft{
		CustomerID:      7,
		DeliveryMethod:  models.HomeDelivery,
		DeliveryAddress: "Villa 12, Al Wasl Road, Dubai",
		DeliveryFee:     models.MustMoney("50.00"),
		DiscountAmount:  models.ZeroMoney(),
		PaymentMethod:   models.PayCash,
		Items: []models.OrderLineItem{
			{ItemName: "G-001 - Boer", Quantity: 1, UnitPrice: models.MustMoney("1200.00"), AnimalID: &animal},
		},
	}
}

func TestMemoryCreateAssignsNumberAndTotals(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	store.Now = fixedClock(time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC))

	d := testDraft()
	// Client-sent totals are garbage on purpose; they must be ignored.
	d.Subtotal = models.MustMoney("1.00")
	d.TotalAmount = models.MustMoney("2.00")

	order, err := store.Create(context.Background(), d)
	require.NoError(t, err)
	require.Equal(t, "ORD-20260829-0001", order.OrderNumber)
	require.Equal(t, models.OrderPending, order.Status)
	require.Equal(t, models.PaymentUnpaid, order.PaymentStatus)
	require.Equal(t, "1200.00", order.Subtotal.String())
	require.Equal(t, "1250.00", order.TotalAmount.String())
	require.Equal(t, "1250.00", order.BalanceDue.String())
	require.Nil(t, order.ConfirmedAt)
	require.Nil(t, order.CompletedAt)

	second, err := store.Create(context.Background(), testDraft())
	require.NoError(t, err)
	require.Equal(t, "ORD-20260829-0002", second.OrderNumber)
}

func TestMemorySequenceResetsPerDay(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	store.Now = fixedClock(time.Date(2026, 8, 29, 23, 0, 0, 0, time.UTC))
	_, err := store.Create(context.Background(), testDraft())
	require.NoError(t, err)

	store.Now = fixedClock(time.Date(2026, 8, 30, 1, 0, 0, 0, time.UTC))
	order, err := store.Create(context.Background(), testDraft())
	require.NoError(t, err)
	require.Equal(t, "ORD-20260830-0001", order.OrderNumber)
}

func TestMemoryCreateValidation(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	var validationErr *models.ValidationError

	empty := testDraft()
	empty.Items = nil
	_, err := store.Create(context.Background(), empty)
	require.ErrorAs(t, err, &validationErr)

	noCustomer := testDraft()
	noCustomer.CustomerID = 0
	_, err = store.Create(context.Background(), noCustomer)
	require.ErrorAs(t, err, &validationErr)

	noAddress := testDraft()
	noAddress.DeliveryAddress = "  "
	_, err = store.Create(context.Background(), noAddress)
	require.ErrorAs(t, err, &validationErr)
}

func TestMemoryCreateMergesDuplicateItems(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	animal := int64(3)
	d := testDraft()
	d.Items = append(d.Items, models.OrderLineItem{
		ItemName: "G-001 - Boer", Quantity: 2, UnitPrice: models.MustMoney("1200.00"), AnimalID: &animal,
	})

	order, err := store.Create(context.Background(), d)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	require.Equal(t, int64(3), order.Items[0].Quantity)
	require.Equal(t, "3600.00", order.Items[0].TotalPrice.String())
}

func TestMemoryGetAndDelete(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	order, err := store.Create(context.Background(), testDraft())
	require.NoError(t, err)

	got, err := store.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, order.OrderNumber, got.OrderNumber)

	require.NoError(t, store.Delete(context.Background(), order.ID))
	_, err = store.Get(context.Background(), order.ID)
	require.ErrorIs(t, err, models.ErrOrderNotFound)
	require.ErrorIs(t, store.Delete(context.Background(), order.ID), models.ErrOrderNotFound)
}

func TestMemoryListFilters(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := context.Background()

	first, err := store.Create(ctx, testDraft())
	require.NoError(t, err)

	pickup := testDraft()
	pickup.CustomerID = 8
	pickup.DeliveryMethod = models.FarmPickup
	_, err = store.Create(ctx, pickup)
	require.NoError(t, err)

	confirmed := models.OrderConfirmed
	_, err = store.UpdateStatus(ctx, first.ID, StatusChange{Status: &confirmed})
	require.NoError(t, err)

	all, err := store.List(ctx, models.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	byStatus, err := store.List(ctx, models.OrderFilter{Status: models.OrderConfirmed})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	require.Equal(t, first.ID, byStatus[0].ID)

	byMethod, err := store.List(ctx, models.OrderFilter{DeliveryMethod: models.FarmPickup})
	require.NoError(t, err)
	require.Len(t, byMethod, 1)

	byCustomer, err := store.List(ctx, models.OrderFilter{CustomerID: 8})
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)
}

func TestMemoryUpdateRecomputesTotals(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := context.Background()
	order, err := store.Create(ctx, testDraft())
	require.NoError(t, err)

	discount := models.MustMoney("100.00")
	updated, err := store.Update(ctx, order.ID, models.OrderUpdate{DiscountAmount: &discount})
	require.NoError(t, err)
	require.Equal(t, "1150.00", updated.TotalAmount.String())
	require.Equal(t, "1200.00", updated.Subtotal.String())
}

func TestMemoryUpdateRejectsOverDiscount(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := context.Background()
	order, err := store.Create(ctx, testDraft())
	require.NoError(t, err)

	discount := models.MustMoney("5000.00")
	_, err = store.Update(ctx, order.ID, models.OrderUpdate{DiscountAmount: &discount})
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)

	// Stored order is untouched after the rejected update.
	got, err := store.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, "1250.00", got.TotalAmount.String())
}

func TestMemoryUpdateItemsImmutableAfterConfirm(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := context.Background()
	order, err := store.Create(ctx, testDraft())
	require.NoError(t, err)

	confirmed := models.OrderConfirmed
	_, err = store.UpdateStatus(ctx, order.ID, StatusChange{Status: &confirmed})
	require.NoError(t, err)

	offer := int64(2)
	items := []models.OrderLineItem{
		{ItemName: "Whole Sheep", Quantity: 1, UnitPrice: models.MustMoney("950.00"), OfferID: &offer},
	}
	_, err = store.Update(ctx, order.ID, models.OrderUpdate{Items: &items})
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestMemoryUpdateReplacesItemsWhilePending(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := context.Background()
	order, err := store.Create(ctx, testDraft())
	require.NoError(t, err)

	offer := int64(2)
	items := []models.OrderLineItem{
		{ItemName: "Whole Sheep", Quantity: 2, UnitPrice: models.MustMoney("950.00"), OfferID: &offer},
	}
	updated, err := store.Update(ctx, order.ID, models.OrderUpdate{Items: &items})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	require.Equal(t, "1900.00", updated.Subtotal.String())
	require.Equal(t, "1950.00", updated.TotalAmount.String())
}

func TestMemoryUpdateStatusLifecycle(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := context.Background()
	order, err := store.Create(ctx, testDraft())
	require.NoError(t, err)

	delivered := models.OrderDelivered
	_, err = store.UpdateStatus(ctx, order.ID, StatusChange{Status: &delivered})
	var transitionErr *lifecycle.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)

	confirmed := models.OrderConfirmed
	updated, err := store.UpdateStatus(ctx, order.ID, StatusChange{Status: &confirmed})
	require.NoError(t, err)
	require.Equal(t, models.OrderConfirmed, updated.Status)
	require.NotNil(t, updated.ConfirmedAt)
}

func TestMemoryUpdateStatusPayment(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := context.Background()
	order, err := store.Create(ctx, testDraft())
	require.NoError(t, err)

	paid := models.PaymentPaid
	zero := models.ZeroMoney()
	_, err = store.UpdateStatus(ctx, order.ID, StatusChange{PaymentStatus: &paid, AmountPaid: &zero})
	var paymentErr *lifecycle.InconsistentPaymentError
	require.ErrorAs(t, err, &paymentErr)

	full := models.MustMoney("1250.00")
	updated, err := store.UpdateStatus(ctx, order.ID, StatusChange{PaymentStatus: &paid, AmountPaid: &full})
	require.NoError(t, err)
	require.Equal(t, models.PaymentPaid, updated.PaymentStatus)
	require.Equal(t, "0.00", updated.BalanceDue.String())
}

func TestMemoryUpdateStatusContract(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := context.Background()
	order, err := store.Create(ctx, testDraft())
	require.NoError(t, err)

	var validationErr *models.ValidationError

	_, err = store.UpdateStatus(ctx, order.ID, StatusChange{})
	require.ErrorAs(t, err, &validationErr)

	confirmed := models.OrderConfirmed
	paid := models.PaymentPaid
	_, err = store.UpdateStatus(ctx, order.ID, StatusChange{Status: &confirmed, PaymentStatus: &paid})
	require.ErrorAs(t, err, &validationErr)
}
