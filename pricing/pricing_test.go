package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abm5616/farmcloud/models"
)

func animalItem(id int64, price string, qty int64) models.OrderLineItem {
	return models.OrderLineItem{
		ItemName:  "test animal",
		Quantity:  qty,
		UnitPrice: models.MustMoney(price),
		AnimalID:  &id,
	}
}

func TestCalculateExample(t *testing.T) {
	t.Parallel()

	items := []models.OrderLineItem{animalItem(1, "1200.00", 1)}

	totals, err := Calculate(items, models.MustMoney("50.00"), models.MustMoney("0.00"))
	require.NoError(t, err)
	require.Equal(t, "1200.00", totals.Subtotal.String())
	require.Equal(t, "50.00", totals.DeliveryFee.String())
	require.Equal(t, "0.00", totals.Discount.String())
	require.Equal(t, "1250.00", totals.Total.String())
}

func TestCalculateMultipleItems(t *testing.T) {
	t.Parallel()

	items := []models.OrderLineItem{
		animalItem(1, "850.50", 2),
		animalItem(2, "33.33", 3),
	}

	totals, err := Calculate(items, models.MustMoney("25.00"), models.MustMoney("100.00"))
	require.NoError(t, err)
	require.Equal(t, "1800.99", totals.Subtotal.String())
	require.Equal(t, "1725.99", totals.Total.String())
}

func TestCalculateOrderIndependent(t *testing.T) {
	t.Parallel()

	a := animalItem(1, "199.99", 3)
	b := animalItem(2, "45.50", 2)
	c := animalItem(3, "1200.00", 1)

	first, err := Calculate([]models.OrderLineItem{a, b, c}, models.ZeroMoney(), models.ZeroMoney())
	require.NoError(t, err)
	second, err := Calculate([]models.OrderLineItem{c, a, b}, models.ZeroMoney(), models.ZeroMoney())
	require.NoError(t, err)

	require.Equal(t, first.Subtotal.String(), second.Subtotal.String())
	require.Equal(t, first.Total.String(), second.Total.String())
}

func TestCalculateIdempotent(t *testing.T) {
	t.Parallel()

	items := []models.OrderLineItem{animalItem(1, "320.25", 4)}
	fee := models.MustMoney("50.00")
	discount := models.MustMoney("12.50")

	first, err := Calculate(items, fee, discount)
	require.NoError(t, err)
	second, err := Calculate(items, fee, discount)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestCalculateRejectsOverDiscount(t *testing.T) {
	t.Parallel()

	items := []models.OrderLineItem{animalItem(1, "1200.00", 1)}

	// Discount above subtotal+fee must error, never clamp to zero.
	_, err := Calculate(items, models.MustMoney("50.00"), models.MustMoney("1300.00"))
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestCalculateDiscountEqualToGross(t *testing.T) {
	t.Parallel()

	items := []models.OrderLineItem{animalItem(1, "1200.00", 1)}

	totals, err := Calculate(items, models.MustMoney("50.00"), models.MustMoney("1250.00"))
	require.NoError(t, err)
	require.Equal(t, "0.00", totals.Total.String())
}

func TestCalculateRejectsNegativeInputs(t *testing.T) {
	t.Parallel()

	items := []models.OrderLineItem{animalItem(1, "10.00", 1)}
	var validationErr *models.ValidationError

	_, err := Calculate(items, models.MustMoney("-1.00"), models.ZeroMoney())
	require.ErrorAs(t, err, &validationErr)

	_, err = Calculate(items, models.ZeroMoney(), models.MustMoney("-1.00"))
	require.ErrorAs(t, err, &validationErr)
}

func TestCalculateEmptyItems(t *testing.T) {
	t.Parallel()

	totals, err := Calculate(nil, models.ZeroMoney(), models.ZeroMoney())
	require.NoError(t, err)
	require.Equal(t, "0.00", totals.Subtotal.String())
	require.Equal(t, "0.00", totals.Total.String())
}

func TestApplySetsLineTotals(t *testing.T) {
	t.Parallel()

	d := models.OrderDraft{
		Items:          []models.OrderLineItem{animalItem(1, "120.00", 3)},
		DeliveryFee:    models.MustMoney("50.00"),
		DiscountAmount: models.MustMoney("10.00"),
	}
	require.NoError(t, Apply(&d))
	require.Equal(t, "360.00", d.Subtotal.String())
	require.Equal(t, "400.00", d.TotalAmount.String())
	require.Equal(t, "360.00", d.Items[0].TotalPrice.String())
}
