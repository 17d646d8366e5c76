package draft

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abm5616/farmcloud/models"
)

var defaultFee = models.MustMoney("50.00")

func testCustomer() models.Customer {
	return models.Customer{
		ID:           7,
		FullName:     "Ahmed Hassan",
		AddressLine1: "Villa 12, Al Wasl Road",
		City:         "Dubai",
	}
}

func TestAddItemDeduplicates(t *testing.T) {
	t.Parallel()

	b := NewBuilder(defaultFee)
	b.AddItem(models.KindAnimal, 3, "G-001 - Boer", models.MustMoney("1200.00"))
	b.AddItem(models.KindAnimal, 3, "G-001 - Boer", models.MustMoney("1200.00"))

	items := b.Items()
	require.Len(t, items, 1)
	require.Equal(t, int64(2), items[0].Quantity)
}

func TestAddItemDistinguishesKinds(t *testing.T) {
	t.Parallel()

	// Same numeric ID, different kinds: two separate lines.
	b := NewBuilder(defaultFee)
	b.AddItem(models.KindAnimal, 3, "G-001 - Boer", models.MustMoney("1200.00"))
	b.AddItem(models.KindOffer, 3, "Half Sheep Package", models.MustMoney("650.00"))

	require.Len(t, b.Items(), 2)
}

func TestSetQuantityZeroRemoves(t *testing.T) {
	t.Parallel()

	withSetQuantity := NewBuilder(defaultFee)
	withSetQuantity.AddItem(models.KindOffer, 5, "Quarter Goat", models.MustMoney("350.00"))
	withSetQuantity.SetQuantity(models.KindOffer, 5, 0)

	withRemove := NewBuilder(defaultFee)
	withRemove.AddItem(models.KindOffer, 5, "Quarter Goat", models.MustMoney("350.00"))
	withRemove.RemoveItem(models.KindOffer, 5)

	require.Empty(t, withSetQuantity.Items())
	require.Empty(t, withRemove.Items())
}

func TestRemoveAbsentItemIsNoop(t *testing.T) {
	t.Parallel()

	b := NewBuilder(defaultFee)
	b.AddItem(models.KindAnimal, 1, "G-001", models.MustMoney("900.00"))
	b.RemoveItem(models.KindAnimal, 99)
	b.SetQuantity(models.KindOffer, 99, 0)

	require.Len(t, b.Items(), 1)
}

func TestSetQuantity(t *testing.T) {
	t.Parallel()

	b := NewBuilder(defaultFee)
	b.AddItem(models.KindAnimal, 1, "G-001", models.MustMoney("900.00"))
	b.SetQuantity(models.KindAnimal, 1, 4)

	require.Equal(t, int64(4), b.Items()[0].Quantity)
}

func TestCustomerAutoFillsAddress(t *testing.T) {
	t.Parallel()

	b := NewBuilder(defaultFee)
	b.SetCustomer(testCustomer())

	b.AddItem(models.KindAnimal, 1, "G-001", models.MustMoney("900.00"))
	d, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, "Villa 12, Al Wasl Road, Dubai", d.DeliveryAddress)
}

func TestAutoFillDoesNotOverwriteManualAddress(t *testing.T) {
	t.Parallel()

	b := NewBuilder(defaultFee)
	b.SetDeliveryAddress("Warehouse 3, Industrial Area")
	b.SetCustomer(testCustomer())

	b.AddItem(models.KindAnimal, 1, "G-001", models.MustMoney("900.00"))
	d, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, "Warehouse 3, Industrial Area", d.DeliveryAddress)
}

func TestAutoFilledAddressFollowsCustomerChange(t *testing.T) {
	t.Parallel()

	b := NewBuilder(defaultFee)
	b.SetCustomer(testCustomer())

	second := models.Customer{ID: 8, AddressLine1: "Flat 4, Corniche Street", City: "Abu Dhabi"}
	b.SetCustomer(second)

	b.AddItem(models.KindAnimal, 1, "G-001", models.MustMoney("900.00"))
	d, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, "Flat 4, Corniche Street, Abu Dhabi", d.DeliveryAddress)
}

func TestFarmPickupForcesZeroFee(t *testing.T) {
	t.Parallel()

	b := NewBuilder(defaultFee)
	b.SetDeliveryMethod(models.FarmPickup)

	totals, err := b.Totals()
	require.NoError(t, err)
	require.Equal(t, "0.00", totals.DeliveryFee.String())

	// Fee overrides are ignored while pickup is selected.
	b.SetDeliveryFee(models.MustMoney("75.00"))
	totals, err = b.Totals()
	require.NoError(t, err)
	require.Equal(t, "0.00", totals.DeliveryFee.String())

	// Switching back to home delivery restores the default fee.
	b.SetDeliveryMethod(models.HomeDelivery)
	totals, err = b.Totals()
	require.NoError(t, err)
	require.Equal(t, "50.00", totals.DeliveryFee.String())
}

func TestBuildComputesTotals(t *testing.T) {
	t.Parallel()

	b := NewBuilder(defaultFee)
	b.SetCustomer(testCustomer())
	b.AddItem(models.KindAnimal, 1, "G-001 - Boer", models.MustMoney("1200.00"))

	d, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, "1200.00", d.Subtotal.String())
	require.Equal(t, "50.00", d.DeliveryFee.String())
	require.Equal(t, "1250.00", d.TotalAmount.String())
	require.Equal(t, "1200.00", d.Items[0].TotalPrice.String())
}

func TestBuildValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func() *Builder
	}{
		{
			name:  "empty cart",
			setup: func() *Builder { b := NewBuilder(defaultFee); b.SetCustomer(testCustomer()); return b },
		},
		{
			name: "missing customer",
			setup: func() *Builder {
				b := NewBuilder(defaultFee)
				b.AddItem(models.KindAnimal, 1, "G-001", models.MustMoney("900.00"))
				return b
			},
		},
		{
			name: "home delivery without address",
			setup: func() *Builder {
				b := NewBuilder(defaultFee)
				b.SetCustomer(models.Customer{ID: 9})
				b.AddItem(models.KindAnimal, 1, "G-001", models.MustMoney("900.00"))
				return b
			},
		},
		{
			name: "discount exceeds total",
			setup: func() *Builder {
				b := NewBuilder(defaultFee)
				b.SetCustomer(testCustomer())
				b.AddItem(models.KindAnimal, 1, "G-001", models.MustMoney("1200.00"))
				b.SetDiscount(models.MustMoney("1300.00"))
				return b
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.setup().Build()
			var validationErr *models.ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestBuilderUsableAfterValidationFailure(t *testing.T) {
	t.Parallel()

	b := NewBuilder(defaultFee)
	b.SetCustomer(testCustomer())
	b.AddItem(models.KindAnimal, 1, "G-001", models.MustMoney("1200.00"))
	b.SetDiscount(models.MustMoney("9999.00"))

	_, err := b.Build()
	require.Error(t, err)

	b.SetDiscount(models.MustMoney("100.00"))
	d, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, "1150.00", d.TotalAmount.String())
}

func TestFromDraftMergesDuplicates(t *testing.T) {
	t.Parallel()

	animal := int64(3)
	payload := models.OrderDraft{
		CustomerID:      7,
		DeliveryMethod:  models.HomeDelivery,
		DeliveryAddress: "Villa 12, Al Wasl Road, Dubai",
		DeliveryFee:     models.MustMoney("50.00"),
		Items: []models.OrderLineItem{
			{ItemName: "G-001 - Boer", Quantity: 1, UnitPrice: models.MustMoney("1200.00"), AnimalID: &animal},
			{ItemName: "G-001 - Boer", Quantity: 2, UnitPrice: models.MustMoney("1200.00"), AnimalID: &animal},
		},
	}

	b, err := FromDraft(defaultFee, payload)
	require.NoError(t, err)

	items := b.Items()
	require.Len(t, items, 1)
	require.Equal(t, int64(3), items[0].Quantity)
}

func TestFromDraftPickupZeroesFee(t *testing.T) {
	t.Parallel()

	offer := int64(2)
	payload := models.OrderDraft{
		CustomerID:     7,
		DeliveryMethod: models.FarmPickup,
		DeliveryFee:    models.MustMoney("50.00"),
		Items: []models.OrderLineItem{
			{ItemName: "Whole Sheep", Quantity: 1, UnitPrice: models.MustMoney("950.00"), OfferID: &offer},
		},
	}

	b, err := FromDraft(defaultFee, payload)
	require.NoError(t, err)

	d, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, "0.00", d.DeliveryFee.String())
	require.Equal(t, "950.00", d.TotalAmount.String())
}

func TestFromDraftDefaultsFee(t *testing.T) {
	t.Parallel()

	animal := int64(3)
	payload := models.OrderDraft{
		CustomerID:      7,
		DeliveryMethod:  models.HomeDelivery,
		DeliveryAddress: "Villa 12, Al Wasl Road, Dubai",
		Items: []models.OrderLineItem{
			{ItemName: "G-001 - Boer", Quantity: 1, UnitPrice: models.MustMoney("1200.00"), AnimalID: &animal},
		},
	}

	b, err := FromDraft(defaultFee, payload)
	require.NoError(t, err)

	d, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, "50.00", d.DeliveryFee.String())
	require.Equal(t, "1250.00", d.TotalAmount.String())
}

func TestFromDraftRejectsAmbiguousItem(t *testing.T) {
	t.Parallel()

	animal, offer := int64(1), int64(2)
	payload := models.OrderDraft{
		CustomerID: 7,
		Items: []models.OrderLineItem{
			{ItemName: "bad", Quantity: 1, UnitPrice: models.MustMoney("10.00"), AnimalID: &animal, OfferID: &offer},
		},
	}

	_, err := FromDraft(defaultFee, payload)
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
}
