// Package catalog is the read-only lookup used to populate order
// forms: customers, animals still available for sale, and active
// offers.
package catalog

import (
	"context"
	"database/sql"

	"github.com/abm5616/farmcloud/models"
)

// Accessor exposes the catalog lookups the order workflow needs.
type Accessor interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	ListAvailableAnimals(ctx context.Context) ([]models.Animal, error)
	ListActiveOffers(ctx context.Context) ([]models.Offer, error)
}

// MySQL reads the catalog from the shared database.
type MySQL struct {
	db *sql.DB
}

func NewMySQL(db *sql.DB) *MySQL {
	return &MySQL{db: db}
}

func (m *MySQL) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, full_name, phone_number, email, address_line1, address_line2,
		       city, customer_type, is_active, created_at
		FROM customers
		WHERE is_active = 1
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.FullName, &c.PhoneNumber, &c.Email,
			&c.AddressLine1, &c.AddressLine2, &c.City, &c.CustomerType,
			&c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (m *MySQL) ListAvailableAnimals(ctx context.Context) ([]models.Animal, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, tag_number, animal_type, breed_name, weight, age_months, status, price
		FROM animals
		WHERE status = ?
		ORDER BY created_at DESC`, models.AnimalAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var animals []models.Animal
	for rows.Next() {
		var a models.Animal
		if err := rows.Scan(&a.ID, &a.TagNumber, &a.AnimalType, &a.BreedName,
			&a.WeightKg, &a.AgeMonths, &a.Status, &a.Price); err != nil {
			return nil, err
		}
		animals = append(animals, a)
	}
	return animals, rows.Err()
}

func (m *MySQL) ListActiveOffers(ctx context.Context) ([]models.Offer, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, offer_type, animal_type, price, is_active, stock_quantity
		FROM offers
		WHERE is_active = 1
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		var o models.Offer
		if err := rows.Scan(&o.ID, &o.Name, &o.OfferType, &o.AnimalType,
			&o.Price, &o.IsActive, &o.StockQuantity); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}
