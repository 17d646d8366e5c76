package models

import "time"

// Customer is the read model used to populate order forms. Address
// fields feed the delivery-address auto-fill.
type Customer struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"full_name"`
	PhoneNumber  string    `json:"phone_number"`
	Email        string    `json:"email,omitempty"`
	AddressLine1 string    `json:"address_line1"`
	AddressLine2 string    `json:"address_line2,omitempty"`
	City         string    `json:"city"`
	CustomerType string    `json:"customer_type"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// DeliveryAddress renders the one-line address used when a selected
// customer's address is auto-filled into an order draft.
func (c Customer) DeliveryAddress() string {
	if c.AddressLine1 == "" {
		return ""
	}
	if c.City == "" {
		return c.AddressLine1
	}
	return c.AddressLine1 + ", " + c.City
}

// AnimalStatus mirrors the inventory availability states.
type AnimalStatus string

const (
	AnimalAvailable  AnimalStatus = "AVAILABLE"
	AnimalReserved   AnimalStatus = "RESERVED"
	AnimalSold       AnimalStatus = "SOLD"
	AnimalProcessing AnimalStatus = "PROCESSING"
)

// Animal is an individual head of livestock offered for sale.
type Animal struct {
	ID         int64        `json:"id"`
	TagNumber  string       `json:"tag_number"`
	AnimalType string       `json:"animal_type"`
	BreedName  string       `json:"breed_name,omitempty"`
	WeightKg   Money        `json:"weight"`
	AgeMonths  int          `json:"age_months"`
	Status     AnimalStatus `json:"status"`
	Price      Money        `json:"price"`
}

// DisplayName is the captured item name when the animal is added to a
// draft: tag number plus breed (or type when the breed is unknown).
func (a Animal) DisplayName() string {
	label := a.BreedName
	if label == "" {
		label = a.AnimalType
	}
	return a.TagNumber + " - " + label
}

// Offer is a bundled product package (whole/half animal, cuts, ...).
type Offer struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	OfferType     string `json:"offer_type"`
	AnimalType    string `json:"animal_type,omitempty"`
	Price         Money  `json:"price"`
	IsActive      bool   `json:"is_active"`
	StockQuantity int    `json:"stock_quantity"`
}
