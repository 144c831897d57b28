package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerInfo is the first checkout step. Business customers are identified
// by company name and the last-name requirement is waived for them.
type CustomerInfo struct {
	IsBusiness  bool   `json:"is_business"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

// InsuranceSelection holds the independent flat-fee add-ons.
type InsuranceSelection struct {
	DrivewayProtection     bool `json:"driveway_protection"`
	CancellationProtection bool `json:"cancellation_protection"`
	RushDelivery           bool `json:"rush_delivery"`
}

// CheckoutDraft is the caller-owned draft order the orchestrator mutates.
type CheckoutDraft struct {
	RentalID        int64              `json:"rental_id"`
	Customer        CustomerInfo       `json:"customer"`
	Insurance       InsuranceSelection `json:"insurance"`
	DeliveryAddress string             `json:"delivery_address"`
	DeliveryDate    time.Time          `json:"delivery_date"`
	PostalCode      string             `json:"postal_code"`
	Cart            CartState          `json:"cart"`
}

type TaxBreakdown struct {
	State decimal.Decimal `json:"state"`
	Local decimal.Decimal `json:"local"`
}

// PriceQuote keeps exact decimals; rounding to cents happens only when a
// value crosses the HTTP or provider boundary.
type PriceQuote struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	AddOnTotal decimal.Decimal `json:"add_on_total"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	Total      decimal.Decimal `json:"total"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
	Breakdown  TaxBreakdown    `json:"breakdown"`
}
