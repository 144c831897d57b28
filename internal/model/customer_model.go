package model

import "time"

// Customer is the local record joined to the payment provider via
// ExternalCustomerID. The external id is learned from the provider after the
// first completed checkout session and must exist before any off-session
// billing can happen.
type Customer struct {
	CustomerID            int64     `db:"customerid" json:"customer_id"`
	Email                 string    `db:"email" json:"email"`
	ExternalCustomerID    *string   `db:"externalcustomerid" json:"external_customer_id,omitempty"`
	HasSavedPaymentMethod bool      `db:"hassavedpaymentmethod" json:"has_saved_payment_method"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
}
