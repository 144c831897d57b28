package model

import "time"

type PaymentStatus string

const (
	PaymentStatusNone      PaymentStatus = "none"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

// String representation (for logging)
func (s PaymentStatus) String() string {
	return string(s)
}

type FollowUpStatus string

const (
	FollowUpStatusNone    FollowUpStatus = "none"
	FollowUpStatusPending FollowUpStatus = "pending"
	FollowUpStatusPaid    FollowUpStatus = "paid"
	FollowUpStatusFailed  FollowUpStatus = "failed"
)

// IsOpen reports whether a charge is already issued or settled, which blocks
// issuing another one for the same rental.
func (s FollowUpStatus) IsOpen() bool {
	return s == FollowUpStatusPending || s == FollowUpStatusPaid
}

func (s FollowUpStatus) String() string {
	return string(s)
}

// Rental represents an entry in the rentals table
type Rental struct {
	RentalID            int64          `db:"rentalid" json:"rental_id"`
	CustomerID          int64          `db:"customerid" json:"customer_id"`
	DeliveryAddress     string         `db:"deliveryaddress" json:"delivery_address"`
	DeliveryDate        *time.Time     `db:"deliverydate" json:"delivery_date,omitempty"`
	PaymentStatus       PaymentStatus  `db:"paymentstatus" json:"payment_status"`
	PaymentSessionID    *string        `db:"paymentsessionid" json:"payment_session_id,omitempty"`
	FollowUpAmountCents *int64         `db:"followupamountcents" json:"follow_up_amount_cents,omitempty"`
	FollowUpStatus      FollowUpStatus `db:"followupstatus" json:"follow_up_status"`
	FollowUpInvoiceID   *string        `db:"followupinvoiceid" json:"follow_up_invoice_id,omitempty"`
	FollowUpChargedAt   *time.Time     `db:"followupchargedat" json:"follow_up_charged_at,omitempty"`
	CreatedAt           time.Time      `db:"createdat" json:"created_at"`
}
