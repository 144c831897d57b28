package services

import (
	"context"
	"time"

	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/model"
)

// RentalStore is the rentals persistence contract. Implemented by
// repository.RentalRepository; tests supply mocks.
type RentalStore interface {
	Create(ctx context.Context, customerID int64, deliveryAddress string, deliveryDate time.Time) (int64, error)
	GetByID(ctx context.Context, rentalID int64) (*model.Rental, error)
	GetBySessionID(ctx context.Context, sessionID string) (*model.Rental, error)
	SetPaymentPending(ctx context.Context, rentalID int64, sessionID string) error
	MarkPaymentCompleted(ctx context.Context, rentalID int64) (bool, error)
	MarkPaymentFailed(ctx context.Context, rentalID int64) (bool, error)
	SetFollowUpPending(ctx context.Context, rentalID int64, invoiceID string, amountCents int64) error
	MarkFollowUpPaid(ctx context.Context, invoiceID string) (bool, error)
	MarkFollowUpFailed(ctx context.Context, invoiceID string) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]model.Rental, error)
}

type CustomerStore interface {
	GetByID(ctx context.Context, customerID int64) (*model.Customer, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.Customer, error)
	UpsertByEmail(ctx context.Context, email string) (int64, error)
	SetExternalCustomerID(ctx context.Context, customerID int64, externalID string) error
	SetHasSavedPaymentMethod(ctx context.Context, customerID int64, saved bool) error
}

type ProviderSession struct {
	ID  string
	URL string
}

type ProviderInvoice struct {
	ID     string
	URL    string
	Status string
}

type SessionInfo struct {
	ExternalCustomerID string `json:"external_customer_id"`
	RentalID           int64  `json:"rental_id"`
	HasSavedCard       bool   `json:"has_saved_card"`
}

type CheckoutSessionParams struct {
	AmountCents     int64
	Description     string
	CustomerEmail   string
	ClientReference string
	Metadata        map[string]string
}

// PaymentProvider is everything this core asks of the external payment
// provider. Implemented by external/stripe.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutSessionParams) (*ProviderSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (sessionRentalID string, externalCustomerID string, err error)
	HasSavedPaymentMethod(ctx context.Context, externalCustomerID string) (bool, error)
	CreateDraftInvoice(ctx context.Context, externalCustomerID string, daysUntilDue int64, metadata map[string]string) (string, error)
	AddInvoiceLine(ctx context.Context, externalCustomerID, invoiceID string, amountCents int64, description, idempotencyKey string) error
	FinalizeInvoice(ctx context.Context, invoiceID string) (*ProviderInvoice, error)
	SendInvoice(ctx context.Context, invoiceID string) error
	CreateSetupIntent(ctx context.Context, externalCustomerID string, metadata map[string]string) (intentID, clientSecret string, err error)
}

// ProviderEvent is a verified, decoded webhook event. Fields not applicable
// to the event type stay zero.
type ProviderEvent struct {
	Type               string
	SessionID          string
	RentalID           string
	ExternalCustomerID string
	InvoiceID          string
}

// WebhookVerifier checks the signature header against the shared secret and
// decodes the payload. A non-nil error means the event must be rejected with
// no state change.
type WebhookVerifier interface {
	VerifyAndParse(payload []byte, signatureHeader string) (*ProviderEvent, error)
}

// OpsMailer delivers operator alerts for orphaned external resources.
type OpsMailer interface {
	SendOpsAlert(ctx context.Context, subject, body string) error
}

// ReceiptMailer sends the customer-facing payment confirmation.
type ReceiptMailer interface {
	SendReceiptEmail(ctx context.Context, toEmail string, rentalID int64) error
}
