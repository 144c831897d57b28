package services

import (
	"context"
	"time"

	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/model"
)

// mockRentalStore implements RentalStore for testing
type mockRentalStore struct {
	Rental        *model.Rental
	RecheckRental *model.Rental // returned from the second GetByID call when set
	GetCalls      int
	GetErr        error

	CreatedID int64
	CreateErr error

	PendingSession   string
	PendingRentalID  int64
	SetPendingErr    error
	SetPendingCalls  int
	CompletedApplied bool
	FailedApplied    bool
	CompletedIDs     []int64
	FailedIDs        []int64

	FollowUpRentalID  int64
	FollowUpInvoiceID string
	FollowUpAmount    int64
	SetFollowUpErr    error
	SetFollowUpCalls  int

	PaidApplied    bool
	FailApplied    bool
	PaidInvoices   []string
	FailedInvoices []string

	Recent []model.Rental
}

func (m *mockRentalStore) Create(context.Context, int64, string, time.Time) (int64, error) {
	return m.CreatedID, m.CreateErr
}

func (m *mockRentalStore) GetByID(context.Context, int64) (*model.Rental, error) {
	m.GetCalls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if m.GetCalls > 1 && m.RecheckRental != nil {
		return m.RecheckRental, nil
	}
	return m.Rental, nil
}

func (m *mockRentalStore) GetBySessionID(context.Context, string) (*model.Rental, error) {
	return m.Rental, nil
}

func (m *mockRentalStore) SetPaymentPending(_ context.Context, rentalID int64, sessionID string) error {
	m.SetPendingCalls++
	if m.SetPendingErr != nil {
		return m.SetPendingErr
	}
	m.PendingRentalID = rentalID
	m.PendingSession = sessionID
	return nil
}

func (m *mockRentalStore) MarkPaymentCompleted(_ context.Context, rentalID int64) (bool, error) {
	m.CompletedIDs = append(m.CompletedIDs, rentalID)
	return m.CompletedApplied, nil
}

func (m *mockRentalStore) MarkPaymentFailed(_ context.Context, rentalID int64) (bool, error) {
	m.FailedIDs = append(m.FailedIDs, rentalID)
	return m.FailedApplied, nil
}

func (m *mockRentalStore) SetFollowUpPending(_ context.Context, rentalID int64, invoiceID string, amountCents int64) error {
	m.SetFollowUpCalls++
	if m.SetFollowUpErr != nil {
		return m.SetFollowUpErr
	}
	m.FollowUpRentalID = rentalID
	m.FollowUpInvoiceID = invoiceID
	m.FollowUpAmount = amountCents
	return nil
}

func (m *mockRentalStore) MarkFollowUpPaid(_ context.Context, invoiceID string) (bool, error) {
	m.PaidInvoices = append(m.PaidInvoices, invoiceID)
	return m.PaidApplied, nil
}

func (m *mockRentalStore) MarkFollowUpFailed(_ context.Context, invoiceID string) (bool, error) {
	m.FailedInvoices = append(m.FailedInvoices, invoiceID)
	return m.FailApplied, nil
}

func (m *mockRentalStore) ListRecent(context.Context, int) ([]model.Rental, error) {
	return m.Recent, nil
}

// mockCustomerStore implements CustomerStore for testing
type mockCustomerStore struct {
	Customer   *model.Customer
	ByExternal *model.Customer
	GetErr     error

	UpsertedID int64
	UpsertErr  error

	LinkedCustomerID int64
	LinkedExternalID string
	LinkErr          error
	SavedFlag        *bool
}

func (m *mockCustomerStore) GetByID(context.Context, int64) (*model.Customer, error) {
	return m.Customer, m.GetErr
}

func (m *mockCustomerStore) GetByExternalID(context.Context, string) (*model.Customer, error) {
	return m.ByExternal, m.GetErr
}

func (m *mockCustomerStore) UpsertByEmail(context.Context, string) (int64, error) {
	return m.UpsertedID, m.UpsertErr
}

func (m *mockCustomerStore) SetExternalCustomerID(_ context.Context, customerID int64, externalID string) error {
	if m.LinkErr != nil {
		return m.LinkErr
	}
	m.LinkedCustomerID = customerID
	m.LinkedExternalID = externalID
	return nil
}

func (m *mockCustomerStore) SetHasSavedPaymentMethod(_ context.Context, _ int64, saved bool) error {
	m.SavedFlag = &saved
	return nil
}

// mockProvider implements PaymentProvider for testing
type mockProvider struct {
	Session       *ProviderSession
	SessionErr    error
	SessionCalls  int
	SessionParams CheckoutSessionParams

	SessionRentalID   string
	SessionCustomerID string
	GetSessionErr     error

	SavedCard    bool
	SavedCardErr error

	DraftID    string
	DraftErr   error
	DraftCalls int
	DraftDays  int64

	LineErr     error
	LineCalls   int
	LineIdemKey string

	FinalizedInvoice *ProviderInvoice
	FinalizeErr      error
	FinalizeCalls    int

	SendErr   error
	SendCalls int

	SetupID     string
	SetupSecret string
	SetupErr    error
	SetupCalls  int
}

func (m *mockProvider) CreateCheckoutSession(_ context.Context, p CheckoutSessionParams) (*ProviderSession, error) {
	m.SessionCalls++
	m.SessionParams = p
	if m.SessionErr != nil {
		return nil, m.SessionErr
	}
	return m.Session, nil
}

func (m *mockProvider) GetCheckoutSession(context.Context, string) (string, string, error) {
	return m.SessionRentalID, m.SessionCustomerID, m.GetSessionErr
}

func (m *mockProvider) HasSavedPaymentMethod(context.Context, string) (bool, error) {
	return m.SavedCard, m.SavedCardErr
}

func (m *mockProvider) CreateDraftInvoice(_ context.Context, _ string, days int64, _ map[string]string) (string, error) {
	m.DraftCalls++
	m.DraftDays = days
	return m.DraftID, m.DraftErr
}

func (m *mockProvider) AddInvoiceLine(_ context.Context, _, _ string, _ int64, _, idempotencyKey string) error {
	m.LineCalls++
	m.LineIdemKey = idempotencyKey
	return m.LineErr
}

func (m *mockProvider) FinalizeInvoice(context.Context, string) (*ProviderInvoice, error) {
	m.FinalizeCalls++
	if m.FinalizeErr != nil {
		return nil, m.FinalizeErr
	}
	return m.FinalizedInvoice, nil
}

func (m *mockProvider) SendInvoice(context.Context, string) error {
	m.SendCalls++
	return m.SendErr
}

func (m *mockProvider) CreateSetupIntent(context.Context, string, map[string]string) (string, string, error) {
	m.SetupCalls++
	return m.SetupID, m.SetupSecret, m.SetupErr
}

// mockVerifier implements WebhookVerifier for testing
type mockVerifier struct {
	Event *ProviderEvent
	Err   error
}

func (m *mockVerifier) VerifyAndParse([]byte, string) (*ProviderEvent, error) {
	return m.Event, m.Err
}

// mockMailer implements OpsMailer and ReceiptMailer for testing
type mockMailer struct {
	Alerts     []string
	Receipts   []string
	ReceiptErr error
}

func (m *mockMailer) SendOpsAlert(_ context.Context, _ string, body string) error {
	m.Alerts = append(m.Alerts, body)
	return nil
}

func (m *mockMailer) SendReceiptEmail(_ context.Context, toEmail string, _ int64) error {
	if m.ReceiptErr != nil {
		return m.ReceiptErr
	}
	m.Receipts = append(m.Receipts, toEmail)
	return nil
}
