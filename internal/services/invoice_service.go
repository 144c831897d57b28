package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultDueDays = 7

// FollowUpStatusDegraded marks a charge whose invoice exists and is payable
// but whose notification email did not go out.
const (
	FollowUpResultPending  = "pending"
	FollowUpResultDegraded = "degraded"
)

type FollowUpOptions struct {
	DueDate   *time.Time
	SendEmail bool
}

type FollowUpResult struct {
	InvoiceID   string `json:"invoice_id"`
	InvoiceURL  string `json:"invoice_url"`
	AmountCents int64  `json:"amount_cents"`
	Status      string `json:"status"`
}

// InvoiceService issues supplementary invoices (excess weight, extra days,
// rush fees) against a customer's saved payment method after delivery.
type InvoiceService struct {
	Rentals   RentalStore
	Customers CustomerStore
	Provider  PaymentProvider
	Mailer    OpsMailer
	Logger    *zap.Logger
}

func NewInvoiceService(
	rentals RentalStore,
	customers CustomerStore,
	provider PaymentProvider,
	mailer OpsMailer,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		Rentals:   rentals,
		Customers: customers,
		Provider:  provider,
		Mailer:    mailer,
		Logger:    logger,
	}
}

// CreateFollowUpCharge runs draft -> line item -> finalize -> send -> persist.
// Each step's failure stops the later steps but earlier side effects stand:
// a send failure is a degraded success, never a rollback, because the
// finalized invoice is already payable via its URL. The duplicate guard is
// checked at entry and re-checked right before finalize to narrow the race
// window between concurrent requests for the same rental.
func (s *InvoiceService) CreateFollowUpCharge(
	ctx context.Context,
	rentalID int64,
	amountCents int64,
	description string,
	opts FollowUpOptions,
) (*FollowUpResult, error) {

	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}

	rental, err := s.Rentals.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental == nil {
		return nil, ErrRentalNotFound
	}
	if rental.FollowUpStatus.IsOpen() {
		return nil, ErrDuplicateFollowUp
	}

	customer, err := s.Customers.GetByID(ctx, rental.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	if customer.ExternalCustomerID == nil || *customer.ExternalCustomerID == "" {
		return nil, ErrNoPaymentMethodOnFile
	}
	externalID := *customer.ExternalCustomerID

	days := dueDays(opts.DueDate)

	draftID, err := s.Provider.CreateDraftInvoice(ctx, externalID, days, map[string]string{
		"rental_id": fmt.Sprintf("%d", rentalID),
	})
	if err != nil {
		return nil, fmt.Errorf("create draft invoice: %w", err)
	}

	idemKey := followUpIdempotencyKey(rentalID, description)
	if err := s.Provider.AddInvoiceLine(ctx, externalID, draftID, amountCents, description, idemKey); err != nil {
		s.logDraftOrphan(rentalID, draftID, "add line item failed")
		return nil, fmt.Errorf("add invoice line: %w", err)
	}

	// Finalize cannot be undone; re-check the guard against current
	// persisted status first. A concurrent request may have won.
	fresh, err := s.Rentals.GetByID(ctx, rentalID)
	if err != nil {
		s.logDraftOrphan(rentalID, draftID, "status re-check failed")
		return nil, err
	}
	if fresh == nil || fresh.FollowUpStatus.IsOpen() {
		s.logDraftOrphan(rentalID, draftID, "lost duplicate race before finalize")
		return nil, ErrDuplicateFollowUp
	}

	inv, err := s.Provider.FinalizeInvoice(ctx, draftID)
	if err != nil {
		s.logDraftOrphan(rentalID, draftID, "finalize failed")
		return nil, fmt.Errorf("finalize invoice: %w", err)
	}

	status := FollowUpResultPending
	if opts.SendEmail {
		if err := s.Provider.SendInvoice(ctx, inv.ID); err != nil {
			s.Logger.Warn("invoice send failed; invoice remains payable via url",
				zap.Int64("rental_id", rentalID),
				zap.String("invoice_id", inv.ID),
				zap.Error(err),
			)
			status = FollowUpResultDegraded
		}
	}

	if err := s.Rentals.SetFollowUpPending(ctx, rentalID, inv.ID, amountCents); err != nil {
		s.alertOrphan(ctx, fmt.Sprintf(
			"invoice %s finalized at provider but rental %d not updated: %v",
			inv.ID, rentalID, err,
		))
		return nil, fmt.Errorf("invoice %s: %w", inv.ID, ErrOrphanedInvoice)
	}

	s.Logger.Info("follow-up charge issued",
		zap.Int64("rental_id", rentalID),
		zap.String("invoice_id", inv.ID),
		zap.Int64("amount_cents", amountCents),
		zap.String("status", status),
	)

	return &FollowUpResult{
		InvoiceID:   inv.ID,
		InvoiceURL:  inv.URL,
		AmountCents: amountCents,
		Status:      status,
	}, nil
}

// dueDays converts an explicit due date to a whole-day window, floor 1,
// defaulting to the standard 7-day window.
func dueDays(dueDate *time.Time) int64 {
	if dueDate == nil {
		return defaultDueDays
	}
	days := int64(math.Ceil(time.Until(*dueDate).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// followUpIdempotencyKey derives the provider idempotency key from rental id
// plus description, so a blind retry of the same logical charge cannot create
// a second line item.
func followUpIdempotencyKey(rentalID int64, description string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("followup:%d:%s", rentalID, description)))
	return hex.EncodeToString(sum[:])[:32]
}

func (s *InvoiceService) logDraftOrphan(rentalID int64, draftID, reason string) {
	// draft invoices are never auto-charged; flagged for manual cleanup
	s.Logger.Error("draft invoice orphaned",
		zap.Int64("rental_id", rentalID),
		zap.String("draft_invoice_id", draftID),
		zap.String("reason", reason),
	)
}

func (s *InvoiceService) alertOrphan(ctx context.Context, body string) {
	s.Logger.Error("orphaned external resource", zap.String("detail", body))
	if s.Mailer == nil {
		return
	}
	if err := s.Mailer.SendOpsAlert(ctx, "orphaned invoice", body); err != nil {
		s.Logger.Warn("ops alert send failed", zap.Error(err))
	}
}
