package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/model"

	"go.uber.org/zap"
)

const (
	EventSessionCompleted   = "checkout.session.completed"
	EventSessionExpired     = "checkout.session.expired"
	EventInvoicePaid        = "invoice.paid"
	EventInvoicePaymentFail = "invoice.payment_failed"
)

// WebhookService reconciles asynchronous provider events with rental
// records. Delivery is at-least-once and possibly out of order, so every
// transition is a guarded status update: duplicates are no-ops and events
// that would move a rental out of a terminal state are acknowledged but
// never applied.
type WebhookService struct {
	Verifier  WebhookVerifier
	Rentals   RentalStore
	Customers CustomerStore
	Receipts  ReceiptMailer
	Logger    *zap.Logger
}

func NewWebhookService(
	verifier WebhookVerifier,
	rentals RentalStore,
	customers CustomerStore,
	receipts ReceiptMailer,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		Verifier:  verifier,
		Rentals:   rentals,
		Customers: customers,
		Receipts:  receipts,
		Logger:    logger,
	}
}

// HandleEvent verifies and applies one raw webhook delivery. A nil return
// means the event was consumed (including ignorable events); the provider
// must not retry it. ErrInvalidSignature is the only client-facing rejection.
func (s *WebhookService) HandleEvent(ctx context.Context, rawBody []byte, signatureHeader string) error {
	ev, err := s.Verifier.VerifyAndParse(rawBody, signatureHeader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	switch ev.Type {
	case EventSessionCompleted:
		return s.applySessionEvent(ctx, ev, model.PaymentStatusCompleted)
	case EventSessionExpired:
		return s.applySessionEvent(ctx, ev, model.PaymentStatusFailed)
	case EventInvoicePaid:
		return s.applyInvoiceEvent(ctx, ev, model.FollowUpStatusPaid)
	case EventInvoicePaymentFail:
		return s.applyInvoiceEvent(ctx, ev, model.FollowUpStatusFailed)
	default:
		s.Logger.Info("ignoring unrecognized webhook event", zap.String("type", ev.Type))
		return nil
	}
}

func (s *WebhookService) applySessionEvent(ctx context.Context, ev *ProviderEvent, target model.PaymentStatus) error {
	if ev.RentalID == "" {
		s.Logger.Warn("session event without rental id metadata",
			zap.String("type", ev.Type),
			zap.String("session_id", ev.SessionID),
		)
		return nil
	}
	rentalID, err := strconv.ParseInt(ev.RentalID, 10, 64)
	if err != nil {
		s.Logger.Warn("session event with malformed rental id",
			zap.String("type", ev.Type),
			zap.String("rental_id", ev.RentalID),
		)
		return nil
	}

	rental, err := s.Rentals.GetByID(ctx, rentalID)
	if err != nil {
		return err
	}
	if rental == nil {
		s.Logger.Warn("session event for unknown rental", zap.Int64("rental_id", rentalID))
		return nil
	}

	if rental.PaymentStatus == target {
		// duplicate delivery
		return nil
	}
	if rental.PaymentStatus.IsTerminal() {
		s.Logger.Warn("stale session event for terminal rental",
			zap.Int64("rental_id", rentalID),
			zap.String("type", ev.Type),
			zap.String("current_status", rental.PaymentStatus.String()),
		)
		return nil
	}

	var applied bool
	switch target {
	case model.PaymentStatusCompleted:
		applied, err = s.Rentals.MarkPaymentCompleted(ctx, rentalID)
	case model.PaymentStatusFailed:
		applied, err = s.Rentals.MarkPaymentFailed(ctx, rentalID)
	}
	if err != nil {
		return err
	}
	if !applied {
		// another delivery won the race; nothing left to do
		return nil
	}

	s.Logger.Info("rental payment status transitioned",
		zap.Int64("rental_id", rentalID),
		zap.String("status", target.String()),
	)

	if target == model.PaymentStatusCompleted {
		s.recordCustomerLink(ctx, rental.CustomerID, ev.ExternalCustomerID)
		s.sendReceipt(ctx, rental.CustomerID, rentalID)
	}
	return nil
}

func (s *WebhookService) applyInvoiceEvent(ctx context.Context, ev *ProviderEvent, target model.FollowUpStatus) error {
	if ev.InvoiceID == "" {
		s.Logger.Warn("invoice event without invoice id", zap.String("type", ev.Type))
		return nil
	}

	var applied bool
	var err error
	switch target {
	case model.FollowUpStatusPaid:
		applied, err = s.Rentals.MarkFollowUpPaid(ctx, ev.InvoiceID)
	case model.FollowUpStatusFailed:
		applied, err = s.Rentals.MarkFollowUpFailed(ctx, ev.InvoiceID)
	}
	if err != nil {
		return err
	}
	if !applied {
		s.Logger.Info("invoice event matched no pending follow-up",
			zap.String("type", ev.Type),
			zap.String("invoice_id", ev.InvoiceID),
		)
		return nil
	}

	s.Logger.Info("follow-up charge transitioned",
		zap.String("invoice_id", ev.InvoiceID),
		zap.String("status", target.String()),
	)
	return nil
}

// recordCustomerLink stores the provider customer reference learned from a
// completed session; sessions are created with off-session setup, so the
// saved-payment-method flag is set alongside it.
func (s *WebhookService) recordCustomerLink(ctx context.Context, customerID int64, externalCustomerID string) {
	if externalCustomerID == "" {
		return
	}
	if err := s.Customers.SetExternalCustomerID(ctx, customerID, externalCustomerID); err != nil {
		s.Logger.Warn("could not record external customer id",
			zap.Int64("customer_id", customerID),
			zap.Error(err),
		)
		return
	}
	if err := s.Customers.SetHasSavedPaymentMethod(ctx, customerID, true); err != nil {
		s.Logger.Warn("could not flag saved payment method",
			zap.Int64("customer_id", customerID),
			zap.Error(err),
		)
	}
}

func (s *WebhookService) sendReceipt(ctx context.Context, customerID, rentalID int64) {
	if s.Receipts == nil {
		return
	}
	customer, err := s.Customers.GetByID(ctx, customerID)
	if err != nil || customer == nil {
		return
	}
	if err := s.Receipts.SendReceiptEmail(ctx, customer.Email, rentalID); err != nil {
		s.Logger.Warn("receipt email send failed",
			zap.Int64("rental_id", rentalID),
			zap.Error(err),
		)
	}
}
