package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService creates hosted checkout sessions at the provider and owns
// the pending linkage between a session and a rental.
type PaymentService struct {
	Rentals   RentalStore
	Customers CustomerStore
	Provider  PaymentProvider
	Mailer    OpsMailer
	Logger    *zap.Logger
}

func NewPaymentService(
	rentals RentalStore,
	customers CustomerStore,
	provider PaymentProvider,
	mailer OpsMailer,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		Rentals:   rentals,
		Customers: customers,
		Provider:  provider,
		Mailer:    mailer,
		Logger:    logger,
	}
}

// InitiateRental creates the rental record a checkout attempt will mutate,
// upserting the customer row by email first.
func (s *PaymentService) InitiateRental(
	ctx context.Context,
	customerEmail string,
	deliveryAddress string,
	deliveryDate time.Time,
) (int64, error) {

	if strings.TrimSpace(customerEmail) == "" {
		return 0, fmt.Errorf("%w: customer email is required", ErrValidation)
	}
	if strings.TrimSpace(deliveryAddress) == "" {
		return 0, fmt.Errorf("%w: delivery address is required", ErrValidation)
	}

	customerID, err := s.Customers.UpsertByEmail(ctx, customerEmail)
	if err != nil {
		return 0, err
	}
	return s.Rentals.Create(ctx, customerID, deliveryAddress, deliveryDate)
}

// CreateSession creates the hosted payment session and persists
// paymentstatus=pending plus the session id before returning. A persistence
// failure after the provider call is reported as ErrOrphanedSession since the
// remote session remains chargeable.
func (s *PaymentService) CreateSession(
	ctx context.Context,
	rentalID int64,
	amountCents int64,
	customerEmail string,
	metadata map[string]string,
) (*ProviderSession, error) {

	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	rental, err := s.Rentals.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental == nil {
		return nil, ErrRentalNotFound
	}

	clientRef := fmt.Sprintf("RENTAL-%d-%s", rentalID, uuid.NewString())

	if metadata == nil {
		metadata = map[string]string{}
	}
	metadata["rental_id"] = strconv.FormatInt(rentalID, 10)
	metadata["client_reference"] = clientRef

	sess, err := s.Provider.CreateCheckoutSession(ctx, CheckoutSessionParams{
		AmountCents:     amountCents,
		Description:     fmt.Sprintf("Dumpster rental #%d", rentalID),
		CustomerEmail:   customerEmail,
		ClientReference: clientRef,
		Metadata:        metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	if err := s.Rentals.SetPaymentPending(ctx, rentalID, sess.ID); err != nil {
		s.alertOrphan(ctx, fmt.Sprintf(
			"checkout session %s exists at provider but rental %d has no linkage: %v",
			sess.ID, rentalID, err,
		))
		return nil, fmt.Errorf("session %s: %w", sess.ID, ErrOrphanedSession)
	}

	return sess, nil
}

// GetSessionInfo resolves a session id to the local rental and the provider
// customer, recording the external customer id the first time it is seen.
func (s *PaymentService) GetSessionInfo(ctx context.Context, sessionID string) (*SessionInfo, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrValidation)
	}

	rentalIDStr, externalCustomerID, err := s.Provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("fetch checkout session: %w", err)
	}

	info := &SessionInfo{ExternalCustomerID: externalCustomerID}

	rentalID, _ := strconv.ParseInt(rentalIDStr, 10, 64)
	if rentalID == 0 {
		// metadata missing; fall back to the local linkage
		if rental, rerr := s.Rentals.GetBySessionID(ctx, sessionID); rerr == nil && rental != nil {
			rentalID = rental.RentalID
		}
	}
	info.RentalID = rentalID

	if externalCustomerID != "" && rentalID != 0 {
		if rental, rerr := s.Rentals.GetByID(ctx, rentalID); rerr == nil && rental != nil {
			if err := s.Customers.SetExternalCustomerID(ctx, rental.CustomerID, externalCustomerID); err != nil {
				s.Logger.Warn("could not record external customer id",
					zap.Int64("customer_id", rental.CustomerID),
					zap.String("external_customer_id", externalCustomerID),
					zap.Error(err),
				)
			}
		}
	}

	if externalCustomerID != "" {
		saved, perr := s.Provider.HasSavedPaymentMethod(ctx, externalCustomerID)
		if perr != nil {
			s.Logger.Warn("payment method lookup failed",
				zap.String("external_customer_id", externalCustomerID),
				zap.Error(perr),
			)
		}
		info.HasSavedCard = saved
	}

	return info, nil
}

func (s *PaymentService) alertOrphan(ctx context.Context, body string) {
	s.Logger.Error("orphaned external resource", zap.String("detail", body))
	if s.Mailer == nil {
		return
	}
	if err := s.Mailer.SendOpsAlert(ctx, "orphaned checkout session", body); err != nil {
		s.Logger.Warn("ops alert send failed", zap.Error(err))
	}
}
