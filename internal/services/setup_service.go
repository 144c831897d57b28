package services

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

type SetupIntentResult struct {
	SetupIntentID string `json:"setup_intent_id"`
	ClientSecret  string `json:"client_secret"`
}

// SetupService issues setup intents so a payment method can be stored for
// later merchant-initiated charges.
type SetupService struct {
	Customers CustomerStore
	Provider  PaymentProvider
	Logger    *zap.Logger
}

func NewSetupService(customers CustomerStore, provider PaymentProvider, logger *zap.Logger) *SetupService {
	return &SetupService{
		Customers: customers,
		Provider:  provider,
		Logger:    logger,
	}
}

// CreateSetupIntent cross-checks the external customer reference against the
// local customers table before any provider call; setup tokens are never
// issued for identifiers we have not verified ourselves. The resulting token
// is scoped to off-session use only.
func (s *SetupService) CreateSetupIntent(
	ctx context.Context,
	externalCustomerID string,
	rentalID int64,
) (*SetupIntentResult, error) {

	if externalCustomerID == "" {
		return nil, fmt.Errorf("%w: external customer id is required", ErrValidation)
	}

	customer, err := s.Customers.GetByExternalID(ctx, externalCustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}

	metadata := map[string]string{
		"customer_id": strconv.FormatInt(customer.CustomerID, 10),
	}
	if rentalID > 0 {
		metadata["rental_id"] = strconv.FormatInt(rentalID, 10)
	}

	intentID, clientSecret, err := s.Provider.CreateSetupIntent(ctx, externalCustomerID, metadata)
	if err != nil {
		return nil, fmt.Errorf("create setup intent: %w", err)
	}

	s.Logger.Info("setup intent issued",
		zap.Int64("customer_id", customer.CustomerID),
		zap.String("setup_intent_id", intentID),
	)

	return &SetupIntentResult{
		SetupIntentID: intentID,
		ClientSecret:  clientSecret,
	}, nil
}
