package services

import (
	"context"
	"testing"
	"time"

	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingGateway struct {
	RentalID    int64
	AmountCents int64
	Email       string
	Metadata    map[string]string
	Calls       int
	Err         error
}

func (g *capturingGateway) CreateSession(_ context.Context, rentalID, amountCents int64, customerEmail string, metadata map[string]string) (*ProviderSession, error) {
	g.Calls++
	g.RentalID = rentalID
	g.AmountCents = amountCents
	g.Email = customerEmail
	g.Metadata = metadata
	if g.Err != nil {
		return nil, g.Err
	}
	return &ProviderSession{ID: "cs_test_1", URL: "https://pay.example/cs_test_1"}, nil
}

func validDraft() *model.CheckoutDraft {
	return &model.CheckoutDraft{
		RentalID: 7,
		Customer: model.CustomerInfo{
			FirstName: "Dana",
			LastName:  "Whitmore",
			Email:     "dana@example.com",
			Phone:     "801-555-0142",
		},
		Insurance:       model.InsuranceSelection{DrivewayProtection: true, RushDelivery: true},
		DeliveryAddress: "450 S Main St, Salt Lake City",
		DeliveryDate:    time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		PostalCode:      "84101",
		Cart: model.CartState{
			Lines: []model.CartLine{{
				CatalogItemID:     1,
				UnitPrice:         decimal.RequireFromString("300.00"),
				Quantity:          1,
				AvailableQuantity: 3,
			}},
			ItemCount: 1,
			Total:     decimal.RequireFromString("300.00"),
		},
	}
}

func TestOrchestrator_CustomerInfoValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*model.CustomerInfo)
		wantField string
	}{
		{"missing first name", func(c *model.CustomerInfo) { c.FirstName = "" }, "first_name"},
		{"missing last name", func(c *model.CustomerInfo) { c.LastName = "" }, "last_name"},
		{"missing email", func(c *model.CustomerInfo) { c.Email = "" }, "email"},
		{"malformed email", func(c *model.CustomerInfo) { c.Email = "not-an-email" }, "email"},
		{"missing phone", func(c *model.CustomerInfo) { c.Phone = "" }, "phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := validDraft()
			tt.mutate(&draft.Customer)
			o := NewCheckoutOrchestrator(draft, NewPricingService(), &capturingGateway{})

			fe := o.Next()
			require.NotEmpty(t, fe)
			assert.Contains(t, fe, tt.wantField)
			assert.Equal(t, StepCustomerInfo, o.Step())
		})
	}
}

func TestOrchestrator_BusinessWaivesLastName(t *testing.T) {
	draft := validDraft()
	draft.Customer.IsBusiness = true
	draft.Customer.FirstName = ""
	draft.Customer.LastName = ""
	draft.Customer.CompanyName = "Wasatch Builders LLC"

	o := NewCheckoutOrchestrator(draft, NewPricingService(), &capturingGateway{})
	assert.Empty(t, o.Next())
	assert.Equal(t, StepInsuranceOptions, o.Step())

	// but a business with no company name is rejected
	draft2 := validDraft()
	draft2.Customer.IsBusiness = true
	draft2.Customer.CompanyName = ""
	o2 := NewCheckoutOrchestrator(draft2, NewPricingService(), &capturingGateway{})
	fe := o2.Next()
	assert.Contains(t, fe, "company_name")
}

func TestOrchestrator_BackNeverValidates(t *testing.T) {
	draft := validDraft()
	o := NewCheckoutOrchestrator(draft, NewPricingService(), &capturingGateway{})

	require.Empty(t, o.Next())
	require.Equal(t, StepInsuranceOptions, o.Step())

	// break the already-passed step, then navigate backward
	draft.Customer.Email = "broken"
	o.Back()
	assert.Equal(t, StepCustomerInfo, o.Step())

	// backward below the first step is a no-op
	o.Back()
	assert.Equal(t, StepCustomerInfo, o.Step())
}

func TestOrchestrator_CompleteOnlyOnReviewStep(t *testing.T) {
	gw := &capturingGateway{}
	o := NewCheckoutOrchestrator(validDraft(), NewPricingService(), gw)

	_, _, err := o.Complete(context.Background())
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, gw.Calls)
}

func TestOrchestrator_CompleteHandsTotalToGateway(t *testing.T) {
	gw := &capturingGateway{}
	o := NewCheckoutOrchestrator(validDraft(), NewPricingService(), gw)

	sess, quote, fieldErrs, err := o.RunToCompletion(context.Background())
	require.NoError(t, err)
	require.Empty(t, fieldErrs)
	require.NotNil(t, sess)

	// 300.00 + 100.00 add-ons + 19.50 tax
	assert.Equal(t, int64(41950), gw.AmountCents)
	assert.Equal(t, int64(7), gw.RentalID)
	assert.Equal(t, "dana@example.com", gw.Email)
	assert.Equal(t, "7", gw.Metadata["rental_id"])
	assert.Equal(t, "2026-09-10", gw.Metadata["delivery_date"])
	assert.Equal(t, "419.50", RoundCents(quote.Total).StringFixed(2))
}

func TestOrchestrator_EmptyCartRejectedAtReview(t *testing.T) {
	draft := validDraft()
	draft.Cart = model.CartState{}
	gw := &capturingGateway{}
	o := NewCheckoutOrchestrator(draft, NewPricingService(), gw)

	_, _, fieldErrs, err := o.RunToCompletion(context.Background())
	require.Error(t, err)
	assert.Contains(t, fieldErrs, "cart")
	assert.Zero(t, gw.Calls)
}
