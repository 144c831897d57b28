package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/model"

	"github.com/badoux/checkmail"
)

type CheckoutStep int

const (
	StepCustomerInfo CheckoutStep = iota
	StepInsuranceOptions
	StepReview
)

func (s CheckoutStep) String() string {
	switch s {
	case StepCustomerInfo:
		return "customer_info"
	case StepInsuranceOptions:
		return "insurance_options"
	case StepReview:
		return "review"
	}
	return "unknown"
}

// FieldErrors maps field name to a user-facing message. Empty means valid.
type FieldErrors map[string]string

// CheckoutOrchestrator drives the step sequence over a caller-owned draft.
// It holds no authoritative state and makes no network call before Complete.
type CheckoutOrchestrator struct {
	draft   *model.CheckoutDraft
	step    CheckoutStep
	pricing *PricingService
	gateway SessionCreator
}

// SessionCreator is the slice of the payment gateway the orchestrator needs.
type SessionCreator interface {
	CreateSession(ctx context.Context, rentalID, amountCents int64, customerEmail string, metadata map[string]string) (*ProviderSession, error)
}

func NewCheckoutOrchestrator(
	draft *model.CheckoutDraft,
	pricing *PricingService,
	gateway SessionCreator,
) *CheckoutOrchestrator {
	return &CheckoutOrchestrator{
		draft:   draft,
		step:    StepCustomerInfo,
		pricing: pricing,
		gateway: gateway,
	}
}

func (o *CheckoutOrchestrator) Step() CheckoutStep {
	return o.step
}

// Validate checks the current step only.
func (o *CheckoutOrchestrator) Validate() FieldErrors {
	switch o.step {
	case StepCustomerInfo:
		return validateCustomerInfo(o.draft.Customer)
	case StepInsuranceOptions:
		// Add-ons are independent booleans; any combination is valid.
		return nil
	case StepReview:
		return o.validateReview()
	}
	return nil
}

// Next advances to the following step when the current one validates.
// Returned field errors mean the step did not advance.
func (o *CheckoutOrchestrator) Next() FieldErrors {
	if fe := o.Validate(); len(fe) > 0 {
		return fe
	}
	if o.step < StepReview {
		o.step++
	}
	return nil
}

// Back never validates and never fails below the first step.
func (o *CheckoutOrchestrator) Back() {
	if o.step > StepCustomerInfo {
		o.step--
	}
}

// Complete is only legal on the review step. It computes the quote and hands
// the total plus customer/delivery data to the payment session gateway.
func (o *CheckoutOrchestrator) Complete(ctx context.Context) (*ProviderSession, model.PriceQuote, error) {
	if o.step != StepReview {
		return nil, model.PriceQuote{}, fmt.Errorf("%w: checkout not at review step", ErrValidation)
	}
	if fe := o.validateReview(); len(fe) > 0 {
		return nil, model.PriceQuote{}, fmt.Errorf("%w: review step incomplete", ErrValidation)
	}

	quote := o.pricing.Quote(o.draft.Cart.Total, o.draft.Insurance, o.draft.PostalCode)

	metadata := map[string]string{
		"rental_id":        strconv.FormatInt(o.draft.RentalID, 10),
		"delivery_address": o.draft.DeliveryAddress,
		"delivery_date":    o.draft.DeliveryDate.Format("2006-01-02"),
	}

	sess, err := o.gateway.CreateSession(
		ctx,
		o.draft.RentalID,
		ToCents(quote.Total),
		o.draft.Customer.Email,
		metadata,
	)
	if err != nil {
		return nil, model.PriceQuote{}, err
	}
	return sess, quote, nil
}

func validateCustomerInfo(info model.CustomerInfo) FieldErrors {
	fe := FieldErrors{}

	if info.IsBusiness {
		if strings.TrimSpace(info.CompanyName) == "" {
			fe["company_name"] = "company name is required"
		}
	} else {
		if strings.TrimSpace(info.FirstName) == "" {
			fe["first_name"] = "first name is required"
		}
		if strings.TrimSpace(info.LastName) == "" {
			fe["last_name"] = "last name is required"
		}
	}

	if strings.TrimSpace(info.Email) == "" {
		fe["email"] = "email is required"
	} else if err := checkmail.ValidateFormat(info.Email); err != nil {
		fe["email"] = "email address is not valid"
	}

	if strings.TrimSpace(info.Phone) == "" {
		fe["phone"] = "phone is required"
	}

	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (o *CheckoutOrchestrator) validateReview() FieldErrors {
	fe := FieldErrors{}
	if o.draft.RentalID <= 0 {
		fe["rental_id"] = "rental id is required"
	}
	if len(o.draft.Cart.Lines) == 0 {
		fe["cart"] = "cart is empty"
	}
	if strings.TrimSpace(o.draft.DeliveryAddress) == "" {
		fe["delivery_address"] = "delivery address is required"
	}
	if o.draft.DeliveryDate.IsZero() {
		fe["delivery_date"] = "delivery date is required"
	}
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// RunToCompletion replays the server-side draft through every step, so the
// same validation applies whether the client walked the steps or posted the
// draft in one request. Field errors carry the step they came from.
func (o *CheckoutOrchestrator) RunToCompletion(ctx context.Context) (*ProviderSession, model.PriceQuote, FieldErrors, error) {
	for o.step < StepReview {
		if fe := o.Next(); len(fe) > 0 {
			return nil, model.PriceQuote{}, fe, fmt.Errorf("%w: %s step rejected", ErrValidation, o.step)
		}
	}
	if fe := o.Validate(); len(fe) > 0 {
		return nil, model.PriceQuote{}, fe, fmt.Errorf("%w: review step rejected", ErrValidation)
	}
	sess, quote, err := o.Complete(ctx)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return nil, model.PriceQuote{}, FieldErrors{"checkout": err.Error()}, err
		}
		return nil, model.PriceQuote{}, nil, err
	}
	return sess, quote, nil, nil
}
