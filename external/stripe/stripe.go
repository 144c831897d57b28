package stripe

import (
	"context"
	"errors"
	"os"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/invoice"
	"github.com/stripe/stripe-go/v79/invoiceitem"
	"github.com/stripe/stripe-go/v79/paymentmethod"
	"github.com/stripe/stripe-go/v79/setupintent"

	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/services"
)

// Gateway implements services.PaymentProvider on the Stripe SDK.
type Gateway struct {
	successURL    string
	cancelURL     string
	webhookSecret string
}

func NewGateway() (*Gateway, error) {
	key := os.Getenv("STRIPE_SECRET_KEY")
	if key == "" {
		return nil, errors.New("STRIPE_SECRET_KEY not set")
	}
	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		return nil, errors.New("STRIPE_WEBHOOK_SECRET not set")
	}

	stripe.Key = key

	return &Gateway{
		successURL:    os.Getenv("CHECKOUT_SUCCESS_URL"),
		cancelURL:     os.Getenv("CHECKOUT_CANCEL_URL"),
		webhookSecret: secret,
	}, nil
}

func (g *Gateway) CreateCheckoutSession(
	ctx context.Context,
	p services.CheckoutSessionParams,
) (*services.ProviderSession, error) {

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail:     stripe.String(p.CustomerEmail),
		ClientReferenceID: stripe.String(p.ClientReference),
		SuccessURL:        stripe.String(g.successURL),
		CancelURL:         stripe.String(g.cancelURL),
		CustomerCreation:  stripe.String(string(stripe.CheckoutSessionCustomerCreationAlways)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(p.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		// store the card for post-rental follow-up charges
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			SetupFutureUsage: stripe.String("off_session"),
		},
	}
	params.Context = ctx
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := session.New(params)
	if err != nil {
		return nil, err
	}

	return &services.ProviderSession{ID: s.ID, URL: s.URL}, nil
}

func (g *Gateway) GetCheckoutSession(ctx context.Context, sessionID string) (string, string, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := session.Get(sessionID, params)
	if err != nil {
		return "", "", err
	}

	externalCustomerID := ""
	if s.Customer != nil {
		externalCustomerID = s.Customer.ID
	}
	return s.Metadata["rental_id"], externalCustomerID, nil
}

func (g *Gateway) HasSavedPaymentMethod(ctx context.Context, externalCustomerID string) (bool, error) {
	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(externalCustomerID),
		Type:     stripe.String(string(stripe.PaymentMethodTypeCard)),
	}
	params.Context = ctx

	iter := paymentmethod.List(params)
	for iter.Next() {
		return true, nil
	}
	return false, iter.Err()
}

func (g *Gateway) CreateDraftInvoice(
	ctx context.Context,
	externalCustomerID string,
	daysUntilDue int64,
	metadata map[string]string,
) (string, error) {

	params := &stripe.InvoiceParams{
		Customer:         stripe.String(externalCustomerID),
		CollectionMethod: stripe.String(string(stripe.InvoiceCollectionMethodSendInvoice)),
		DaysUntilDue:     stripe.Int64(daysUntilDue),
		AutoAdvance:      stripe.Bool(false),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	inv, err := invoice.New(params)
	if err != nil {
		return "", err
	}
	return inv.ID, nil
}

func (g *Gateway) AddInvoiceLine(
	ctx context.Context,
	externalCustomerID, invoiceID string,
	amountCents int64,
	description, idempotencyKey string,
) error {

	params := &stripe.InvoiceItemParams{
		Customer:    stripe.String(externalCustomerID),
		Invoice:     stripe.String(invoiceID),
		Amount:      stripe.Int64(amountCents),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		Description: stripe.String(description),
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(idempotencyKey)

	_, err := invoiceitem.New(params)
	return err
}

func (g *Gateway) FinalizeInvoice(ctx context.Context, invoiceID string) (*services.ProviderInvoice, error) {
	params := &stripe.InvoiceFinalizeInvoiceParams{
		AutoAdvance: stripe.Bool(false),
	}
	params.Context = ctx

	inv, err := invoice.FinalizeInvoice(invoiceID, params)
	if err != nil {
		return nil, err
	}
	return &services.ProviderInvoice{
		ID:     inv.ID,
		URL:    inv.HostedInvoiceURL,
		Status: string(inv.Status),
	}, nil
}

func (g *Gateway) SendInvoice(ctx context.Context, invoiceID string) error {
	params := &stripe.InvoiceSendInvoiceParams{}
	params.Context = ctx

	_, err := invoice.SendInvoice(invoiceID, params)
	return err
}

func (g *Gateway) CreateSetupIntent(
	ctx context.Context,
	externalCustomerID string,
	metadata map[string]string,
) (string, string, error) {

	params := &stripe.SetupIntentParams{
		Customer:           stripe.String(externalCustomerID),
		Usage:              stripe.String(string(stripe.SetupIntentUsageOffSession)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	si, err := setupintent.New(params)
	if err != nil {
		return "", "", err
	}
	return si.ID, si.ClientSecret, nil
}
