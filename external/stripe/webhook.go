package stripe

import (
	"encoding/json"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/services"
)

// VerifyAndParse checks the Stripe-Signature header against the shared
// secret and decodes the payload for the event types this core reacts to.
// Only signature failures return an error; payload oddities surface as
// zero fields so the reconciler can acknowledge and log them.
func (g *Gateway) VerifyAndParse(payload []byte, signatureHeader string) (*services.ProviderEvent, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		return nil, err
	}

	ev := &services.ProviderEvent{Type: string(event.Type)}

	switch ev.Type {
	case services.EventSessionCompleted, services.EventSessionExpired:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err == nil {
			ev.SessionID = s.ID
			ev.RentalID = s.Metadata["rental_id"]
			if s.Customer != nil {
				ev.ExternalCustomerID = s.Customer.ID
			}
		}
	case services.EventInvoicePaid, services.EventInvoicePaymentFail:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err == nil {
			ev.InvoiceID = inv.ID
			ev.RentalID = inv.Metadata["rental_id"]
		}
	}

	return ev, nil
}
