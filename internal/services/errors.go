package services

import "errors"

var (
	ErrValidation            = errors.New("invalid input")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrRentalNotFound        = errors.New("rental not found")
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrNoPaymentMethodOnFile = errors.New("no payment method on file")
	ErrDuplicateFollowUp     = errors.New("follow-up charge already issued for this rental")
	ErrInvalidSignature      = errors.New("invalid webhook signature")

	// Orphaned-resource errors mean the provider-side object exists but the
	// local write failed. They carry the external id in the wrapping message
	// so an out-of-band reconciliation sweep can find the object.
	ErrOrphanedSession = errors.New("checkout session created but rental not linked")
	ErrOrphanedInvoice = errors.New("invoice created but rental not updated")
)
