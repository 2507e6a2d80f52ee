package services

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied means the principal lacks the required
	// (resource, permission) pair. Never retried.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound covers any referenced record that does not exist or does
	// not belong to the caller's tenant. Ownership is part of the lookup
	// predicate, so this is never conflated with ErrPermissionDenied.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidPaymentConfig means the tenant has no payment gateway
	// configured.
	ErrInvalidPaymentConfig = errors.New("payment gateway not configured")

	// ErrUnsupportedProvider means the stored provider tag is outside the
	// supported set. A configuration bug, never retried.
	ErrUnsupportedProvider = errors.New("unsupported payment provider")

	// ErrOrderClosed rejects new splits against an order whose status is
	// already terminal.
	ErrOrderClosed = errors.New("order is closed")

	// ErrTerminalState rejects transitions out of success/failed or
	// delivered/canceled.
	ErrTerminalState = errors.New("status is terminal")
)

// CredentialError wraps a failure to decrypt a stored provider secret. It
// must propagate to the caller; a corrupted secret has to block link
// generation instead of producing a broken URL. The plaintext is never part
// of the message.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credential vault: %v", e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// PaymentLinkError is a transient failure talking to the provider, whether
// generating a checkout link or verifying a transaction. The order stays
// persisted as pending; the caller may retry against the same order id.
type PaymentLinkError struct {
	Provider string
	Err      error
}

func (e *PaymentLinkError) Error() string {
	return fmt.Sprintf("payment link (%s): %v", e.Provider, e.Err)
}

func (e *PaymentLinkError) Unwrap() error { return e.Err }
