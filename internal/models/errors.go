package models

import (
	"errors"
	"fmt"
)

// Domain errors. Services return these unwrapped (or wrapped with %w) so the
// HTTP boundary can map them to status codes without string matching.
var (
	ErrEventNotFound       = errors.New("event not found")
	ErrCalendarNotFound    = errors.New("calendar not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrInvalidTicketType   = errors.New("ticket type has no price for this event")
	ErrTicketUnavailable   = errors.New("not enough available tickets")
	ErrTicketCantBeDeleted = errors.New("ticket batch has reserved or sold tickets")
	ErrTicketNotSold       = errors.New("ticket is not sold")
	ErrTotalAmountMismatch = errors.New("total amount does not match catalog price")
	ErrNegativePrice       = errors.New("unit price must not be negative")
)

// StorageError wraps a persistence failure. The triggering write is
// transactional, so the operation it aborted left no partial rows behind.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PaymentOrderError is a provider failure while creating a payment order.
// Issue carries the short machine-readable code extracted from the provider's
// error payload, when one was present.
type PaymentOrderError struct {
	Issue string
	Err   error
}

func (e *PaymentOrderError) Error() string {
	if e.Issue != "" {
		return fmt.Sprintf("payment order failed (%s): %v", e.Issue, e.Err)
	}
	return fmt.Sprintf("payment order failed: %v", e.Err)
}

func (e *PaymentOrderError) Unwrap() error { return e.Err }

// OrderCaptureError is a provider failure while capturing a payment order.
type OrderCaptureError struct {
	Issue string
	Err   error
}

func (e *OrderCaptureError) Error() string {
	if e.Issue != "" {
		return fmt.Sprintf("order capture failed (%s): %v", e.Issue, e.Err)
	}
	return fmt.Sprintf("order capture failed: %v", e.Err)
}

func (e *OrderCaptureError) Unwrap() error { return e.Err }
