package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means no user session exists; no writes were attempted.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrMissingCustomer means the cart has no billing identity attached.
	ErrMissingCustomer = errors.New("checkout requires a customer record")

	// ErrEmptyCart means checkout was attempted with no items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInsufficientBalance means the account balance does not cover the
	// cart total. Checked strictly before any write.
	ErrInsufficientBalance = errors.New("insufficient account balance")

	// ErrNoActiveSession means a confirmation signal or cancellation arrived
	// for a reference with no running watcher.
	ErrNoActiveSession = errors.New("no active payment session for reference")

	// ErrPaymentCancelled is the outcome of a user-initiated frame close.
	// It is a normal outcome, not a failure: control returns to method
	// selection.
	ErrPaymentCancelled = errors.New("payment cancelled by user")
)

type PersistStage string

const (
	StageCustomer PersistStage = "customer"
	StageOrder    PersistStage = "order"
	StageItems    PersistStage = "items"
	StageInvoice  PersistStage = "invoice"
)

// PersistError reports which of the dependency-ordered checkout writes
// failed. Later stages are never attempted after a failure.
type PersistError struct {
	Stage PersistStage
	Err   error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("order persistence failed at %s stage: %v", e.Stage, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
