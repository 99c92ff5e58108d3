package booking

import "fmt"

// ValidationError signals malformed caller input. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError signals a missing property or booking.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ForbiddenError signals an actor not authorized for the booking.
type ForbiddenError struct {
	Actor     string
	BookingID string
}

func (e ForbiddenError) Error() string {
	return fmt.Sprintf("actor %s is not authorized for booking %s", e.Actor, e.BookingID)
}

// InvalidStateError signals an operation illegal for the booking's current
// lifecycle state, such as deciding an already-decided booking.
type InvalidStateError struct {
	BookingID string
	State     string
	Op        string
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s booking %s in state %s", e.Op, e.BookingID, e.State)
}

// PaymentTimeoutError signals that status polling exhausted its attempt
// budget. The booking is left pending so a late callback can still resolve it.
type PaymentTimeoutError struct {
	BookingID string
	Attempts  int
}

func (e PaymentTimeoutError) Error() string {
	return fmt.Sprintf("payment for booking %s still pending after %d polls", e.BookingID, e.Attempts)
}
