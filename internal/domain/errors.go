package domain

import "errors"

// Failure taxonomy of the reservation engine. Every operation returns
// one of these (possibly wrapped); the API layer maps them onto HTTP
// statuses with errors.Is instead of inspecting messages.
var (
	// ErrUnknownSeat means the flight/row/seat combination does not
	// exist in the seat directory.
	ErrUnknownSeat = errors.New("unknown seat")

	// ErrSeatUnavailable means a live (PENDING or PAID) reservation
	// already occupies the seat.
	ErrSeatUnavailable = errors.New("seat unavailable")

	// ErrNotFound means no reservation matches the seat or booking ID.
	ErrNotFound = errors.New("reservation not found")

	// ErrHoldExpired means the hold lapsed before the operation arrived.
	ErrHoldExpired = errors.New("hold expired")

	// ErrAmountMismatch means the presented payment does not equal the
	// reservation price.
	ErrAmountMismatch = errors.New("payment amount mismatch")

	// ErrInvalidState means the reservation is not in a state the
	// operation accepts.
	ErrInvalidState = errors.New("invalid reservation state")

	// ErrIDGeneration means booking-ID generation kept colliding past
	// the retry bound. Internal, not caller-correctable.
	ErrIDGeneration = errors.New("booking id generation failed")

	// ErrDuplicateBookingID is returned by the store when an insert
	// collides on booking ID. The generator retries on it; it never
	// reaches callers.
	ErrDuplicateBookingID = errors.New("duplicate booking id")
)
