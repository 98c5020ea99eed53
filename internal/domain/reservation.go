package domain

import (
	"fmt"
	"time"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusPaid      ReservationStatus = "PAID"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
	ReservationStatusExpired   ReservationStatus = "EXPIRED"
)

// Terminal reports whether no further transition is allowed out of s.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationStatusPaid || s == ReservationStatusCancelled || s == ReservationStatusExpired
}

// SeatLocation identifies one physical seat on a flight. It is a value
// type: two locations are the same seat iff all three fields match.
type SeatLocation struct {
	FlightID int64  `json:"flight_id"`
	Row      int    `json:"row"`
	Seat     string `json:"seat"`
}

func (l SeatLocation) String() string {
	return fmt.Sprintf("flight %d row %d seat %s", l.FlightID, l.Row, l.Seat)
}

// Holder is the customer identity supplied at booking time.
type Holder struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Reservation is a time-bounded claim on a seat. While PENDING it holds
// the seat until ExpiresAt; paying converts it to a permanent PAID
// record. CANCELLED and EXPIRED records stay in the store as history and
// no longer occupy the seat.
type Reservation struct {
	BookingID  string
	Seat       SeatLocation
	Holder     Holder
	PriceCents int64
	Status     ReservationStatus
	ExpiresAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
