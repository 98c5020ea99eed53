package domain

import "time"

// HoldPolicy decides whether a reservation still occupies its seat.
// It is a pure function of the record and the supplied clock reading;
// the state machine performs the actual PENDING -> EXPIRED rewrite.
type HoldPolicy struct {
	// Window is the fixed duration a hold stays live, counted from
	// creation or from the most recent extension.
	Window time.Duration
}

// IsLive reports whether r occupies its seat at instant now. A PAID
// record is live forever; a PENDING record is live until its deadline.
func (p HoldPolicy) IsLive(r *Reservation, now time.Time) bool {
	switch r.Status {
	case ReservationStatusPaid:
		return true
	case ReservationStatusPending:
		return now.Before(r.ExpiresAt)
	default:
		return false
	}
}

// Overdue reports whether r is a PENDING record past its deadline, i.e.
// a candidate for the lazy expiry rewrite.
func (p HoldPolicy) Overdue(r *Reservation, now time.Time) bool {
	return r.Status == ReservationStatusPending && !now.Before(r.ExpiresAt)
}

// Deadline computes the expiry instant for a hold created or extended
// at now. Extension counts from now, not from the previous deadline.
func (p HoldPolicy) Deadline(now time.Time) time.Time {
	return now.Add(p.Window)
}
