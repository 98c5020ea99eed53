package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHoldPolicy_IsLive(t *testing.T) {
	policy := HoldPolicy{Window: 10 * time.Minute}
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		status    ReservationStatus
		expiresAt time.Time
		live      bool
	}{
		{"pending before deadline", ReservationStatusPending, now.Add(time.Minute), true},
		{"pending at deadline", ReservationStatusPending, now, false},
		{"pending past deadline", ReservationStatusPending, now.Add(-time.Minute), false},
		{"paid is live forever", ReservationStatusPaid, now.Add(-time.Hour), true},
		{"cancelled is not live", ReservationStatusCancelled, now.Add(time.Hour), false},
		{"expired is not live", ReservationStatusExpired, now.Add(time.Hour), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := &Reservation{Status: tc.status, ExpiresAt: tc.expiresAt}
			assert.Equal(t, tc.live, policy.IsLive(r, now))
		})
	}
}

func TestHoldPolicy_Overdue(t *testing.T) {
	policy := HoldPolicy{Window: 10 * time.Minute}
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, policy.Overdue(&Reservation{Status: ReservationStatusPending, ExpiresAt: now}, now))
	assert.False(t, policy.Overdue(&Reservation{Status: ReservationStatusPending, ExpiresAt: now.Add(time.Second)}, now))
	// Only PENDING records can be overdue.
	assert.False(t, policy.Overdue(&Reservation{Status: ReservationStatusExpired, ExpiresAt: now.Add(-time.Hour)}, now))
	assert.False(t, policy.Overdue(&Reservation{Status: ReservationStatusPaid, ExpiresAt: now.Add(-time.Hour)}, now))
}

func TestHoldPolicy_Deadline(t *testing.T) {
	policy := HoldPolicy{Window: 10 * time.Minute}
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(10*time.Minute), policy.Deadline(now))
}

func TestFlight_HasSeat(t *testing.T) {
	f := &Flight{Rows: 30, SeatLetters: "ABCDEF"}

	assert.True(t, f.HasSeat(1, "A"))
	assert.True(t, f.HasSeat(30, "F"))
	assert.False(t, f.HasSeat(0, "A"))
	assert.False(t, f.HasSeat(31, "A"))
	assert.False(t, f.HasSeat(12, "G"))
	assert.False(t, f.HasSeat(12, ""))
	assert.False(t, f.HasSeat(12, "AB"))
}
