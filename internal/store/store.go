package store

import (
	"context"
	"sync"
	"time"

	"github.com/utopia-air/booking/internal/domain"
)

// MemoryStore is an in-memory reservation store guarded by a single
// mutex. Every mutating call is one critical section, so the seat index
// and the booking-ID index can never be observed half-updated. It backs
// the memory storage driver and the engine's concurrency tests.
type MemoryStore struct {
	mu     sync.Mutex
	policy domain.HoldPolicy
	nowFn  func() time.Time

	byID map[string]*domain.Reservation
	// bySeat tracks the most recent reservation per seat. Whether that
	// record actually occupies the seat is decided by the hold policy.
	bySeat map[domain.SeatLocation]string
}

func NewMemoryStore(policy domain.HoldPolicy) *MemoryStore {
	return &MemoryStore{
		policy: policy,
		nowFn:  time.Now,
		byID:   make(map[string]*domain.Reservation),
		bySeat: make(map[domain.SeatLocation]string),
	}
}

// WithClock overrides the store's clock. Tests use it to simulate
// elapsed time without sleeping.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.nowFn = now
	return s
}

// CreatePending checks seat exclusivity and inserts the reservation in
// one critical section. A stale PENDING holder of the seat is rewritten
// to EXPIRED inside the same section, so exactly one of any number of
// concurrent callers for the same seat succeeds.
func (s *MemoryStore) CreatePending(ctx context.Context, r *domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[r.BookingID]; ok {
		return domain.ErrDuplicateBookingID
	}

	now := s.nowFn()
	if id, ok := s.bySeat[r.Seat]; ok {
		holder := s.byID[id]
		if s.policy.IsLive(holder, now) {
			return domain.ErrSeatUnavailable
		}
		if s.policy.Overdue(holder, now) {
			holder.Status = domain.ReservationStatusExpired
			holder.UpdatedAt = now
		}
	}

	r.Status = domain.ReservationStatusPending
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	stored := *r
	s.byID[r.BookingID] = &stored
	s.bySeat[r.Seat] = r.BookingID
	return nil
}

// GetByBookingID returns a copy of the reservation, or ErrNotFound.
func (s *MemoryStore) GetByBookingID(ctx context.Context, bookingID string) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[bookingID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *r
	return &out, nil
}

// GetBySeat returns the most recent reservation for the seat, live or
// not, or ErrNotFound if the seat has never been booked.
func (s *MemoryStore) GetBySeat(ctx context.Context, seat domain.SeatLocation) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.bySeat[seat]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *s.byID[id]
	return &out, nil
}

// Transition moves the reservation from one status to another as a
// compare-and-swap. The loser of two racing transitions observes the
// winner's state and gets ErrInvalidState.
func (s *MemoryStore) Transition(ctx context.Context, bookingID string, from, to domain.ReservationStatus) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[bookingID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if r.Status != from {
		return nil, domain.ErrInvalidState
	}
	r.Status = to
	r.UpdatedAt = s.nowFn()
	out := *r
	return &out, nil
}

// ExtendDeadline replaces the expiry deadline of a PENDING reservation.
func (s *MemoryStore) ExtendDeadline(ctx context.Context, bookingID string, deadline time.Time) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[bookingID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if r.Status != domain.ReservationStatusPending {
		return nil, domain.ErrInvalidState
	}
	r.ExpiresAt = deadline
	r.UpdatedAt = s.nowFn()
	out := *r
	return &out, nil
}

// ExpireOverdue rewrites every PENDING reservation past its deadline to
// EXPIRED and returns the affected records. Used by the sweep worker;
// foreground operations do not depend on it.
func (s *MemoryStore) ExpireOverdue(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []domain.Reservation
	for _, r := range s.byID {
		if s.policy.Overdue(r, now) {
			r.Status = domain.ReservationStatusExpired
			r.UpdatedAt = now
			expired = append(expired, *r)
		}
	}
	return expired, nil
}
