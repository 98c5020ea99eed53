package reservation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/utopia-air/booking/internal/domain"
	"github.com/utopia-air/booking/internal/kafka"
)

// idAttempts bounds the booking-ID collision retry loop. Exhausting it
// means the ID space is misbehaving and is surfaced as ErrIDGeneration.
const idAttempts = 5

type ReservationUseCase interface {
	Book(ctx context.Context, seat domain.SeatLocation, holder domain.Holder, priceCents int64) (*domain.Reservation, error)
	AcceptPayment(ctx context.Context, bookingID string, amountCents int64) (*domain.Reservation, error)
	CancelPendingReservation(ctx context.Context, bookingID string) error
	ExtendReservationTimeout(ctx context.Context, bookingID string) (*domain.Reservation, error)
	GetTicket(ctx context.Context, seat domain.SeatLocation) (*domain.Reservation, error)
	GetBooking(ctx context.Context, bookingID string) (*domain.Reservation, error)
	ExpireOverdueReservations(ctx context.Context) ([]domain.Reservation, error)
}

// ReservationStore is the authoritative collection of reservation
// records. Implementations must apply each call as one atomic unit over
// both the seat index and the booking-ID index.
type ReservationStore interface {
	CreatePending(ctx context.Context, r *domain.Reservation) error
	GetByBookingID(ctx context.Context, bookingID string) (*domain.Reservation, error)
	GetBySeat(ctx context.Context, seat domain.SeatLocation) (*domain.Reservation, error)
	Transition(ctx context.Context, bookingID string, from, to domain.ReservationStatus) (*domain.Reservation, error)
	ExtendDeadline(ctx context.Context, bookingID string, deadline time.Time) (*domain.Reservation, error)
	ExpireOverdue(ctx context.Context, now time.Time) ([]domain.Reservation, error)
}

// SeatDirectory validates that a seat exists and is bookable.
type SeatDirectory interface {
	Resolve(ctx context.Context, flightID int64) (*domain.Flight, error)
	Exists(ctx context.Context, seat domain.SeatLocation) (bool, error)
}

// Cache is an optional fast-path seat lock in front of the store's
// authoritative exclusivity check.
type Cache interface {
	AcquireSeatLock(ctx context.Context, seat domain.SeatLocation, ttl time.Duration) (bool, error)
	ReleaseSeatLock(ctx context.Context, seat domain.SeatLocation) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Service is the reservation state machine. All seat-hold transitions
// go through here; the store adjudicates races, the hold policy decides
// liveness, and Kafka hears about every transition that sticks.
type Service struct {
	store     ReservationStore
	directory SeatDirectory
	cache     Cache
	producer  Producer
	topic     string
	policy    domain.HoldPolicy
	now       func() time.Time
}

type ServiceOption func(*Service)

// WithCache attaches a seat-lock cache.
func WithCache(cache Cache) ServiceOption {
	return func(s *Service) { s.cache = cache }
}

// WithProducer attaches an event producer publishing to topic.
func WithProducer(producer Producer, topic string) ServiceOption {
	return func(s *Service) {
		s.producer = producer
		s.topic = topic
	}
}

// WithClock overrides the service clock, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(store ReservationStore, directory SeatDirectory, holdWindow time.Duration, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		directory: directory,
		policy:    domain.HoldPolicy{Window: holdWindow},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Book places a PENDING hold on the seat. The store's check-and-insert
// is atomic, so of N concurrent calls for the same seat exactly one
// succeeds and the rest get ErrSeatUnavailable. A zero price falls back
// to the flight's list price.
func (s *Service) Book(ctx context.Context, seat domain.SeatLocation, holder domain.Holder, priceCents int64) (*domain.Reservation, error) {
	if holder.UserID == "" {
		return nil, fmt.Errorf("holder user id is required")
	}

	flight, err := s.directory.Resolve(ctx, seat.FlightID)
	if err != nil {
		return nil, domain.ErrUnknownSeat
	}
	if !flight.HasSeat(seat.Row, seat.Seat) {
		return nil, domain.ErrUnknownSeat
	}
	if priceCents == 0 {
		priceCents = flight.PriceCents
	}
	if priceCents < 0 {
		return nil, fmt.Errorf("price must not be negative")
	}

	locked := false
	if s.cache != nil {
		ok, err := s.cache.AcquireSeatLock(ctx, seat, s.policy.Window)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrSeatUnavailable
		}
		locked = true
	}

	now := s.now()
	for attempt := 0; attempt < idAttempts; attempt++ {
		r := &domain.Reservation{
			BookingID:  uuid.NewString(),
			Seat:       seat,
			Holder:     holder,
			PriceCents: priceCents,
			ExpiresAt:  s.policy.Deadline(now),
			CreatedAt:  now,
		}
		err := s.store.CreatePending(ctx, r)
		if errors.Is(err, domain.ErrDuplicateBookingID) {
			continue
		}
		if err != nil {
			if locked {
				_ = s.cache.ReleaseSeatLock(ctx, seat)
			}
			return nil, err
		}
		s.publish(ctx, kafka.EventReservationCreated, r)
		return r, nil
	}

	if locked {
		_ = s.cache.ReleaseSeatLock(ctx, seat)
	}
	return nil, fmt.Errorf("%w: %d attempts exhausted", domain.ErrIDGeneration, idAttempts)
}

// AcceptPayment transitions a PENDING hold to PAID. It is deliberately
// not idempotent: paying an already-PAID record fails ErrInvalidState.
func (s *Service) AcceptPayment(ctx context.Context, bookingID string, amountCents int64) (*domain.Reservation, error) {
	current, err := s.store.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if s.policy.Overdue(current, s.now()) {
		s.lazyExpire(ctx, current)
		return nil, domain.ErrHoldExpired
	}
	if current.Status != domain.ReservationStatusPending {
		return nil, domain.ErrInvalidState
	}
	if amountCents != current.PriceCents {
		return nil, domain.ErrAmountMismatch
	}

	updated, err := s.store.Transition(ctx, bookingID, domain.ReservationStatusPending, domain.ReservationStatusPaid)
	if err != nil {
		// Lost the race against a concurrent cancel or expiry.
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.ReleaseSeatLock(ctx, updated.Seat)
	}
	s.publish(ctx, kafka.EventReservationPaid, updated)
	return updated, nil
}

// CancelPendingReservation transitions a PENDING hold to CANCELLED and
// frees the seat. Cancelling an already-CANCELLED or already-EXPIRED
// record succeeds idempotently; a PAID ticket cannot be cancelled here.
func (s *Service) CancelPendingReservation(ctx context.Context, bookingID string) error {
	current, err := s.store.GetByBookingID(ctx, bookingID)
	if err != nil {
		return err
	}
	switch current.Status {
	case domain.ReservationStatusCancelled, domain.ReservationStatusExpired:
		return nil
	case domain.ReservationStatusPaid:
		return domain.ErrInvalidState
	}

	// An overdue hold is still cancellable: the holder walking away is
	// the same outcome the expiry rewrite would have produced.
	updated, err := s.store.Transition(ctx, bookingID, domain.ReservationStatusPending, domain.ReservationStatusCancelled)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			if post, getErr := s.store.GetByBookingID(ctx, bookingID); getErr == nil && post.Status != domain.ReservationStatusPaid {
				return nil
			}
		}
		return err
	}
	if s.cache != nil {
		_ = s.cache.ReleaseSeatLock(ctx, updated.Seat)
	}
	s.publish(ctx, kafka.EventReservationCancelled, updated)
	return nil
}

// ExtendReservationTimeout pushes the hold deadline to now + window.
// The new deadline counts from now, not from the previous deadline.
func (s *Service) ExtendReservationTimeout(ctx context.Context, bookingID string) (*domain.Reservation, error) {
	current, err := s.store.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if s.policy.Overdue(current, now) {
		s.lazyExpire(ctx, current)
		return nil, domain.ErrHoldExpired
	}
	// A hold that already lapsed is gone, not merely in the wrong state.
	if current.Status == domain.ReservationStatusExpired {
		return nil, domain.ErrHoldExpired
	}
	if current.Status != domain.ReservationStatusPending {
		return nil, domain.ErrInvalidState
	}
	return s.store.ExtendDeadline(ctx, bookingID, s.policy.Deadline(now))
}

// GetTicket looks up the reservation currently associated with a seat.
// An overdue PENDING record is reclassified to EXPIRED before being
// returned, so callers never observe a logically expired hold as
// PENDING.
func (s *Service) GetTicket(ctx context.Context, seat domain.SeatLocation) (*domain.Reservation, error) {
	r, err := s.store.GetBySeat(ctx, seat)
	if err != nil {
		return nil, err
	}
	return s.reclassify(ctx, r), nil
}

// GetBooking looks up a reservation by booking ID, reclassifying an
// overdue PENDING record the same way GetTicket does.
func (s *Service) GetBooking(ctx context.Context, bookingID string) (*domain.Reservation, error) {
	r, err := s.store.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.reclassify(ctx, r), nil
}

// ExpireOverdueReservations sweeps every overdue PENDING hold to
// EXPIRED. Lazy evaluation inside the other operations already keeps
// results correct; the sweep is housekeeping that frees seats and
// publishes expiry events without waiting for the next lookup.
func (s *Service) ExpireOverdueReservations(ctx context.Context) ([]domain.Reservation, error) {
	expired, err := s.store.ExpireOverdue(ctx, s.now())
	if err != nil {
		return nil, err
	}
	for i := range expired {
		if s.cache != nil {
			_ = s.cache.ReleaseSeatLock(ctx, expired[i].Seat)
		}
		s.publish(ctx, kafka.EventReservationExpired, &expired[i])
	}
	return expired, nil
}

func (s *Service) reclassify(ctx context.Context, r *domain.Reservation) *domain.Reservation {
	if !s.policy.Overdue(r, s.now()) {
		return r
	}
	if rewritten := s.lazyExpire(ctx, r); rewritten != nil {
		return rewritten
	}
	if post, err := s.store.GetByBookingID(ctx, r.BookingID); err == nil {
		return post
	}
	return r
}

// lazyExpire performs the PENDING -> EXPIRED rewrite for a hold the
// policy reported stale. A CAS failure means some other operation got
// there first, which is fine either way.
func (s *Service) lazyExpire(ctx context.Context, r *domain.Reservation) *domain.Reservation {
	updated, err := s.store.Transition(ctx, r.BookingID, domain.ReservationStatusPending, domain.ReservationStatusExpired)
	if err != nil {
		return nil
	}
	if s.cache != nil {
		_ = s.cache.ReleaseSeatLock(ctx, updated.Seat)
	}
	s.publish(ctx, kafka.EventReservationExpired, updated)
	return updated
}

func (s *Service) publish(ctx context.Context, eventType string, r *domain.Reservation) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event := kafka.ReservationEvent{
		Type:        eventType,
		BookingID:   r.BookingID,
		FlightID:    r.Seat.FlightID,
		Row:         r.Seat.Row,
		Seat:        r.Seat.Seat,
		HolderEmail: r.Holder.Email,
		Status:      string(r.Status),
		ExpiresAt:   r.ExpiresAt,
	}
	if err := s.producer.Publish(ctx, s.topic, r.BookingID, event); err != nil {
		log.Printf("publish %s for booking %s: %v", eventType, r.BookingID, err)
	}
}

var _ ReservationUseCase = (*Service)(nil)
