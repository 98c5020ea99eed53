package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/utopia-air/booking/internal/domain"
)

const reservationColumns = `booking_id, flight_id, seat_row, seat_code, holder_id, holder_name, holder_email, price_cents, status, expires_at, created_at, updated_at`

// PGReservationStore persists reservations in postgres. Exclusivity and
// ID uniqueness are enforced by the schema: a primary key on booking_id
// and a partial unique index on (flight_id, seat_row, seat_code) over
// rows whose status is PENDING or PAID.
type PGReservationStore struct {
	db *pgxpool.Pool
}

func NewReservationStore(db *pgxpool.Pool) *PGReservationStore {
	return &PGReservationStore{db: db}
}

// CreatePending rewrites a stale PENDING holder of the seat to EXPIRED
// and inserts the new hold in one transaction. A concurrent insert for
// the same seat trips the live-seat unique index and surfaces as
// ErrSeatUnavailable; a booking-ID collision trips the primary key and
// surfaces as ErrDuplicateBookingID.
func (r *PGReservationStore) CreatePending(ctx context.Context, res *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE reservations SET status=$1, updated_at=now()
		WHERE flight_id=$2 AND seat_row=$3 AND seat_code=$4 AND status=$5 AND expires_at <= now()`,
		domain.ReservationStatusExpired, res.Seat.FlightID, res.Seat.Row, res.Seat.Seat, domain.ReservationStatusPending); err != nil {
		return err
	}

	res.Status = domain.ReservationStatusPending
	if err := tx.QueryRow(ctx, `INSERT INTO reservations (booking_id, flight_id, seat_row, seat_code, holder_id, holder_name, holder_email, price_cents, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		res.BookingID, res.Seat.FlightID, res.Seat.Row, res.Seat.Seat,
		res.Holder.UserID, res.Holder.Name, res.Holder.Email,
		res.PriceCents, res.Status, res.ExpiresAt).
		Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
		return classifyInsertError(err)
	}

	return tx.Commit(ctx)
}

func (r *PGReservationStore) GetByBookingID(ctx context.Context, bookingID string) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE booking_id=$1`, bookingID)
	return scanReservation(row)
}

// GetBySeat returns the newest reservation for the seat, live or not.
func (r *PGReservationStore) GetBySeat(ctx context.Context, seat domain.SeatLocation) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE flight_id=$1 AND seat_row=$2 AND seat_code=$3
		ORDER BY created_at DESC LIMIT 1`, seat.FlightID, seat.Row, seat.Seat)
	return scanReservation(row)
}

// Transition is a compare-and-swap on status: the UPDATE matches only
// while the record is still in the expected state, so the loser of a
// race updates zero rows and gets ErrInvalidState.
func (r *PGReservationStore) Transition(ctx context.Context, bookingID string, from, to domain.ReservationStatus) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `UPDATE reservations SET status=$1, updated_at=now()
		WHERE booking_id=$2 AND status=$3
		RETURNING `+reservationColumns, to, bookingID, from)
	res, err := scanReservation(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, r.missOrConflict(ctx, bookingID)
	}
	return res, err
}

func (r *PGReservationStore) ExtendDeadline(ctx context.Context, bookingID string, deadline time.Time) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `UPDATE reservations SET expires_at=$1, updated_at=now()
		WHERE booking_id=$2 AND status=$3
		RETURNING `+reservationColumns, deadline, bookingID, domain.ReservationStatusPending)
	res, err := scanReservation(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, r.missOrConflict(ctx, bookingID)
	}
	return res, err
}

func (r *PGReservationStore) ExpireOverdue(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `UPDATE reservations SET status=$1, updated_at=now()
		WHERE status=$2 AND expires_at <= $3
		RETURNING `+reservationColumns, domain.ReservationStatusExpired, domain.ReservationStatusPending, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		expired = append(expired, *res)
	}
	return expired, rows.Err()
}

// missOrConflict distinguishes a CAS miss on a record that exists
// (state conflict) from one on a record that does not (not found).
func (r *PGReservationStore) missOrConflict(ctx context.Context, bookingID string) error {
	var one int
	err := r.db.QueryRow(ctx, `SELECT 1 FROM reservations WHERE booking_id=$1`, bookingID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	return domain.ErrInvalidState
}

func classifyInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "live_seat") {
			return domain.ErrSeatUnavailable
		}
		return domain.ErrDuplicateBookingID
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(&res.BookingID, &res.Seat.FlightID, &res.Seat.Row, &res.Seat.Seat,
		&res.Holder.UserID, &res.Holder.Name, &res.Holder.Email,
		&res.PriceCents, &res.Status, &res.ExpiresAt, &res.CreatedAt, &res.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}
