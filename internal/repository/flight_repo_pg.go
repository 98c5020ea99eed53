package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/utopia-air/booking/internal/domain"
)

const flightColumns = `id, from_airport, to_airport, departure_time, arrival_time, seat_rows, seat_letters, price_cents, created_at, updated_at`

// PGFlightDirectory is the postgres-backed seat directory.
type PGFlightDirectory struct {
	db *pgxpool.Pool
}

func NewFlightDirectory(db *pgxpool.Pool) *PGFlightDirectory {
	return &PGFlightDirectory{db: db}
}

func (r *PGFlightDirectory) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := scanFlight(rows, &f); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightDirectory) Resolve(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	var f domain.Flight
	if err := scanFlight(row, &f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUnknownSeat
		}
		return nil, err
	}
	return &f, nil
}

// Exists reports whether the flight's seat map contains the location.
// The seat map is shape-only (row count and letters), so a directory
// hit on the flight is enough to answer without another query.
func (r *PGFlightDirectory) Exists(ctx context.Context, seat domain.SeatLocation) (bool, error) {
	f, err := r.Resolve(ctx, seat.FlightID)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownSeat) {
			return false, nil
		}
		return false, err
	}
	return f.HasSeat(seat.Row, seat.Seat), nil
}

func scanFlight(row rowScanner, f *domain.Flight) error {
	return row.Scan(&f.ID, &f.FromAirport, &f.ToAirport, &f.DepartureTime, &f.ArrivalTime,
		&f.Rows, &f.SeatLetters, &f.PriceCents, &f.CreatedAt, &f.UpdatedAt)
}
