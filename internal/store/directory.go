package store

import (
	"context"
	"sort"

	"github.com/utopia-air/booking/internal/domain"
)

// MemoryDirectory is a fixed in-memory seat directory, seeded from
// configuration. It serves the memory storage driver and tests.
type MemoryDirectory struct {
	flights map[int64]domain.Flight
}

func NewMemoryDirectory(flights []domain.Flight) *MemoryDirectory {
	m := make(map[int64]domain.Flight, len(flights))
	for _, f := range flights {
		m[f.ID] = f
	}
	return &MemoryDirectory{flights: m}
}

func (d *MemoryDirectory) Resolve(ctx context.Context, flightID int64) (*domain.Flight, error) {
	f, ok := d.flights[flightID]
	if !ok {
		return nil, domain.ErrUnknownSeat
	}
	out := f
	return &out, nil
}

func (d *MemoryDirectory) Exists(ctx context.Context, seat domain.SeatLocation) (bool, error) {
	f, ok := d.flights[seat.FlightID]
	if !ok {
		return false, nil
	}
	return f.HasSeat(seat.Row, seat.Seat), nil
}

func (d *MemoryDirectory) List(ctx context.Context) ([]domain.Flight, error) {
	out := make([]domain.Flight, 0, len(d.flights))
	for _, f := range d.flights {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
