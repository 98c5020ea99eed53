package domain

import "time"

// Flight carries just enough seat-map shape to validate that a
// SeatLocation exists: rows 1..Rows, seat letters from SeatLetters.
type Flight struct {
	ID            int64
	FromAirport   string
	ToAirport     string
	DepartureTime time.Time
	ArrivalTime   time.Time
	Rows          int
	SeatLetters   string
	PriceCents    int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasSeat reports whether the flight's seat map contains the given
// row/seat pair.
func (f *Flight) HasSeat(row int, seat string) bool {
	if row < 1 || row > f.Rows {
		return false
	}
	if len(seat) != 1 {
		return false
	}
	for i := 0; i < len(f.SeatLetters); i++ {
		if string(f.SeatLetters[i]) == seat {
			return true
		}
	}
	return false
}
