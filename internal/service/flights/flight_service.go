package flights

import (
	"context"

	"github.com/utopia-air/booking/internal/domain"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

// FlightSource is a seat directory that can also enumerate flights.
type FlightSource interface {
	List(ctx context.Context) ([]domain.Flight, error)
	Resolve(ctx context.Context, id int64) (*domain.Flight, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
}

// FlightService serves flight master data, with an optional cache in
// front of the directory for the listing endpoint.
type FlightService struct {
	source FlightSource
	cache  FlightCache
}

func NewFlightService(source FlightSource, cache FlightCache) *FlightService {
	return &FlightService{source: source, cache: cache}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.source.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.source.Resolve(ctx, id)
}

var _ FlightUseCase = (*FlightService)(nil)
