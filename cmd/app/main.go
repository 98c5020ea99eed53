package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/utopia-air/booking/config"
	"github.com/utopia-air/booking/internal/bootstrap"
	"github.com/utopia-air/booking/internal/cache"
	"github.com/utopia-air/booking/internal/domain"
	"github.com/utopia-air/booking/internal/kafka"
	"github.com/utopia-air/booking/internal/repository"
	"github.com/utopia-air/booking/internal/service/flights"
	"github.com/utopia-air/booking/internal/service/reservation"
	"github.com/utopia-air/booking/internal/store"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	holdWindow := time.Duration(cfg.Booking.HoldWindowMinutes) * time.Minute
	policy := domain.HoldPolicy{Window: holdWindow}

	var (
		resStore reservation.ReservationStore
		seatDir  reservation.SeatDirectory
		source   flights.FlightSource
	)
	switch cfg.Storage.Driver {
	case "memory":
		resStore = store.NewMemoryStore(policy)
		directory := store.NewMemoryDirectory(seedFlights(cfg.Flights))
		seatDir, source = directory, directory
	default:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()
		resStore = repository.NewReservationStore(pool)
		directory := repository.NewFlightDirectory(pool)
		seatDir, source = directory, directory
	}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightService := flights.NewFlightService(source, redisCache)
	reservationService := reservation.NewService(
		resStore,
		seatDir,
		holdWindow,
		reservation.WithCache(redisCache),
		reservation.WithProducer(producer, cfg.Kafka.ReservationsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, flightService, reservationService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func seedFlights(seeds []config.FlightSeed) []domain.Flight {
	now := time.Now()
	out := make([]domain.Flight, 0, len(seeds))
	for _, s := range seeds {
		out = append(out, domain.Flight{
			ID:          s.ID,
			FromAirport: s.FromAirport,
			ToAirport:   s.ToAirport,
			Rows:        s.Rows,
			SeatLetters: s.SeatLetters,
			PriceCents:  s.PriceCents,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return out
}
