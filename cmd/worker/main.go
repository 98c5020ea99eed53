package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/utopia-air/booking/config"
	"github.com/utopia-air/booking/internal/cache"
	"github.com/utopia-air/booking/internal/kafka"
	"github.com/utopia-air/booking/internal/repository"
	"github.com/utopia-air/booking/internal/service/reservation"
)

// The worker does two things: periodically sweeps overdue holds to
// EXPIRED (housekeeping; lazy evaluation in the engine already keeps
// foreground results correct) and consumes the reservation event topic
// into the audit log.
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

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	holdWindow := time.Duration(cfg.Booking.HoldWindowMinutes) * time.Minute
	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	resStore := repository.NewReservationStore(pool)
	directory := repository.NewFlightDirectory(pool)
	reservationService := reservation.NewService(
		resStore,
		directory,
		holdWindow,
		reservation.WithCache(redisCache),
		reservation.WithProducer(producer, cfg.Kafka.ReservationsTopic),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ReservationsTopic)
	defer consumer.Close()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.ReservationEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			log.Printf("audit: %s booking=%s flight=%d row=%d seat=%s status=%s",
				event.Type, event.BookingID, event.FlightID, event.Row, event.Seat, event.Status)
			return nil
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	sweep := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute)
	defer sweep.Stop()

	for {
		select {
		case <-sweep.C:
			expired, err := reservationService.ExpireOverdueReservations(ctx)
			if err != nil {
				log.Printf("expire reservations error: %v", err)
				continue
			}
			if len(expired) > 0 {
				log.Printf("expired %d reservations", len(expired))
			}
		case <-ctx.Done():
			log.Printf("shutting down")
			return
		}
	}
}
