package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/utopia-air/booking/config"
	"github.com/utopia-air/booking/internal/domain"
)

// RedisCache provides the seat-lock fast path in front of the store's
// authoritative exclusivity check, plus a flight-list cache. Lock TTLs
// match the hold window, so an abandoned lock disappears no later than
// the hold it was guarding.
type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: flightsTTL,
	}
}

func (c *RedisCache) AcquireSeatLock(ctx context.Context, seat domain.SeatLocation, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, seatLockKey(seat), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSeatLock(ctx context.Context, seat domain.SeatLocation) error {
	return c.client.Del(ctx, seatLockKey(seat)).Err()
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(), payload, c.flightsTTL).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func seatLockKey(seat domain.SeatLocation) string {
	return fmt.Sprintf("lock:flight:%d:row:%d:seat:%s", seat.FlightID, seat.Row, seat.Seat)
}
