package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/fixmarket/fixmarket/internal/geocode"
	"github.com/fixmarket/fixmarket/internal/telemetry"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int
}

// TTLs per keyspace. Geocode results are stable; autocomplete suggestions
// track a static dataset and only need protection against hot-key load.
const (
	geocodeTTL    = 24 * time.Hour
	suggestionTTL = 10 * time.Minute
)

// RedisService caches geocoding results and hot autocomplete queries. All
// operations are best-effort: a cache failure is logged and reported as a
// miss, never propagated to the request path.
type RedisService struct {
	client *redis.Client
}

// NewRedisService connects to Redis and verifies the connection.
func NewRedisService(config *RedisConfig) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
		PoolSize: config.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisService{client: client}, nil
}

// NewInstrumentedRedisService connects to Redis with OpenTelemetry tracing.
func NewInstrumentedRedisService(config *RedisConfig) (*RedisService, error) {
	service, err := NewRedisService(config)
	if err != nil {
		return nil, err
	}
	telemetry.InstrumentRedisClient(service.client)
	return service, nil
}

func geocodeKey(query string) string {
	return "geocode:" + strings.ToLower(strings.TrimSpace(query))
}

func suggestionKey(query string) string {
	return "suggest:" + strings.ToLower(strings.TrimSpace(query))
}

// GetGeocode implements geocode.Cache. A nil receiver, connection failure,
// or decode failure all read as a miss.
func (r *RedisService) GetGeocode(ctx context.Context, query string) (geocode.Result, bool) {
	if r == nil {
		return geocode.Result{}, false
	}

	data, err := r.client.Get(ctx, geocodeKey(query)).Result()
	if err != nil {
		if err != redis.Nil {
			telemetry.GetContextualLogger(ctx).WithError(err).Warn("Geocode cache read failed")
		}
		return geocode.Result{}, false
	}

	var res geocode.Result
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		telemetry.GetContextualLogger(ctx).WithError(err).Warn("Geocode cache entry corrupt")
		return geocode.Result{}, false
	}
	return res, true
}

// SetGeocode implements geocode.Cache, best-effort.
func (r *RedisService) SetGeocode(ctx context.Context, query string, res geocode.Result) {
	if r == nil {
		return
	}

	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, geocodeKey(query), data, geocodeTTL).Err(); err != nil {
		telemetry.GetContextualLogger(ctx).WithError(err).Warn("Geocode cache write failed")
	}
}

// GetSuggestions returns a cached autocomplete payload, if any.
func (r *RedisService) GetSuggestions(ctx context.Context, query string, dest interface{}) bool {
	if r == nil {
		return false
	}

	data, err := r.client.Get(ctx, suggestionKey(query)).Result()
	if err != nil {
		if err != redis.Nil {
			telemetry.GetContextualLogger(ctx).WithError(err).Warn("Suggestion cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false
	}
	return true
}

// SetSuggestions stores an autocomplete payload, best-effort.
func (r *RedisService) SetSuggestions(ctx context.Context, query string, payload interface{}) {
	if r == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, suggestionKey(query), data, suggestionTTL).Err(); err != nil {
		telemetry.GetContextualLogger(ctx).WithError(err).Warn("Suggestion cache write failed")
	}
}

// HealthCheck reports whether Redis answers a ping.
func (r *RedisService) HealthCheck() bool {
	if r == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return r.client.Ping(ctx).Err() == nil
}

// Close releases the underlying client.
func (r *RedisService) Close() error {
	if r == nil {
		return nil
	}
	return r.client.Close()
}
