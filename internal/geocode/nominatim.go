package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/fixmarket/fixmarket/internal/telemetry"
)

// ResultKind classifies the outcome of a geocoding lookup. Expected
// "no match" outcomes are values, not errors.
type ResultKind int

const (
	// Found means the provider returned at least one candidate.
	Found ResultKind = iota
	// NoMatch means the provider answered but had no candidates.
	NoMatch
	// Failed means the provider was unreachable or returned garbage.
	Failed
)

// Result is the outcome of a single geocoding lookup. Latitude and
// Longitude are only meaningful when Kind is Found.
type Result struct {
	Kind      ResultKind `json:"kind"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
}

// Cache stores geocoding results for repeated queries. Implementations must
// be safe for concurrent use; a miss is reported via the bool return.
type Cache interface {
	GetGeocode(ctx context.Context, query string) (Result, bool)
	SetGeocode(ctx context.Context, query string, res Result)
}

// Config holds Nominatim client configuration.
type Config struct {
	BaseURL        string
	CountryCode    string
	UserAgent      string
	Timeout        time.Duration
	RequestsPerSec float64
}

// DefaultConfig returns the default Nominatim client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "https://nominatim.openstreetmap.org",
		CountryCode:    "pl",
		UserAgent:      "fixmarket/1.0",
		Timeout:        10 * time.Second,
		RequestsPerSec: 1,
	}
}

// Client is a Nominatim search client. The HTTP client is injected so tests
// can point it at a stub server.
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      Cache
}

// NewClient creates a Nominatim client. httpClient may be nil, in which
// case a client with the configured timeout is used. cache may be nil.
func NewClient(config Config, httpClient *http.Client, cache Cache) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultConfig().UserAgent
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.RequestsPerSec == 0 {
		config.RequestsPerSec = DefaultConfig().RequestsPerSec
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerSec), 1),
		cache:      cache,
	}
}

// nominatimEntry is the subset of the search response we read.
type nominatimEntry struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves a free-text query to coordinates, restricted to the
// configured country. The returned Result is total: provider failures come
// back as Kind=Failed, an empty candidate list as Kind=NoMatch. The error
// return carries diagnostic detail for logging only.
func (c *Client) Geocode(ctx context.Context, query string) (Result, error) {
	logger := telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
		"operation": "geocode",
		"query":     query,
	})

	if c.cache != nil {
		if res, ok := c.cache.GetGeocode(ctx, query); ok {
			logger.Debug("Geocode cache hit")
			return res, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return Result{Kind: Failed}, fmt.Errorf("rate limiter wait: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	if c.config.CountryCode != "" {
		params.Set("countrycodes", c.config.CountryCode)
	}

	reqURL := fmt.Sprintf("%s/search?%s", c.config.BaseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Result{Kind: Failed}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{Kind: Failed}, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{Kind: Failed}, fmt.Errorf("provider status %d", resp.StatusCode)
	}

	var entries []nominatimEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return Result{Kind: Failed}, fmt.Errorf("decode response: %w", err)
	}

	if len(entries) == 0 {
		res := Result{Kind: NoMatch}
		if c.cache != nil {
			c.cache.SetGeocode(ctx, query, res)
		}
		return res, nil
	}

	lat, err := strconv.ParseFloat(entries[0].Lat, 64)
	if err != nil {
		return Result{Kind: Failed}, fmt.Errorf("parse latitude %q: %w", entries[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(entries[0].Lon, 64)
	if err != nil {
		return Result{Kind: Failed}, fmt.Errorf("parse longitude %q: %w", entries[0].Lon, err)
	}

	res := Result{Kind: Found, Latitude: lat, Longitude: lon}
	if c.cache != nil {
		c.cache.SetGeocode(ctx, query, res)
	}

	logger.WithFields(map[string]interface{}{
		"latitude":  lat,
		"longitude": lon,
	}).Debug("Geocode resolved")

	return res, nil
}
