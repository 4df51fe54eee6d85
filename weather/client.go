// Package weather implements the get_weather tool on top of the
// OpenWeatherMap current-weather endpoint.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tailored-agentic-units/assistant/observability"
)

const currentWeatherPath = "/data/2.5/weather"

// Report is the subset of the current-weather answer handed to the model.
type Report struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}

type apiResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type apiError struct {
	Message string `json:"message"`
}

// Client performs weather lookups. It makes exactly one request per lookup
// and never retries.
type Client struct {
	cfg      Config
	http     *http.Client
	observer observability.Observer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithObserver sets the observer receiving lookup events.
func WithObserver(o observability.Observer) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient creates a Client from configuration.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: timeout},
		observer: observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Lookup fetches the current weather for city. A non-200 answer returns an
// *APIError carrying the upstream message.
func (c *Client) Lookup(ctx context.Context, city string) (*Report, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrMissingCity
	}
	if c.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	start := time.Now()
	report, status, err := c.get(ctx, city)

	data := map[string]any{
		"city":        city,
		"status":      status,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	level := observability.LevelInfo
	if err != nil {
		data["error"] = err.Error()
		level = observability.LevelWarning
	}
	c.observer.OnEvent(ctx, observability.Event{
		Type:      EventLookup,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "weather.Client",
		Data:      data,
	})

	return report, err
}

func (c *Client) get(ctx context.Context, city string) (*Report, int, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.cfg.APIKey)
	q.Set("units", c.cfg.Units)
	q.Set("lang", c.cfg.Lang)
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + currentWeatherPath + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read weather response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e apiError
		if json.Unmarshal(body, &e) != nil || e.Message == "" {
			e.Message = MsgRequestFailed
		}
		return nil, resp.StatusCode, &APIError{StatusCode: resp.StatusCode, Message: e.Message}
	}

	var data apiResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to parse weather response: %w", err)
	}

	report := &Report{
		City:        data.Name,
		Temperature: data.Main.Temp,
		FeelsLike:   data.Main.FeelsLike,
		Humidity:    data.Main.Humidity,
		WindSpeed:   data.Wind.Speed,
	}
	if len(data.Weather) > 0 {
		report.Description = data.Weather[0].Description
	}
	return report, resp.StatusCode, nil
}
