// Package weather resolves a city to coordinates and reads its current
// temperature from Open-Meteo.
package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	OpenCageURL          = "https://api.opencagedata.com/geocode/v1/json"
	OpenMeteoGeocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
	OpenMeteoForecastURL = "https://api.open-meteo.com/v1/forecast"
)

var ErrCityNotFound = errors.New("city not found")

type Config struct {
	// OpenCageKey enables OpenCage geocoding; without it Open-Meteo's
	// geocoder is used.
	OpenCageKey string
	GeocodeURL  string
	ForecastURL string
	Language    string
}

type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config, client *http.Client) *Client {
	if cfg.GeocodeURL == "" {
		if cfg.OpenCageKey != "" {
			cfg.GeocodeURL = OpenCageURL
		} else {
			cfg.GeocodeURL = OpenMeteoGeocodeURL
		}
	}
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = OpenMeteoForecastURL
	}
	if cfg.Language == "" {
		cfg.Language = "pt"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{cfg: cfg, http: client}
}

// Geocode returns the coordinates of the best match for city.
func (c *Client) Geocode(ctx context.Context, city string) (float64, float64, error) {
	q := url.Values{}
	latPath, lonPath := "results.0.latitude", "results.0.longitude"

	if c.cfg.OpenCageKey != "" {
		q.Set("q", city)
		q.Set("key", c.cfg.OpenCageKey)
		q.Set("language", c.cfg.Language)
		q.Set("limit", "1")
		latPath, lonPath = "results.0.geometry.lat", "results.0.geometry.lng"
	} else {
		q.Set("name", city)
		q.Set("count", "1")
		q.Set("language", c.cfg.Language)
	}

	body, err := c.get(ctx, c.cfg.GeocodeURL, q)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode %q: %w", city, err)
	}

	lat, lon := gjson.GetBytes(body, latPath), gjson.GetBytes(body, lonPath)
	if !lat.Exists() || !lon.Exists() {
		return 0, 0, fmt.Errorf("%w: %s", ErrCityNotFound, city)
	}

	return lat.Float(), lon.Float(), nil
}

// CurrentTemperature returns the temperature in Celsius at the coordinates.
func (c *Client) CurrentTemperature(ctx context.Context, lat, lon float64) (float64, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("current_weather", "true")
	q.Set("temperature_unit", "celsius")

	body, err := c.get(ctx, c.cfg.ForecastURL, q)
	if err != nil {
		return 0, fmt.Errorf("forecast: %w", err)
	}

	t := gjson.GetBytes(body, "current_weather.temperature")
	if !t.Exists() {
		return 0, errors.New("forecast without current temperature")
	}

	return t.Float(), nil
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("invalid json")
	}

	return body, nil
}
