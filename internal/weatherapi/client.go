package weatherapi

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"

	"weatherview/internal/weather"
)

const (
	forecastPath = "/v1/forecast.json"
	forecastDays = 3
)

// Client fetches raw forecast documents from WeatherAPI.com.
type Client struct {
	apiKey string
	http   *resty.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey: apiKey,
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

// Forecast issues a single GET for the given city and returns the response
// body as text. The provider resolves the city name; an unknown city comes
// back as a non-2xx status.
func (c *Client) Forecast(ctx context.Context, city string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":    c.apiKey,
			"q":      city,
			"days":   fmt.Sprintf("%d", forecastDays),
			"aqi":    "no",
			"alerts": "no",
		}).
		Get(forecastPath)
	if err != nil {
		return "", fmt.Errorf("%w: get forecast: %w", weather.ErrTransport, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: weatherapi returned %d: %s", weather.ErrTransport, resp.StatusCode(), resp.String())
	}
	return resp.String(), nil
}

func (c *Client) Close() error {
	return c.http.Close()
}
