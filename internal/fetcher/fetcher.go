package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"weatherview/internal/weather"
	"weatherview/internal/weatherapi"
)

type ForecastClient interface {
	Forecast(ctx context.Context, city string) (string, error)
}

// Fetcher runs one provider request per call in the background and hands
// the normalized days to a callback. It never retries.
type Fetcher struct {
	client ForecastClient
	wg     sync.WaitGroup
}

func New(client ForecastClient) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch starts the request and returns immediately. Exactly one of the
// callbacks runs, on the fetch goroutine, with req's Seq and City.
func (f *Fetcher) Fetch(ctx context.Context, req weather.Request, onSuccess, onFailure func(weather.Result)) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		res := f.fetch(ctx, req)
		if res.Err != nil {
			onFailure(res)
			return
		}
		onSuccess(res)
	}()
}

// Wait blocks until every started fetch has delivered its result.
func (f *Fetcher) Wait() {
	f.wg.Wait()
}

func (f *Fetcher) fetch(ctx context.Context, req weather.Request) weather.Result {
	start := time.Now()
	res := weather.Result{Seq: req.Seq, City: req.City}

	body, err := f.client.Forecast(ctx, req.City)
	if err != nil {
		if !errors.Is(err, weather.ErrTransport) {
			err = fmt.Errorf("%w: %w", weather.ErrTransport, err)
		}
		slog.Error("forecast request failed", "seq", req.Seq, "city", req.City, "err", err)
		res.Err = err
		return res
	}

	days, err := weatherapi.NormalizeDays(body)
	if err != nil {
		slog.Error("failed to normalize forecast", "seq", req.Seq, "city", req.City, "err", err)
		res.Err = fmt.Errorf("normalize forecast for %q: %w", req.City, err)
		return res
	}
	if len(days) == 0 {
		slog.Warn("forecast returned no days", "seq", req.Seq, "city", req.City)
		res.Err = fmt.Errorf("forecast for %q has no days: %w", req.City, weather.ErrEmptyCitySelection)
		return res
	}

	slog.Info("forecast fetched",
		"seq", req.Seq,
		"city", req.City,
		"days", len(days),
		"duration", time.Since(start),
	)
	res.Days = days
	return res
}
