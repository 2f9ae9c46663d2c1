package weather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type ViewStore interface {
	BeginRequest(city string) Request
	ApplyResult(res Result) bool
	SelectRecord(r Record) bool
	OpenSearch()
	CloseSearch()
	ReportError(msg string)
	Snapshot() ViewState
}

type ForecastFetcher interface {
	Fetch(ctx context.Context, req Request, onSuccess, onFailure func(Result))
}

// Service turns user intents into fetches and state changes.
type Service struct {
	store       ViewStore
	fetcher     ForecastFetcher
	defaultCity string

	// Fetches outlive the HTTP request that started them.
	ctx context.Context
}

func NewService(ctx context.Context, store ViewStore, fetcher ForecastFetcher, defaultCity string) *Service {
	return &Service{
		store:       store,
		fetcher:     fetcher,
		defaultCity: defaultCity,
		ctx:         ctx,
	}
}

// Start loads the default city.
func (s *Service) Start() Request {
	return s.fetch(s.defaultCity)
}

// Refresh re-fetches the city whose forecast is on screen, or the default
// city before anything has loaded. A failed search does not change it.
func (s *Service) Refresh() Request {
	city := s.defaultCity
	if st := s.store.Snapshot(); len(st.Days) > 0 && st.Current.City != "" {
		city = st.Current.City
	}
	return s.fetch(city)
}

// Search closes the dialog and fetches city. Blank input issues no request.
func (s *Service) Search(city string) (Request, error) {
	s.store.CloseSearch()
	city = strings.TrimSpace(city)
	if city == "" {
		err := fmt.Errorf("search: %w", ErrEmptyCitySelection)
		s.store.ReportError(err.Error())
		return Request{}, err
	}
	return s.fetch(city), nil
}

func (s *Service) Select(r Record) bool {
	return s.store.SelectRecord(r)
}

func (s *Service) OpenSearch() {
	s.store.OpenSearch()
}

func (s *Service) CloseSearch() {
	s.store.CloseSearch()
}

func (s *Service) State() ViewState {
	return s.store.Snapshot()
}

func (s *Service) fetch(city string) Request {
	req := s.store.BeginRequest(city)
	s.fetcher.Fetch(s.ctx, req, s.deliver, s.deliver)
	return req
}

func (s *Service) deliver(res Result) {
	if !s.store.ApplyResult(res) {
		slog.Info("discarding stale forecast", "seq", res.Seq, "city", res.City)
	}
}
