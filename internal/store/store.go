package store

import (
	"slices"
	"sync"
	"time"

	"weatherview/internal/weather"
)

// Store holds the state behind the forecast screen. Its methods are the
// only way to change it and each one runs under the lock, so a fetch
// result never interleaves with a user action.
type Store struct {
	mu            sync.RWMutex
	days          []weather.Record
	current       weather.Record
	searchVisible bool

	city      string
	latestSeq uint64
	loading   bool
	lastErr   string
	updatedAt time.Time

	now func() time.Time
}

func New() *Store {
	return &Store{
		current: weather.Placeholder(),
		now:     time.Now,
	}
}

// BeginRequest tags a new fetch for city. Results of earlier requests are
// discarded from here on.
func (s *Store) BeginRequest(city string) weather.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latestSeq++
	s.city = city
	s.loading = true
	return weather.Request{Seq: s.latestSeq, City: city}
}

// ApplyResult stores the outcome of the latest request. It reports false
// when res belongs to a superseded request. A failure keeps the last good
// days and only sets the error banner.
func (s *Store) ApplyResult(res weather.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res.Seq != s.latestSeq {
		return false
	}
	s.loading = false
	if res.Err != nil {
		s.lastErr = res.Err.Error()
		return true
	}
	if !s.applyDays(res.Days) {
		s.lastErr = weather.ErrEmptyCitySelection.Error()
		return true
	}
	s.lastErr = ""
	return true
}

// ApplyFetchResult replaces the day list and makes its first day current.
// An empty list is ignored.
func (s *Store) ApplyFetchResult(days []weather.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyDays(days)
}

func (s *Store) applyDays(days []weather.Record) bool {
	if len(days) == 0 {
		return false
	}
	s.days = slices.Clone(days)
	s.current = s.days[0]
	s.updatedAt = s.now()
	return true
}

// SelectRecord makes r current if it is a day record. Hour records have
// nothing further to show, so selecting one does nothing.
func (s *Store) SelectRecord(r weather.Record) bool {
	if !r.IsDay() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = r
	return true
}

func (s *Store) OpenSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchVisible = true
}

func (s *Store) CloseSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchVisible = false
}

// ReportError shows msg in the banner without touching the forecast.
func (s *Store) ReportError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = msg
}

func (s *Store) Snapshot() weather.ViewState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return weather.ViewState{
		Days:          slices.Clone(s.days),
		Current:       s.current,
		SearchVisible: s.searchVisible,
		City:          s.city,
		Loading:       s.loading,
		Error:         s.lastErr,
		UpdatedAt:     s.updatedAt,
	}
}
