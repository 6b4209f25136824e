package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dripline/dripline/internal/metrics"
	"github.com/dripline/dripline/internal/model"
	"github.com/dripline/dripline/internal/store"
)

// Cache and quota policy.
const (
	// CacheTTL is how long a cached observation stays usable without a
	// network fetch.
	CacheTTL = 7 * 24 * time.Hour

	// MaxRefreshes is the number of forced refreshes allowed per rolling
	// quota window.
	MaxRefreshes = 2

	// RefreshWindow is the rolling window for the forced-refresh quota.
	RefreshWindow = 7 * 24 * time.Hour
)

var (
	// ErrNoLocation is returned when no manual location is configured and the
	// caller did not supply coordinates.
	ErrNoLocation = errors.New("no location configured")

	// ErrRateLimited is the sentinel matched by errors.Is for quota failures.
	ErrRateLimited = errors.New("weather refresh rate limited")
)

// RateLimitError reports a quota failure together with the time at which the
// quota window resets. It matches ErrRateLimited under errors.Is.
type RateLimitError struct {
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("weather refresh rate limited until %s", e.ResetAt.Format(time.DateOnly))
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// Quota describes the current forced-refresh allowance.
type Quota struct {
	Used      int       `json:"used"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// Service serves weather observations from the persistent cache, refreshing
// from the Provider when the cache is stale or a forced refresh is requested.
// Forced refreshes are quota-limited; concurrent refreshes resolve
// last-write-wins by initiation order.
type Service struct {
	store    *store.Store
	provider Provider
	logger   *slog.Logger
	recorder metrics.Recorder

	now func() time.Time

	mu         sync.Mutex
	nextSeq    uint64
	appliedSeq uint64
}

// NewService wires a weather service. A nil recorder falls back to noop.
func NewService(st *store.Store, provider Provider, logger *slog.Logger, recorder metrics.Recorder) *Service {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Service{
		store:    st,
		provider: provider,
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
	}
}

// Cached returns the cached observation if it is still within the TTL.
func (s *Service) Cached() (*model.WeatherSnapshot, bool) {
	entry, err := s.store.WeatherCache()
	if err != nil || entry == nil {
		return nil, false
	}
	if s.now().Sub(entry.CachedAt) > CacheTTL {
		return nil, false
	}
	snapshot := entry.Data
	return &snapshot, true
}

// CurrentMultiplier derives the goal multiplier from the cached observation.
// The second return is false when no valid cache exists.
func (s *Service) CurrentMultiplier() (float64, bool) {
	snapshot, ok := s.Cached()
	if !ok {
		return 1.0, false
	}
	return CalculateMultiplier(*snapshot), true
}

// Current returns the current conditions, serving from cache when possible.
// force bypasses the cache and counts against the refresh quota.
func (s *Service) Current(ctx context.Context, force bool) (*model.WeatherSnapshot, error) {
	if !force {
		if snapshot, ok := s.Cached(); ok {
			s.recorder.IncWeatherCacheHit()
			return snapshot, nil
		}
		s.recorder.IncWeatherCacheMiss()
	}

	location, err := s.preferredLocation()
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, location, force)
}

// CurrentAt behaves like Current but fetches for an explicit coordinate,
// used when the caller resolves the device location itself.
func (s *Service) CurrentAt(ctx context.Context, lat, lon float64, force bool) (*model.WeatherSnapshot, error) {
	if !force {
		if snapshot, ok := s.Cached(); ok {
			s.recorder.IncWeatherCacheHit()
			return snapshot, nil
		}
		s.recorder.IncWeatherCacheMiss()
	}
	return s.refresh(ctx, model.Location{Lat: lat, Lon: lon}, force)
}

func (s *Service) refresh(ctx context.Context, location model.Location, force bool) (*model.WeatherSnapshot, error) {
	if force {
		if err := s.consumeQuota(); err != nil {
			s.recorder.IncWeatherRefresh("rate_limited")
			return nil, err
		}
	}

	seq := s.claimSeq()

	snapshot, err := s.provider.FetchCurrent(ctx, location.Lat, location.Lon)
	if err != nil {
		if force {
			s.refundQuota()
		}
		s.recorder.IncWeatherRefresh("failed")
		// A stale cache beats no data at all.
		if entry, cacheErr := s.store.WeatherCache(); cacheErr == nil && entry != nil {
			s.logger.Warn("weather fetch failed, serving stale cache", "error", err)
			stale := entry.Data
			return &stale, nil
		}
		return nil, fmt.Errorf("refresh weather: %w", err)
	}

	if !s.applySeq(seq) {
		// A later-initiated refresh already wrote the cache.
		return &snapshot, nil
	}

	if err := s.cacheSnapshot(snapshot); err != nil {
		s.logger.Warn("cache weather snapshot", "error", err)
	}
	s.recorder.IncWeatherRefresh("success")
	s.logger.Debug("weather refreshed",
		"location", snapshot.Location,
		"temperature_c", snapshot.TemperatureC,
		"forced", force,
	)
	return &snapshot, nil
}

// claimSeq assigns a monotonically increasing sequence to a refresh attempt.
func (s *Service) claimSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	return s.nextSeq
}

// applySeq reports whether a completed refresh may write its result. A
// refresh loses when a later-initiated one already applied.
func (s *Service) applySeq(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.appliedSeq {
		return false
	}
	s.appliedSeq = seq
	return true
}

// cacheSnapshot persists an observation, carrying the quota counters forward.
// Quota counters are advanced in consumeQuota before the fetch.
func (s *Service) cacheSnapshot(snapshot model.WeatherSnapshot) error {
	entry, err := s.store.WeatherCache()
	if err != nil {
		return err
	}

	next := &model.WeatherCacheEntry{
		Data:     snapshot,
		CachedAt: s.now().UTC(),
	}
	if entry != nil {
		next.RefreshCount = entry.RefreshCount
		next.LastRefreshDate = entry.LastRefreshDate
	}
	return s.store.SaveWeatherCache(next)
}

// consumeQuota spends one forced refresh, resetting the counter when the
// rolling window has elapsed since the first refresh of the window.
func (s *Service) consumeQuota() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.store.WeatherCache()
	if err != nil {
		return err
	}

	now := s.now()
	today := now.Format(time.DateOnly)

	count := 0
	windowStart := ""
	if entry != nil {
		count = entry.RefreshCount
		windowStart = entry.LastRefreshDate
	}

	if windowStart != "" {
		start, parseErr := time.Parse(time.DateOnly, windowStart)
		if parseErr == nil && now.Sub(start) >= RefreshWindow {
			count = 0
			windowStart = ""
		}
	}

	if count >= MaxRefreshes {
		resetAt := now.Add(RefreshWindow)
		if start, parseErr := time.Parse(time.DateOnly, windowStart); parseErr == nil {
			resetAt = start.Add(RefreshWindow)
		}
		return &RateLimitError{ResetAt: resetAt}
	}

	if windowStart == "" {
		windowStart = today
	}
	count++

	next := &model.WeatherCacheEntry{
		RefreshCount:    count,
		LastRefreshDate: windowStart,
	}
	if entry != nil {
		next.Data = entry.Data
		next.CachedAt = entry.CachedAt
	}
	return s.store.SaveWeatherCache(next)
}

// refundQuota returns a forced-refresh credit spent on a fetch that failed.
// A refund that empties the window also clears its start date, so the next
// forced refresh opens a fresh window.
func (s *Service) refundQuota() {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.store.WeatherCache()
	if err != nil || entry == nil || entry.RefreshCount == 0 {
		return
	}
	entry.RefreshCount--
	if entry.RefreshCount == 0 {
		entry.LastRefreshDate = ""
	}
	if err := s.store.SaveWeatherCache(entry); err != nil {
		s.logger.Warn("refund refresh quota", "error", err)
	}
}

// RefreshQuota reports the current forced-refresh allowance without
// consuming it.
func (s *Service) RefreshQuota() (Quota, error) {
	entry, err := s.store.WeatherCache()
	if err != nil {
		return Quota{}, err
	}

	now := s.now()
	quota := Quota{Limit: MaxRefreshes, Remaining: MaxRefreshes, ResetAt: now.Add(RefreshWindow)}
	if entry == nil || entry.LastRefreshDate == "" {
		return quota, nil
	}

	start, parseErr := time.Parse(time.DateOnly, entry.LastRefreshDate)
	if parseErr != nil || now.Sub(start) >= RefreshWindow {
		return quota, nil
	}

	quota.Used = entry.RefreshCount
	quota.Remaining = MaxRefreshes - entry.RefreshCount
	if quota.Remaining < 0 {
		quota.Remaining = 0
	}
	quota.ResetAt = start.Add(RefreshWindow)
	return quota, nil
}

// Weekly returns the 7-day forecast, refreshing at most once per day unless
// forced. Forced weekly refreshes do not consume the daily quota since they
// piggyback on the same fetch cadence the forecast API expects.
func (s *Service) Weekly(ctx context.Context, force bool) (*model.WeeklyWeatherCache, error) {
	today := s.now().Format(time.DateOnly)

	if !force {
		cache, err := s.store.WeeklyWeatherCache()
		if err == nil && cache != nil && cache.LastUpdated == today {
			s.recorder.IncWeatherCacheHit()
			return cache, nil
		}
		s.recorder.IncWeatherCacheMiss()
	}

	location, err := s.preferredLocation()
	if err != nil {
		return nil, err
	}
	return s.refreshWeekly(ctx, location)
}

// WeeklyAt behaves like Weekly for an explicit coordinate.
func (s *Service) WeeklyAt(ctx context.Context, lat, lon float64, force bool) (*model.WeeklyWeatherCache, error) {
	today := s.now().Format(time.DateOnly)

	if !force {
		cache, err := s.store.WeeklyWeatherCache()
		if err == nil && cache != nil && cache.LastUpdated == today {
			s.recorder.IncWeatherCacheHit()
			return cache, nil
		}
		s.recorder.IncWeatherCacheMiss()
	}
	return s.refreshWeekly(ctx, model.Location{Lat: lat, Lon: lon})
}

func (s *Service) refreshWeekly(ctx context.Context, location model.Location) (*model.WeeklyWeatherCache, error) {
	snapshots, err := s.provider.FetchWeekly(ctx, location.Lat, location.Lon)
	if err != nil {
		s.recorder.IncWeatherRefresh("failed")
		if cache, cacheErr := s.store.WeeklyWeatherCache(); cacheErr == nil && cache != nil {
			s.logger.Warn("weekly weather fetch failed, serving stale cache", "error", err)
			return cache, nil
		}
		return nil, fmt.Errorf("refresh weekly weather: %w", err)
	}

	daily := make(map[string]model.WeatherSnapshot, len(snapshots))
	for _, snapshot := range snapshots {
		if snapshot.Date != "" {
			daily[snapshot.Date] = snapshot
		}
	}
	if location.Name == "" && len(snapshots) > 0 {
		location.Name = snapshots[0].Location
	}

	cache := &model.WeeklyWeatherCache{
		Daily:       daily,
		Location:    location,
		CachedAt:    s.now().UTC(),
		LastUpdated: s.now().Format(time.DateOnly),
	}
	if err := s.store.SaveWeeklyWeatherCache(cache); err != nil {
		s.logger.Warn("cache weekly weather", "error", err)
	}
	s.recorder.IncWeatherRefresh("success")
	return cache, nil
}

// ForDate returns the cached forecast for a YYYY-MM-DD date. A cache older
// than CacheTTL is treated as absent.
func (s *Service) ForDate(date string) (*model.WeatherSnapshot, bool) {
	cache, err := s.store.WeeklyWeatherCache()
	if err != nil || cache == nil {
		return nil, false
	}
	if s.now().Sub(cache.CachedAt) > CacheTTL {
		return nil, false
	}
	snapshot, ok := cache.Daily[date]
	if !ok {
		return nil, false
	}
	return &snapshot, true
}

// preferredLocation resolves the stored location preference. Auto mode has
// no coordinates on the server side, so it requires the caller to pass them.
func (s *Service) preferredLocation() (model.Location, error) {
	pref, err := s.store.LocationPreference()
	if err != nil {
		return model.Location{}, err
	}
	if pref.Mode == model.LocationManual && pref.Manual != nil {
		return *pref.Manual, nil
	}
	return model.Location{}, ErrNoLocation
}
