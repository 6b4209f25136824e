package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dripline/dripline/internal/model"
	"github.com/dripline/dripline/internal/store"
)

type fakeProvider struct {
	current    model.WeatherSnapshot
	weekly     []model.WeatherSnapshot
	currentErr error
	weeklyErr  error
	fetches    int
}

func (p *fakeProvider) FetchCurrent(_ context.Context, _, _ float64) (model.WeatherSnapshot, error) {
	p.fetches++
	if p.currentErr != nil {
		return model.WeatherSnapshot{}, p.currentErr
	}
	return p.current, nil
}

func (p *fakeProvider) FetchWeekly(_ context.Context, _, _ float64) ([]model.WeatherSnapshot, error) {
	p.fetches++
	if p.weeklyErr != nil {
		return nil, p.weeklyErr
	}
	return p.weekly, nil
}

func (p *fakeProvider) LocationName(_ context.Context, _, _ float64) string {
	return "Testville"
}

func newTestService(t *testing.T, provider Provider) (*Service, *store.Store) {
	t.Helper()

	st, err := store.NewMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(st, provider, logger, nil), st
}

func setManualLocation(t *testing.T, st *store.Store) {
	t.Helper()
	err := st.SaveLocationPreference(&model.LocationPreference{
		Mode:   model.LocationManual,
		Manual: &model.Location{Lat: 51.5, Lon: -0.12, Name: "London"},
	})
	if err != nil {
		t.Fatalf("save location preference: %v", err)
	}
}

func TestCurrentServesFromCache(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{current: model.WeatherSnapshot{TemperatureC: 22, Location: "Testville"}}
	svc, st := newTestService(t, provider)
	setManualLocation(t, st)

	first, err := svc.Current(context.Background(), false)
	if err != nil {
		t.Fatalf("first Current: %v", err)
	}
	second, err := svc.Current(context.Background(), false)
	if err != nil {
		t.Fatalf("second Current: %v", err)
	}

	if provider.fetches != 1 {
		t.Errorf("fetches = %d, want 1 (second call should hit cache)", provider.fetches)
	}
	if first.TemperatureC != second.TemperatureC {
		t.Errorf("cached snapshot differs: %v vs %v", first, second)
	}
}

func TestCurrentExpiredCacheRefetches(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{current: model.WeatherSnapshot{TemperatureC: 18}}
	svc, st := newTestService(t, provider)
	setManualLocation(t, st)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.Current(context.Background(), false); err != nil {
		t.Fatalf("initial Current: %v", err)
	}

	// Advance past the TTL; the cache must no longer satisfy reads.
	now = now.Add(CacheTTL + time.Hour)

	if _, ok := svc.Cached(); ok {
		t.Fatal("Cached() returned a snapshot past the TTL")
	}
	if _, err := svc.Current(context.Background(), false); err != nil {
		t.Fatalf("Current after expiry: %v", err)
	}
	if provider.fetches != 2 {
		t.Errorf("fetches = %d, want 2", provider.fetches)
	}
}

func TestCurrentNoLocation(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	svc, _ := newTestService(t, provider)

	_, err := svc.Current(context.Background(), false)
	if !errors.Is(err, ErrNoLocation) {
		t.Fatalf("Current without location = %v, want ErrNoLocation", err)
	}
	if provider.fetches != 0 {
		t.Errorf("fetches = %d, want 0", provider.fetches)
	}
}

func TestForcedRefreshQuota(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{current: model.WeatherSnapshot{TemperatureC: 28}}
	svc, st := newTestService(t, provider)
	setManualLocation(t, st)

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	for i := 0; i < MaxRefreshes; i++ {
		if _, err := svc.Current(context.Background(), true); err != nil {
			t.Fatalf("forced refresh %d: %v", i+1, err)
		}
	}

	_, err := svc.Current(context.Background(), true)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("refresh past quota = %v, want ErrRateLimited", err)
	}
	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("error is not *RateLimitError: %v", err)
	}
	wantReset := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	if !rateErr.ResetAt.Equal(wantReset) {
		t.Errorf("ResetAt = %v, want %v", rateErr.ResetAt, wantReset)
	}

	// Unforced reads still work off the cache.
	if _, err := svc.Current(context.Background(), false); err != nil {
		t.Fatalf("unforced read after quota: %v", err)
	}

	// Once the window elapses the quota resets.
	now = now.Add(RefreshWindow)
	if _, err := svc.Current(context.Background(), true); err != nil {
		t.Fatalf("forced refresh after window reset: %v", err)
	}
}

func TestRefreshQuotaReporting(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{current: model.WeatherSnapshot{TemperatureC: 28}}
	svc, st := newTestService(t, provider)
	setManualLocation(t, st)

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	quota, err := svc.RefreshQuota()
	if err != nil {
		t.Fatalf("RefreshQuota: %v", err)
	}
	if quota.Used != 0 || quota.Remaining != MaxRefreshes {
		t.Errorf("fresh quota = %+v, want 0 used", quota)
	}

	if _, err := svc.Current(context.Background(), true); err != nil {
		t.Fatalf("forced refresh: %v", err)
	}

	quota, err = svc.RefreshQuota()
	if err != nil {
		t.Fatalf("RefreshQuota: %v", err)
	}
	if quota.Used != 1 || quota.Remaining != MaxRefreshes-1 {
		t.Errorf("quota after one refresh = %+v", quota)
	}

	now = now.Add(RefreshWindow)
	quota, err = svc.RefreshQuota()
	if err != nil {
		t.Fatalf("RefreshQuota: %v", err)
	}
	if quota.Used != 0 || quota.Remaining != MaxRefreshes {
		t.Errorf("quota after window = %+v, want reset", quota)
	}
}

func TestFetchFailureServesStaleCache(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{current: model.WeatherSnapshot{TemperatureC: 21, Description: "overcast"}}
	svc, st := newTestService(t, provider)
	setManualLocation(t, st)

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.Current(context.Background(), false); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	now = now.Add(CacheTTL + time.Hour)
	provider.currentErr = errors.New("upstream down")

	snapshot, err := svc.Current(context.Background(), false)
	if err != nil {
		t.Fatalf("Current with failing provider = %v, want stale cache", err)
	}
	if snapshot.Description != "overcast" {
		t.Errorf("snapshot = %+v, want stale cached data", snapshot)
	}
}

func TestWeeklyCachesPerDay(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{weekly: []model.WeatherSnapshot{
		{Date: "2025-06-01", TemperatureC: 24},
		{Date: "2025-06-02", TemperatureC: 27},
	}}
	svc, st := newTestService(t, provider)
	setManualLocation(t, st)

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	cache, err := svc.Weekly(context.Background(), false)
	if err != nil {
		t.Fatalf("Weekly: %v", err)
	}
	if len(cache.Daily) != 2 {
		t.Fatalf("Daily has %d entries, want 2", len(cache.Daily))
	}

	if _, err := svc.Weekly(context.Background(), false); err != nil {
		t.Fatalf("second Weekly: %v", err)
	}
	if provider.fetches != 1 {
		t.Errorf("fetches = %d, want 1 (same-day reads hit cache)", provider.fetches)
	}

	snapshot, ok := svc.ForDate("2025-06-02")
	if !ok {
		t.Fatal("ForDate missed a cached date")
	}
	if snapshot.TemperatureC != 27 {
		t.Errorf("ForDate temperature = %v, want 27", snapshot.TemperatureC)
	}
	if _, ok := svc.ForDate("2025-06-09"); ok {
		t.Error("ForDate returned a snapshot for an uncached date")
	}

	// Next day the cache is stale and a new fetch happens.
	now = now.Add(24 * time.Hour)
	if _, err := svc.Weekly(context.Background(), false); err != nil {
		t.Fatalf("Weekly next day: %v", err)
	}
	if provider.fetches != 2 {
		t.Errorf("fetches = %d, want 2", provider.fetches)
	}
}

func TestFailedForcedRefreshRefundsQuota(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{currentErr: errors.New("upstream down")}
	svc, st := newTestService(t, provider)
	setManualLocation(t, st)

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.Current(context.Background(), true); err == nil {
		t.Fatal("forced refresh with failing provider and empty cache should error")
	}

	quota, err := svc.RefreshQuota()
	if err != nil {
		t.Fatalf("RefreshQuota: %v", err)
	}
	if quota.Used != 0 || quota.Remaining != MaxRefreshes {
		t.Errorf("quota after failed fetch = %+v, want untouched", quota)
	}

	// The refunded credit is spendable once the provider recovers.
	provider.currentErr = nil
	provider.current = model.WeatherSnapshot{TemperatureC: 19}
	for i := 0; i < MaxRefreshes; i++ {
		if _, err := svc.Current(context.Background(), true); err != nil {
			t.Fatalf("forced refresh %d: %v", i+1, err)
		}
	}
}

func TestForDateExpiredWeeklyCache(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{weekly: []model.WeatherSnapshot{
		{Date: "2025-06-01", TemperatureC: 35},
	}}
	svc, st := newTestService(t, provider)
	setManualLocation(t, st)

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.Weekly(context.Background(), false); err != nil {
		t.Fatalf("Weekly: %v", err)
	}
	if _, ok := svc.ForDate("2025-06-01"); !ok {
		t.Fatal("ForDate missed a fresh cache")
	}

	now = now.Add(CacheTTL + time.Hour)
	if _, ok := svc.ForDate("2025-06-01"); ok {
		t.Error("ForDate served a snapshot past the cache TTL")
	}
}

func TestCurrentMultiplierUsesCache(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{current: model.WeatherSnapshot{TemperatureC: 32, Humidity: 20}}
	svc, st := newTestService(t, provider)
	setManualLocation(t, st)

	if _, ok := svc.CurrentMultiplier(); ok {
		t.Fatal("CurrentMultiplier reported a value with an empty cache")
	}

	if _, err := svc.Current(context.Background(), false); err != nil {
		t.Fatalf("Current: %v", err)
	}

	multiplier, ok := svc.CurrentMultiplier()
	if !ok {
		t.Fatal("CurrentMultiplier found no cache after a fetch")
	}
	if diff := multiplier - 1.45; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("multiplier = %v, want 1.45", multiplier)
	}
}
