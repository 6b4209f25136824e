package store

import (
	"testing"
	"time"

	"github.com/dripline/dripline/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDayRecord_RoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	record := model.NewDayRecord("2025-06-01", 2500)
	record.Drinks = append(record.Drinks, model.DrinkEvent{
		ID:          "01HZXC",
		Type:        model.DrinkWater,
		AmountML:    500,
		HydrationML: 500,
		Timestamp:   time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		Source:      model.SourceLocal,
	})
	record.RecomputeTotal()

	if err := s.SaveDayRecord(record); err != nil {
		t.Fatalf("SaveDayRecord: %v", err)
	}

	got, err := s.GetDayRecord("2025-06-01")
	if err != nil {
		t.Fatalf("GetDayRecord: %v", err)
	}
	if got == nil {
		t.Fatal("GetDayRecord returned nil")
	}
	if got.TotalHydrationML != 500 || len(got.Drinks) != 1 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Drinks[0].ID != "01HZXC" {
		t.Errorf("drink id = %q, want 01HZXC", got.Drinks[0].ID)
	}
}

func TestDayRecord_MissingDateIsNil(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	got, err := s.GetDayRecord("1999-01-01")
	if err != nil {
		t.Fatalf("GetDayRecord: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown date, got %+v", got)
	}
}

func TestDayRecord_CorruptedValueDegradesToAbsent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if err := s.set(keyDayPrefix+"2025-06-01", "{not json"); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := s.GetDayRecord("2025-06-01")
	if err != nil {
		t.Fatalf("GetDayRecord should not fail on corrupt value: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for corrupt value, got %+v", got)
	}
}

func TestAllDayRecords_SkipsCorrupt(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if err := s.SaveDayRecord(model.NewDayRecord("2025-06-01", 2500)); err != nil {
		t.Fatalf("SaveDayRecord: %v", err)
	}
	if err := s.SaveDayRecord(model.NewDayRecord("2025-06-02", 2500)); err != nil {
		t.Fatalf("SaveDayRecord: %v", err)
	}
	if err := s.set(keyDayPrefix+"2025-06-03", "garbage"); err != nil {
		t.Fatalf("set: %v", err)
	}

	records, err := s.AllDayRecords()
	if err != nil {
		t.Fatalf("AllDayRecords: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("len(records) = %d, want 2", len(records))
	}
	if _, ok := records["2025-06-03"]; ok {
		t.Error("corrupt record should be skipped")
	}
}

func TestCustomDrink_RoundTripByIDAndLabel(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	drink := &model.CustomDrink{
		ID:                  "dk-1",
		Name:                "Coconut Water",
		Color:               "#00aa88",
		HydrationMultiplier: 1.1,
		Icon:                "glass-water",
	}
	if err := s.SaveCustomDrink(drink); err != nil {
		t.Fatalf("SaveCustomDrink: %v", err)
	}

	byID, err := s.CustomDrinkByID("dk-1")
	if err != nil {
		t.Fatalf("CustomDrinkByID: %v", err)
	}
	if byID == nil || *byID != *drink {
		t.Errorf("by id = %+v, want %+v", byID, drink)
	}

	byLabel, err := s.CustomDrinkByLabel("  coconut WATER ")
	if err != nil {
		t.Fatalf("CustomDrinkByLabel: %v", err)
	}
	if byLabel == nil || *byLabel != *drink {
		t.Errorf("by label = %+v, want %+v", byLabel, drink)
	}
}

func TestCustomDrink_UpsertByID(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	drink := &model.CustomDrink{ID: "dk-1", Name: "Broth", HydrationMultiplier: 0.9}
	if err := s.SaveCustomDrink(drink); err != nil {
		t.Fatalf("SaveCustomDrink: %v", err)
	}
	drink.HydrationMultiplier = 0.8
	if err := s.SaveCustomDrink(drink); err != nil {
		t.Fatalf("SaveCustomDrink update: %v", err)
	}

	drinks, err := s.CustomDrinks()
	if err != nil {
		t.Fatalf("CustomDrinks: %v", err)
	}
	if len(drinks) != 1 {
		t.Fatalf("len(drinks) = %d, want 1 (upsert, not append)", len(drinks))
	}
	if drinks[0].HydrationMultiplier != 0.8 {
		t.Errorf("multiplier = %v, want 0.8", drinks[0].HydrationMultiplier)
	}
}

func TestCustomDrinkByID_BackendDrinkMapFallback(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	local := &model.CustomDrink{ID: "local-1", Name: "Yerba Mate", HydrationMultiplier: 0.85}
	if err := s.SaveCustomDrink(local); err != nil {
		t.Fatalf("SaveCustomDrink: %v", err)
	}
	// The backend created the same drink under its own id scheme.
	if err := s.RememberBackendDrink("remote-9", "Yerba Mate"); err != nil {
		t.Fatalf("RememberBackendDrink: %v", err)
	}

	got, err := s.CustomDrinkByID("remote-9")
	if err != nil {
		t.Fatalf("CustomDrinkByID: %v", err)
	}
	if got == nil || got.ID != "local-1" {
		t.Errorf("fallback lookup = %+v, want local-1", got)
	}
}

func TestPreferences_Defaults(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if unit, _ := s.VolumeUnit(); unit != model.UnitML {
		t.Errorf("VolumeUnit default = %v, want ml", unit)
	}
	if unit, _ := s.WeightUnit(); unit != model.UnitKg {
		t.Errorf("WeightUnit default = %v, want kg", unit)
	}
	if unit, _ := s.TemperatureUnit(); unit != model.UnitFahrenheit {
		t.Errorf("TemperatureUnit default = %v, want F", unit)
	}
	if tz, _ := s.Timezone(); tz != "" {
		t.Errorf("Timezone default = %q, want empty", tz)
	}
	if enabled, _ := s.WeatherAdjustmentEnabled(); !enabled {
		t.Error("WeatherAdjustmentEnabled default should be true")
	}
	if style, _ := s.ProgressWheelStyle(); style != model.WheelDrinkColors {
		t.Errorf("ProgressWheelStyle default = %v, want drink_colors", style)
	}
	if goal, _ := s.DailyGoal(); goal != DefaultGoalML {
		t.Errorf("DailyGoal default = %v, want %v", goal, DefaultGoalML)
	}
	if mode, _ := s.GoalMode(); mode != model.GoalModeRecommended {
		t.Errorf("GoalMode default = %v, want recommended", mode)
	}
}

func TestStats_DefaultHasLockedCatalog(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats.Achievements) != 6 {
		t.Fatalf("achievements = %d, want 6", len(stats.Achievements))
	}
	for _, a := range stats.Achievements {
		if a.Unlocked {
			t.Errorf("achievement %s should start locked", a.ID)
		}
	}
}

func TestClearAuthToken_PreservesPreferences(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if err := s.SaveAuthToken("tok-123"); err != nil {
		t.Fatalf("SaveAuthToken: %v", err)
	}
	if err := s.SaveBackendUserID("user-7"); err != nil {
		t.Fatalf("SaveBackendUserID: %v", err)
	}
	if err := s.SetTimezone("America/New_York"); err != nil {
		t.Fatalf("SetTimezone: %v", err)
	}
	if err := s.SavePolicyAcceptedVersion("2025-01"); err != nil {
		t.Fatalf("SavePolicyAcceptedVersion: %v", err)
	}

	if err := s.ClearAuthToken(); err != nil {
		t.Fatalf("ClearAuthToken: %v", err)
	}

	if token, _ := s.AuthToken(); token != "" {
		t.Errorf("token survived clear: %q", token)
	}
	if id, _ := s.BackendUserID(); id != "" {
		t.Errorf("backend user id survived clear: %q", id)
	}
	if version, _ := s.PolicyAcceptedVersion(); version != "" {
		t.Errorf("policy acceptance survived clear: %q", version)
	}
	if tz, _ := s.Timezone(); tz != "America/New_York" {
		t.Errorf("timezone should survive clear, got %q", tz)
	}
}

func TestLogout_PurgesHistoryKeepsDevicePrefs(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if err := s.SaveDayRecord(model.NewDayRecord("2025-06-01", 2500)); err != nil {
		t.Fatalf("SaveDayRecord: %v", err)
	}
	if err := s.SaveCustomDrink(&model.CustomDrink{ID: "dk-1", Name: "Broth"}); err != nil {
		t.Fatalf("SaveCustomDrink: %v", err)
	}
	if err := s.SaveProfile(&model.UserProfile{Name: "Sam", WeightKg: 70}); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if err := s.SetVolumeUnit(model.UnitOz); err != nil {
		t.Fatalf("SetVolumeUnit: %v", err)
	}

	if err := s.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if record, _ := s.GetDayRecord("2025-06-01"); record != nil {
		t.Error("day record survived logout")
	}
	if drinks, _ := s.CustomDrinks(); len(drinks) != 0 {
		t.Error("custom drinks survived logout")
	}
	if profile, _ := s.Profile(); profile != nil {
		t.Error("profile survived logout")
	}
	if unit, _ := s.VolumeUnit(); unit != model.UnitOz {
		t.Error("device preference should survive logout")
	}
}

func TestWeatherCache_RoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	entry := &model.WeatherCacheEntry{
		Data: model.WeatherSnapshot{
			TemperatureC: 28.5,
			Humidity:     40,
			Description:  "partly cloudy",
			Icon:         "02d",
			Location:     "Lisbon, Portugal",
			FetchedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		CachedAt:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		RefreshCount:    1,
		LastRefreshDate: "2025-06-01",
	}
	if err := s.SaveWeatherCache(entry); err != nil {
		t.Fatalf("SaveWeatherCache: %v", err)
	}

	got, err := s.WeatherCache()
	if err != nil {
		t.Fatalf("WeatherCache: %v", err)
	}
	if got == nil || got.Data.Location != "Lisbon, Portugal" || got.RefreshCount != 1 {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if err := s.DeleteWeatherCache(); err != nil {
		t.Fatalf("DeleteWeatherCache: %v", err)
	}
	if got, _ := s.WeatherCache(); got != nil {
		t.Error("cache survived delete")
	}
}

func TestLocationPreference_DefaultAuto(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	pref, err := s.LocationPreference()
	if err != nil {
		t.Fatalf("LocationPreference: %v", err)
	}
	if pref.Mode != model.LocationAuto {
		t.Errorf("default mode = %v, want auto", pref.Mode)
	}

	manual := &model.LocationPreference{
		Mode:   model.LocationManual,
		Manual: &model.Location{Lat: 38.72, Lon: -9.14, Name: "Lisbon"},
	}
	if err := s.SaveLocationPreference(manual); err != nil {
		t.Fatalf("SaveLocationPreference: %v", err)
	}
	got, err := s.LocationPreference()
	if err != nil {
		t.Fatalf("LocationPreference: %v", err)
	}
	if got.Mode != model.LocationManual || got.Manual == nil || got.Manual.Name != "Lisbon" {
		t.Errorf("manual preference mismatch: %+v", got)
	}
}
