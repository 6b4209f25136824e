package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/dripline/dripline/internal/goal"
	"github.com/dripline/dripline/internal/handler/dto"
	"github.com/dripline/dripline/internal/ledger"
	"github.com/dripline/dripline/internal/metrics"
	"github.com/dripline/dripline/internal/model"
	"github.com/dripline/dripline/internal/remote"
	"github.com/dripline/dripline/internal/stats"
	"github.com/dripline/dripline/internal/store"
)

type testEnv struct {
	store  *store.Store
	router *chi.Mux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.NewMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := metrics.NewInMemory()

	aggregator := stats.NewAggregator(st, logger, recorder)
	engine := goal.NewEngine(st, nil, logger, recorder)
	drinkLedger := ledger.New(st, engine, aggregator, nil, logger, recorder)
	remoteClient := remote.NewClient("", st, logger)

	drinkHandler := NewDrinkHandler(drinkLedger, logger)
	dayHandler := NewDayHandler(drinkLedger, logger)
	statsHandler := NewStatsHandler(aggregator, st, logger)
	goalHandler := NewGoalHandler(engine, st, logger)
	profileHandler := NewProfileHandler(st, engine, remoteClient, logger)
	authHandler := NewAuthHandler(remoteClient, st, drinkLedger, aggregator, recorder, logger)

	r := chi.NewRouter()
	r.Post("/v1/drinks", drinkHandler.Add)
	r.Delete("/v1/drinks/{id}", drinkHandler.Remove)
	r.Get("/v1/custom-drinks", drinkHandler.ListCustomDrinks)
	r.Post("/v1/custom-drinks", drinkHandler.CreateCustomDrink)
	r.Patch("/v1/custom-drinks/{id}", drinkHandler.UpdateCustomDrink)
	r.Delete("/v1/custom-drinks/{id}", drinkHandler.DeleteCustomDrink)
	r.Get("/v1/days", dayHandler.List)
	r.Get("/v1/days/{date}", dayHandler.Get)
	r.Put("/v1/days/{date}/goal", dayHandler.SetGoal)
	r.Get("/v1/stats", statsHandler.Get)
	r.Post("/v1/stats/reconcile", statsHandler.Reconcile)
	r.Get("/v1/goal", goalHandler.Get)
	r.Put("/v1/goal", goalHandler.Set)
	r.Get("/v1/preferences", profileHandler.GetPreferences)
	r.Put("/v1/preferences", profileHandler.PutPreferences)
	r.Get("/v1/profile", profileHandler.GetProfile)
	r.Put("/v1/profile", profileHandler.PutProfile)
	r.Post("/v1/auth/login", authHandler.Login)
	r.Get("/v1/sync/status", authHandler.SyncStatus)

	return &testEnv{store: st, router: r}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestDrinkHandler_AddAndRemove(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/drinks", dto.AddDrinkRequest{
		Date:     "2025-06-01",
		Type:     "water",
		AmountML: 500,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body.String())
	}
	added := decode[dto.AddDrinkResponse](t, rec)
	if added.Drink.HydrationML != 500 {
		t.Errorf("hydration = %v, want 500", added.Drink.HydrationML)
	}
	if added.Day.TotalHydrationML != 500 {
		t.Errorf("day total = %v, want 500", added.Day.TotalHydrationML)
	}

	rec = env.do(t, http.MethodDelete, "/v1/drinks/"+added.Drink.ID+"?date=2025-06-01", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d", rec.Code)
	}
	day := decode[dto.DayResponse](t, rec)
	if day.TotalHydrationML != 0 {
		t.Errorf("day total after remove = %v, want 0", day.TotalHydrationML)
	}

	// Removing again is a no-op, not an error.
	rec = env.do(t, http.MethodDelete, "/v1/drinks/"+added.Drink.ID+"?date=2025-06-01", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("repeat remove status = %d, want 200", rec.Code)
	}
}

func TestDrinkHandler_AddValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		body     dto.AddDrinkRequest
		wantCode string
	}{
		{"unknown type", dto.AddDrinkRequest{Type: "lava", AmountML: 100}, "INVALID_DRINK_TYPE"},
		{"zero amount", dto.AddDrinkRequest{Type: "water", AmountML: 0}, "INVALID_AMOUNT"},
		{"negative amount", dto.AddDrinkRequest{Type: "water", AmountML: -10}, "INVALID_AMOUNT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/v1/drinks", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			resp := decode[dto.ErrorResponse](t, rec)
			if resp.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestDayHandler_GetEmptyDay(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/days/2025-06-02", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	day := decode[dto.DayResponse](t, rec)
	if day.Date != "2025-06-02" {
		t.Errorf("date = %s", day.Date)
	}
	if day.GoalML != store.DefaultGoalML {
		t.Errorf("goal = %v, want default %v", day.GoalML, store.DefaultGoalML)
	}
	if len(day.Drinks) != 0 {
		t.Errorf("drinks = %d, want 0", len(day.Drinks))
	}
}

func TestDayHandler_InvalidDate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/days/junk", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDayHandler_ListNewestFirst(t *testing.T) {
	env := newTestEnv(t)

	for _, date := range []string{"2025-06-01", "2025-06-03", "2025-06-02"} {
		rec := env.do(t, http.MethodPost, "/v1/drinks", dto.AddDrinkRequest{
			Date: date, Type: "water", AmountML: 200,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed %s status = %d", date, rec.Code)
		}
	}

	rec := env.do(t, http.MethodGet, "/v1/days", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	days := decode[[]dto.DayResponse](t, rec)
	if len(days) != 3 {
		t.Fatalf("len = %d, want 3", len(days))
	}
	want := []string{"2025-06-03", "2025-06-02", "2025-06-01"}
	for i, date := range want {
		if days[i].Date != date {
			t.Errorf("days[%d].Date = %s, want %s", i, days[i].Date, date)
		}
	}
}

func TestDayHandler_SetGoalOverride(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/v1/days/2025-06-04/goal", dto.SetDayGoalRequest{GoalML: 3200})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	day := decode[dto.DayResponse](t, rec)
	if day.GoalML != 3200 {
		t.Errorf("goal = %v, want 3200", day.GoalML)
	}

	rec = env.do(t, http.MethodGet, "/v1/days/2025-06-04", nil)
	day = decode[dto.DayResponse](t, rec)
	if day.GoalML != 3200 {
		t.Errorf("persisted goal = %v, want 3200", day.GoalML)
	}

	rec = env.do(t, http.MethodPut, "/v1/days/2025-06-04/goal", dto.SetDayGoalRequest{GoalML: 0})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("zero goal status = %d, want 400", rec.Code)
	}
}

func TestStatsHandler_GetAndReconcile(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/drinks", dto.AddDrinkRequest{
		Date: "2025-06-01", Type: "water", AmountML: 800,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/v1/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	got := decode[model.UserStats](t, rec)
	if got.TotalConsumedML != 800 {
		t.Errorf("total = %v, want 800", got.TotalConsumedML)
	}

	rec = env.do(t, http.MethodPost, "/v1/stats/reconcile", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reconcile status = %d", rec.Code)
	}
	rebuilt := decode[model.UserStats](t, rec)
	if rebuilt.TotalConsumedML != 800 {
		t.Errorf("rebuilt total = %v, want 800", rebuilt.TotalConsumedML)
	}
}

func TestGoalHandler_CustomAndRecommended(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/v1/goal", dto.SetGoalRequest{Mode: "custom", GoalML: 3000})
	if rec.Code != http.StatusOK {
		t.Fatalf("set custom status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decode[dto.GoalResponse](t, rec)
	if resp.GoalML != 3000 || resp.Mode != "custom" {
		t.Errorf("resp = %+v", resp)
	}

	rec = env.do(t, http.MethodGet, "/v1/goal", nil)
	resp = decode[dto.GoalResponse](t, rec)
	if resp.GoalML != 3000 {
		t.Errorf("get goal = %v, want 3000", resp.GoalML)
	}

	rec = env.do(t, http.MethodPut, "/v1/goal", dto.SetGoalRequest{Mode: "recommended"})
	if rec.Code != http.StatusOK {
		t.Fatalf("set recommended status = %d", rec.Code)
	}
	resp = decode[dto.GoalResponse](t, rec)
	// No profile stored: falls back to the default goal.
	if resp.GoalML != store.DefaultGoalML {
		t.Errorf("recommended goal = %v, want %v", resp.GoalML, store.DefaultGoalML)
	}

	rec = env.do(t, http.MethodPut, "/v1/goal", dto.SetGoalRequest{Mode: "celsius"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad mode status = %d, want 400", rec.Code)
	}
	rec = env.do(t, http.MethodPut, "/v1/goal", dto.SetGoalRequest{Mode: "custom", GoalML: 0})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero custom goal status = %d, want 400", rec.Code)
	}
}

func TestDrinkHandler_CustomDrinkCRUD(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/custom-drinks", dto.CustomDrinkRequest{
		Name:                "Oat Latte",
		Color:               "#c89f6d",
		HydrationMultiplier: 0.85,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode[model.CustomDrink](t, rec)
	if created.ID == "" {
		t.Fatal("created drink has no id")
	}

	// Duplicate name, case-insensitive
	rec = env.do(t, http.MethodPost, "/v1/custom-drinks", dto.CustomDrinkRequest{
		Name:                "oat latte",
		HydrationMultiplier: 0.5,
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rec.Code)
	}

	// Out-of-range multiplier
	rec = env.do(t, http.MethodPost, "/v1/custom-drinks", dto.CustomDrinkRequest{
		Name:                "Rocket Fuel",
		HydrationMultiplier: 2.5,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out-of-range status = %d, want 400", rec.Code)
	}

	rec = env.do(t, http.MethodPatch, "/v1/custom-drinks/"+created.ID, dto.CustomDrinkRequest{
		Name:                "Oat Latte",
		Color:               "#b08050",
		HydrationMultiplier: 0.9,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decode[model.CustomDrink](t, rec)
	if updated.HydrationMultiplier != 0.9 {
		t.Errorf("multiplier = %v, want 0.9", updated.HydrationMultiplier)
	}

	rec = env.do(t, http.MethodGet, "/v1/custom-drinks", nil)
	drinks := decode[[]model.CustomDrink](t, rec)
	if len(drinks) != 1 {
		t.Fatalf("list len = %d, want 1", len(drinks))
	}

	rec = env.do(t, http.MethodDelete, "/v1/custom-drinks/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodPatch, "/v1/custom-drinks/"+created.ID, dto.CustomDrinkRequest{
		Name:                "Gone",
		HydrationMultiplier: 0.5,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("update deleted status = %d, want 404", rec.Code)
	}
}

func TestProfileHandler_PutAndGet(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/profile", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("empty profile status = %d, want 404", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/v1/profile", dto.ProfileRequest{
		Name:          "Sam",
		WeightKg:      70,
		Age:           30,
		ActivityLevel: "moderate",
		Climate:       "moderate",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, body %s", rec.Code, rec.Body.String())
	}
	profile := decode[model.UserProfile](t, rec)
	if profile.WeightKg != 70 {
		t.Errorf("weight = %v", profile.WeightKg)
	}

	rec = env.do(t, http.MethodGet, "/v1/profile", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	// With a profile stored, the recommended goal derives from it:
	// 70kg x 35 x 1.2 = 2940 -> 2900.
	rec = env.do(t, http.MethodGet, "/v1/goal", nil)
	goalResp := decode[dto.GoalResponse](t, rec)
	if goalResp.GoalML != 2900 {
		t.Errorf("goal = %v, want 2900", goalResp.GoalML)
	}
}

func TestProfileHandler_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body dto.ProfileRequest
		code string
	}{
		{"weight too low", dto.ProfileRequest{WeightKg: 5, Age: 30, ActivityLevel: "moderate", Climate: "moderate"}, "INVALID_WEIGHT"},
		{"age too high", dto.ProfileRequest{WeightKg: 70, Age: 200, ActivityLevel: "moderate", Climate: "moderate"}, "INVALID_AGE"},
		{"bad activity", dto.ProfileRequest{WeightKg: 70, Age: 30, ActivityLevel: "heroic", Climate: "moderate"}, "INVALID_ACTIVITY_LEVEL"},
		{"bad climate", dto.ProfileRequest{WeightKg: 70, Age: 30, ActivityLevel: "moderate", Climate: "tundra"}, "INVALID_CLIMATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPut, "/v1/profile", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			resp := decode[dto.ErrorResponse](t, rec)
			if resp.Code != tt.code {
				t.Errorf("code = %s, want %s", resp.Code, tt.code)
			}
		})
	}
}

func TestProfileHandler_Preferences(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/preferences", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	prefs := decode[dto.PreferencesResponse](t, rec)
	if prefs.VolumeUnit != "ml" {
		t.Errorf("default volume unit = %s, want ml", prefs.VolumeUnit)
	}

	oz := "oz"
	enabled := true
	rec = env.do(t, http.MethodPut, "/v1/preferences", dto.UpdatePreferencesRequest{
		VolumeUnit:               &oz,
		WeatherAdjustmentEnabled: &enabled,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, body %s", rec.Code, rec.Body.String())
	}
	prefs = decode[dto.PreferencesResponse](t, rec)
	if prefs.VolumeUnit != "oz" {
		t.Errorf("volume unit = %s, want oz", prefs.VolumeUnit)
	}
	if !prefs.WeatherAdjustmentEnabled {
		t.Error("weather adjustment not enabled")
	}

	bad := "liters"
	rec = env.do(t, http.MethodPut, "/v1/preferences", dto.UpdatePreferencesRequest{VolumeUnit: &bad})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad unit status = %d, want 400", rec.Code)
	}
}

func TestAuthHandler_LoginWithoutBackend(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/auth/login", dto.LoginRequest{
		Email:    "sam@example.com",
		Password: "hunter2",
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	resp := decode[dto.ErrorResponse](t, rec)
	if resp.Code != "REMOTE_NOT_CONFIGURED" {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestAuthHandler_SyncStatus(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/sync/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	status := decode[dto.SyncStatusResponse](t, rec)
	if status.RemoteConfigured {
		t.Error("remote should not be configured")
	}
	if status.Authenticated {
		t.Error("should not be authenticated")
	}
}
