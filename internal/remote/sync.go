package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dripline/dripline/internal/model"
)

// logPayload is the request body for pushing one hydration event.
type logPayload struct {
	Label               string        `json:"label"`
	Volume              volumePayload `json:"volume"`
	HydrationMultiplier *float64      `json:"hydrationMultiplier,omitempty"`
	ConsumedAt          string        `json:"consumedAt,omitempty"`
	Timezone            string        `json:"timezone,omitempty"`
	Source              string        `json:"source"`
	Notes               string        `json:"notes,omitempty"`
}

type volumePayload struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type logResponse struct {
	ID string `json:"id"`
}

// LogHydration pushes one drink event to the backend and returns the remote
// log id it was assigned.
func (c *Client) LogHydration(ctx context.Context, userID string, event model.DrinkEvent) (string, error) {
	tz, _ := c.store.Timezone()

	var multiplier *float64
	if event.AmountML != 0 {
		m := event.HydrationML / event.AmountML
		multiplier = &m
	}

	payload := logPayload{
		Label:               event.Label,
		Volume:              volumePayload{Value: event.AmountML, Unit: "ml"},
		HydrationMultiplier: multiplier,
		ConsumedAt:          event.Timestamp.UTC().Format(time.RFC3339),
		Timezone:            tz,
		Source:              string(event.Source),
	}

	var resp logResponse
	path := fmt.Sprintf("/api/users/%s/hydration/logs", url.PathEscape(userID))
	if err := c.do(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return "", fmt.Errorf("log hydration: %w", err)
	}
	return resp.ID, nil
}

// DeleteHydrationLog removes a previously pushed event from the backend.
func (c *Client) DeleteHydrationLog(ctx context.Context, userID, remoteLogID string) error {
	path := fmt.Sprintf("/api/users/%s/hydration/logs/%s", url.PathEscape(userID), url.PathEscape(remoteLogID))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete hydration log: %w", err)
	}
	return nil
}

// backendLog is one hydration event in aggregate read responses.
type backendLog struct {
	ID            string    `json:"id"`
	Label         string    `json:"label"`
	CustomDrinkID string    `json:"customDrinkId,omitempty"`
	VolumeMl      float64   `json:"volumeMl"`
	EffectiveMl   float64   `json:"effectiveMl"`
	ConsumedAt    time.Time `json:"consumedAt"`
}

type dailySummaryResponse struct {
	Date               string       `json:"date"`
	TotalVolumeMl      float64      `json:"totalVolumeMl"`
	TotalEffectiveMl   float64      `json:"totalEffectiveMl"`
	GoalVolumeMl       float64      `json:"goalVolumeMl"`
	ProgressPercentage float64      `json:"progressPercentage"`
	Status             string       `json:"status"`
	Logs               []backendLog `json:"logs"`
}

// FetchDayRecord pulls one day's summary and maps it into the local record
// shape. Remote label-only entries are classified into built-in types by
// keyword, falling back to custom drinks matched by name.
func (c *Client) FetchDayRecord(ctx context.Context, userID, date string) (*model.DayRecord, error) {
	tz, _ := c.store.Timezone()

	params := url.Values{}
	params.Set("date", date)
	if tz != "" {
		params.Set("timezone", tz)
	}

	var resp dailySummaryResponse
	path := fmt.Sprintf("/api/users/%s/hydration/daily?%s", url.PathEscape(userID), params.Encode())
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch day record: %w", err)
	}

	record := model.NewDayRecord(date, resp.GoalVolumeMl)
	for _, log := range resp.Logs {
		record.Drinks = append(record.Drinks, c.mapBackendLog(log))
	}
	record.RecomputeTotal()
	return record, nil
}

// mapBackendLog converts a remote log entry into a local drink event.
func (c *Client) mapBackendLog(log backendLog) model.DrinkEvent {
	event := model.DrinkEvent{
		ID:          log.ID,
		Label:       log.Label,
		AmountML:    log.VolumeMl,
		HydrationML: log.EffectiveMl,
		Timestamp:   log.ConsumedAt,
		RemoteLogID: log.ID,
		Source:      model.SourceBackend,
	}

	drinkType := ClassifyLabel(log.Label)
	event.Type = drinkType

	if drinkType == model.DrinkCustom {
		// Resolve against local custom drinks: by remote id mapping first,
		// then by name.
		if log.CustomDrinkID != "" {
			if drink, err := c.store.CustomDrinkByID(log.CustomDrinkID); err == nil && drink != nil {
				event.CustomDrinkID = drink.ID
			}
		}
		if event.CustomDrinkID == "" {
			if drink, err := c.store.CustomDrinkByLabel(log.Label); err == nil && drink != nil {
				event.CustomDrinkID = drink.ID
			}
		}
	}

	if event.HydrationML == 0 && event.AmountML != 0 {
		event.HydrationML = event.AmountML * drinkType.Multiplier()
	}
	return event
}

type statsResponse struct {
	StreakCount      int                    `json:"streakCount"`
	BestStreak       int                    `json:"bestStreak"`
	TotalVolumeMl    float64                `json:"totalVolumeMl"`
	TotalEffectiveMl float64                `json:"totalEffectiveMl"`
	DailySummaries   []dailySummaryResponse `json:"dailySummaries"`
}

// FetchHydrationStats pulls backend-derived stats mapped into the local
// UserStats shape. The achievement catalog is not remote state and comes
// back empty; callers merge it with the local one.
func (c *Client) FetchHydrationStats(ctx context.Context, userID string, days int) (*model.UserStats, error) {
	tz, _ := c.store.Timezone()

	params := url.Values{}
	if tz != "" {
		params.Set("timezone", tz)
	}
	if days > 0 {
		params.Set("days", fmt.Sprintf("%d", days))
	}

	var resp statsResponse
	path := fmt.Sprintf("/api/users/%s/hydration/stats?%s", url.PathEscape(userID), params.Encode())
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch hydration stats: %w", err)
	}

	stats := &model.UserStats{
		CurrentStreak:   resp.StreakCount,
		LongestStreak:   resp.BestStreak,
		TotalConsumedML: resp.TotalEffectiveMl,
	}
	for _, summary := range resp.DailySummaries {
		stats.History = append(stats.History, model.DailySummary{
			Date:               summary.Date,
			TotalVolumeML:      summary.TotalVolumeMl,
			TotalEffectiveML:   summary.TotalEffectiveMl,
			GoalVolumeML:       summary.GoalVolumeMl,
			ProgressPercentage: summary.ProgressPercentage,
			Status:             model.DayStatus(summary.Status),
		})
	}
	return stats, nil
}

// profilePayload is the full-overwrite profile representation PATCHed to the
// backend. Sending unchanged local state twice is a remote no-op.
type profilePayload struct {
	Name             string         `json:"name,omitempty"`
	Weight           *weightPayload `json:"weight,omitempty"`
	Age              int            `json:"age,omitempty"`
	Gender           string         `json:"gender,omitempty"`
	ActivityLevel    string         `json:"activityLevel,omitempty"`
	Climate          string         `json:"climate,omitempty"`
	VolumeUnit       string         `json:"volumeUnit,omitempty"`
	TemperatureUnit  string         `json:"temperatureUnit,omitempty"`
	CustomGoalLiters *float64       `json:"customGoalLiters,omitempty"`
	Timezone         string         `json:"timezone,omitempty"`
}

type weightPayload struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// SyncProfile overwrites the remote user resource from the current local
// profile and preferences. Idempotent by construction.
func (c *Client) SyncProfile(ctx context.Context, userID string) error {
	profile, err := c.store.Profile()
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return nil
	}

	volumeUnit, _ := c.store.VolumeUnit()
	temperatureUnit, _ := c.store.TemperatureUnit()
	tz, _ := c.store.Timezone()

	payload := profilePayload{
		Name:            profile.Name,
		Weight:          &weightPayload{Value: profile.WeightKg, Unit: "kg"},
		Age:             profile.Age,
		Gender:          string(profile.Gender),
		ActivityLevel:   string(profile.ActivityLevel),
		Climate:         string(profile.Climate),
		VolumeUnit:      string(volumeUnit),
		TemperatureUnit: string(temperatureUnit),
		Timezone:        tz,
	}

	mode, _ := c.store.GoalMode()
	if mode == model.GoalModeCustom {
		if goalML, err := c.store.DailyGoal(); err == nil && goalML > 0 {
			liters := goalML / 1000
			payload.CustomGoalLiters = &liters
		}
	}

	path := fmt.Sprintf("/api/users/%s", url.PathEscape(userID))
	if err := c.do(ctx, http.MethodPatch, path, payload, nil); err != nil {
		return fmt.Errorf("sync profile: %w", err)
	}
	return nil
}

// backendDrink is the custom drink resource shape.
type backendDrink struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Color               string  `json:"color,omitempty"`
	Icon                string  `json:"icon,omitempty"`
	HydrationMultiplier float64 `json:"hydrationMultiplier"`
}

// PullCustomDrinks fetches the remote custom drink list and records the
// remote id to label mapping so label-only log entries can be matched back.
// Remote drinks unknown locally are created; local-only drinks are left
// alone.
func (c *Client) PullCustomDrinks(ctx context.Context, userID string) error {
	var drinks []backendDrink
	path := fmt.Sprintf("/api/users/%s/drinks", url.PathEscape(userID))
	if err := c.do(ctx, http.MethodGet, path, nil, &drinks); err != nil {
		return fmt.Errorf("pull custom drinks: %w", err)
	}

	for _, drink := range drinks {
		if err := c.store.RememberBackendDrink(drink.ID, drink.Name); err != nil {
			return fmt.Errorf("remember backend drink: %w", err)
		}

		existing, err := c.store.CustomDrinkByLabel(drink.Name)
		if err != nil {
			return fmt.Errorf("match custom drink: %w", err)
		}
		if existing != nil {
			continue
		}

		local := &model.CustomDrink{
			ID:                  drink.ID,
			Name:                drink.Name,
			Color:               drink.Color,
			Icon:                drink.Icon,
			HydrationMultiplier: drink.HydrationMultiplier,
		}
		if !local.MultiplierInRange() {
			c.logger.Warn("skipping remote drink with out-of-range multiplier",
				"name", drink.Name,
				"multiplier", drink.HydrationMultiplier,
			)
			continue
		}
		if err := c.store.SaveCustomDrink(local); err != nil {
			return fmt.Errorf("save pulled drink: %w", err)
		}
	}
	return nil
}

// PushCustomDrink mirrors a locally created custom drink to the backend and
// records the assigned remote id.
func (c *Client) PushCustomDrink(ctx context.Context, userID string, drink *model.CustomDrink) error {
	payload := backendDrink{
		Name:                drink.Name,
		Color:               drink.Color,
		Icon:                drink.Icon,
		HydrationMultiplier: drink.HydrationMultiplier,
	}

	var resp backendDrink
	path := fmt.Sprintf("/api/users/%s/drinks", url.PathEscape(userID))
	if err := c.do(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return fmt.Errorf("push custom drink: %w", err)
	}
	if resp.ID != "" {
		if err := c.store.RememberBackendDrink(resp.ID, drink.Name); err != nil {
			return fmt.Errorf("remember backend drink: %w", err)
		}
	}
	return nil
}
