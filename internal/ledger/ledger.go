// Package ledger owns the per-day drink event stream: appending and removing
// events, keeping each day's hydration total consistent, and handing
// completed mutations to the stats aggregator and the remote push queue.
package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/dripline/dripline/internal/metrics"
	"github.com/dripline/dripline/internal/model"
	"github.com/dripline/dripline/internal/store"
)

var (
	ErrInvalidDrinkType    = errors.New("unknown drink type")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrCustomDrinkNotFound = errors.New("custom drink not found")
	ErrInvalidMultiplier   = errors.New("hydration multiplier out of range")
	ErrDuplicateDrinkName  = errors.New("custom drink name already in use")
)

// GoalSource supplies the effective goal for a date when a new day record is
// created lazily on first drink.
type GoalSource interface {
	ForDate(date string) (float64, error)
}

// StatsSink folds a completed day mutation into the derived stats.
type StatsSink interface {
	ApplyDayMutation(record *model.DayRecord, previousTotalML float64) (*model.UserStats, []model.Achievement, error)
}

// Pusher accepts detached best-effort remote sync work. Implementations must
// return immediately; a nil Pusher disables remote sync.
type Pusher interface {
	EnqueueLog(dateKey string, event model.DrinkEvent)
	EnqueueDelete(remoteLogID string)
}

// Ledger serializes read-modify-write cycles over day records so concurrent
// mutations never clobber each other with stale in-memory copies.
type Ledger struct {
	store    *store.Store
	goals    GoalSource
	stats    StatsSink
	pusher   Pusher
	logger   *slog.Logger
	recorder metrics.Recorder

	now func() time.Time

	mu sync.Mutex
}

// New wires a drink ledger. pusher may be nil; recorder falls back to noop.
func New(st *store.Store, goals GoalSource, stats StatsSink, pusher Pusher, logger *slog.Logger, recorder metrics.Recorder) *Ledger {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Ledger{
		store:    st,
		goals:    goals,
		stats:    stats,
		pusher:   pusher,
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
	}
}

// TodayKey computes the current day key in the user's configured timezone,
// falling back to the system zone.
func (l *Ledger) TodayKey() string {
	tz, err := l.store.Timezone()
	if err != nil {
		tz = ""
	}
	return model.LocalDayKey(l.now(), tz)
}

// AddResult is the outcome of a drink append: the created event, the updated
// day record, and any achievements the mutation unlocked.
type AddResult struct {
	Event    model.DrinkEvent
	Record   *model.DayRecord
	Stats    *model.UserStats
	Unlocked []model.Achievement
}

// AddDrink appends a drink event to the record for dateKey, creating the
// record with the goal engine's current value when absent. The total is
// recomputed as a full sum over the day's events. The local write completes
// before the remote push is enqueued; remote failure never rolls back the
// local append. An empty dateKey means today.
func (l *Ledger) AddDrink(dateKey string, drinkType model.DrinkType, amountML float64, customDrinkID string) (*AddResult, error) {
	if !drinkType.IsValid() {
		return nil, ErrInvalidDrinkType
	}
	if amountML <= 0 {
		return nil, ErrInvalidAmount
	}
	if dateKey == "" {
		dateKey = l.TodayKey()
	}

	multiplier := drinkType.Multiplier()
	label := drinkType.Label()
	if drinkType == model.DrinkCustom {
		drink, err := l.store.CustomDrinkByID(customDrinkID)
		if err != nil {
			return nil, fmt.Errorf("resolve custom drink: %w", err)
		}
		if drink == nil {
			return nil, ErrCustomDrinkNotFound
		}
		multiplier = drink.HydrationMultiplier
		label = drink.Name
		customDrinkID = drink.ID
	} else {
		customDrinkID = ""
	}

	event := model.DrinkEvent{
		ID:            ulid.Make().String(),
		Type:          drinkType,
		CustomDrinkID: customDrinkID,
		Label:         label,
		AmountML:      amountML,
		HydrationML:   amountML * multiplier,
		Timestamp:     l.now().UTC(),
		Source:        model.SourceLocal,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	record, err := l.store.GetDayRecord(dateKey)
	if err != nil {
		return nil, fmt.Errorf("load day record: %w", err)
	}
	if record == nil {
		record = model.NewDayRecord(dateKey, l.goalFor(dateKey))
	}

	previousTotal := record.TotalHydrationML
	record.Drinks = append(record.Drinks, event)
	record.RecomputeTotal()

	if err := l.store.SaveDayRecord(record); err != nil {
		return nil, fmt.Errorf("save day record: %w", err)
	}

	stats, unlocked, err := l.stats.ApplyDayMutation(record, previousTotal)
	if err != nil {
		return nil, err
	}

	l.recorder.IncDrinkLogged(string(drinkType))
	l.logger.Debug("drink logged",
		"date", dateKey,
		"type", drinkType,
		"amount_ml", amountML,
		"hydration_ml", event.HydrationML,
	)

	if l.pusher != nil {
		l.pusher.EnqueueLog(dateKey, event)
	}

	return &AddResult{Event: event, Record: record, Stats: stats, Unlocked: unlocked}, nil
}

// RemoveDrink deletes a drink event from the record for dateKey and
// recomputes the total. Removing an id that does not exist is a no-op
// success. When the event carried a remote log id its remote copy is deleted
// best-effort.
func (l *Ledger) RemoveDrink(dateKey, drinkID string) (*model.DayRecord, error) {
	if dateKey == "" {
		dateKey = l.TodayKey()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	record, err := l.store.GetDayRecord(dateKey)
	if err != nil {
		return nil, fmt.Errorf("load day record: %w", err)
	}
	if record == nil {
		return nil, nil
	}

	index := -1
	for i := range record.Drinks {
		if record.Drinks[i].ID == drinkID {
			index = i
			break
		}
	}
	if index == -1 {
		return record, nil
	}

	removed := record.Drinks[index]
	previousTotal := record.TotalHydrationML
	record.Drinks = append(record.Drinks[:index], record.Drinks[index+1:]...)
	record.RecomputeTotal()

	if err := l.store.SaveDayRecord(record); err != nil {
		return nil, fmt.Errorf("save day record: %w", err)
	}

	if _, _, err := l.stats.ApplyDayMutation(record, previousTotal); err != nil {
		return nil, err
	}

	l.recorder.IncDrinkRemoved()
	l.logger.Debug("drink removed", "date", dateKey, "drink_id", drinkID)

	if l.pusher != nil && removed.RemoteLogID != "" {
		l.pusher.EnqueueDelete(removed.RemoteLogID)
	}

	return record, nil
}

// AttachRemoteLogID records the remote id a pushed drink was assigned. Called
// from the push queue's completion path; a record or event that has since
// been removed is ignored.
func (l *Ledger) AttachRemoteLogID(dateKey, drinkID, remoteLogID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, err := l.store.GetDayRecord(dateKey)
	if err != nil || record == nil {
		return err
	}
	for i := range record.Drinks {
		if record.Drinks[i].ID == drinkID {
			record.Drinks[i].RemoteLogID = remoteLogID
			return l.store.SaveDayRecord(record)
		}
	}
	return nil
}

// Day returns the record for a date. When none exists an unsaved empty
// record carrying the effective goal is returned, so reads never fail on
// untracked days.
func (l *Ledger) Day(dateKey string) (*model.DayRecord, error) {
	if dateKey == "" {
		dateKey = l.TodayKey()
	}
	record, err := l.store.GetDayRecord(dateKey)
	if err != nil {
		return nil, fmt.Errorf("load day record: %w", err)
	}
	if record == nil {
		record = model.NewDayRecord(dateKey, l.goalFor(dateKey))
	}
	return record, nil
}

// MergeRemoteDay folds a day record pulled from the backend into the local
// one. Backend events are matched by remote log id; local events that were
// never pushed are preserved. The merged total is recomputed and the stats
// sink sees the change like any other mutation.
func (l *Ledger) MergeRemoteDay(pulled *model.DayRecord) (*model.DayRecord, error) {
	if pulled == nil || pulled.Date == "" {
		return nil, fmt.Errorf("pulled record missing date")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	record, err := l.store.GetDayRecord(pulled.Date)
	if err != nil {
		return nil, fmt.Errorf("load day record: %w", err)
	}
	if record == nil {
		record = model.NewDayRecord(pulled.Date, pulled.GoalML)
		if record.GoalML <= 0 {
			record.GoalML = l.goalFor(pulled.Date)
		}
	}
	previousTotal := record.TotalHydrationML

	known := make(map[string]bool, len(record.Drinks))
	for _, event := range record.Drinks {
		if event.RemoteLogID != "" {
			known[event.RemoteLogID] = true
		}
	}
	added := 0
	for _, event := range pulled.Drinks {
		if event.RemoteLogID != "" && known[event.RemoteLogID] {
			continue
		}
		record.Drinks = append(record.Drinks, event)
		added++
	}
	if added == 0 {
		return record, nil
	}

	record.RecomputeTotal()
	if err := l.store.SaveDayRecord(record); err != nil {
		return nil, fmt.Errorf("save day record: %w", err)
	}
	if l.stats != nil {
		if _, _, err := l.stats.ApplyDayMutation(record, previousTotal); err != nil {
			l.logger.Warn("stats update failed after remote merge", "date", record.Date, "error", err)
		}
	}
	l.logger.Info("merged remote day", "date", record.Date, "events_added", added)
	return record, nil
}

// CustomDrinks returns the stored user-defined drinks.
func (l *Ledger) CustomDrinks() ([]model.CustomDrink, error) {
	return l.store.CustomDrinks()
}

// Days returns every tracked day record, newest first.
func (l *Ledger) Days() ([]*model.DayRecord, error) {
	records, err := l.store.AllDayRecords()
	if err != nil {
		return nil, fmt.Errorf("load day records: %w", err)
	}
	days := make([]*model.DayRecord, 0, len(records))
	for _, record := range records {
		days = append(days, record)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date > days[j].Date })
	return days, nil
}

// SetDayGoal overrides the stored goal for one day's record.
func (l *Ledger) SetDayGoal(dateKey string, goalML float64) (*model.DayRecord, error) {
	if goalML <= 0 {
		return nil, fmt.Errorf("goal must be positive, got %v", goalML)
	}
	if dateKey == "" {
		dateKey = l.TodayKey()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	record, err := l.store.GetDayRecord(dateKey)
	if err != nil {
		return nil, fmt.Errorf("load day record: %w", err)
	}
	if record == nil {
		record = model.NewDayRecord(dateKey, goalML)
	}
	record.GoalML = goalML
	if err := l.store.SaveDayRecord(record); err != nil {
		return nil, fmt.Errorf("save day record: %w", err)
	}
	return record, nil
}

func (l *Ledger) goalFor(dateKey string) float64 {
	if l.goals == nil {
		return store.DefaultGoalML
	}
	goalML, err := l.goals.ForDate(dateKey)
	if err != nil || goalML <= 0 {
		return store.DefaultGoalML
	}
	return goalML
}

// CreateCustomDrink validates and stores a user-defined drink. Names are
// unique case-insensitively so remote label-only entries can be matched back.
func (l *Ledger) CreateCustomDrink(name, color, icon string, multiplier float64) (*model.CustomDrink, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("custom drink name is required")
	}

	drink := &model.CustomDrink{
		ID:                  uuid.NewString(),
		Name:                name,
		Color:               color,
		HydrationMultiplier: multiplier,
		Icon:                icon,
	}
	if !drink.MultiplierInRange() {
		return nil, ErrInvalidMultiplier
	}

	existing, err := l.store.CustomDrinkByLabel(name)
	if err != nil {
		return nil, fmt.Errorf("check drink name: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateDrinkName
	}

	if err := l.store.SaveCustomDrink(drink); err != nil {
		return nil, fmt.Errorf("save custom drink: %w", err)
	}
	return drink, nil
}

// UpdateCustomDrink overwrites an existing custom drink's attributes.
func (l *Ledger) UpdateCustomDrink(id, name, color, icon string, multiplier float64) (*model.CustomDrink, error) {
	drink, err := l.store.CustomDrinkByID(id)
	if err != nil {
		return nil, fmt.Errorf("load custom drink: %w", err)
	}
	if drink == nil {
		return nil, ErrCustomDrinkNotFound
	}

	name = strings.TrimSpace(name)
	if name != "" && !strings.EqualFold(name, drink.Name) {
		existing, err := l.store.CustomDrinkByLabel(name)
		if err != nil {
			return nil, fmt.Errorf("check drink name: %w", err)
		}
		if existing != nil && existing.ID != drink.ID {
			return nil, ErrDuplicateDrinkName
		}
		drink.Name = name
	}
	if color != "" {
		drink.Color = color
	}
	if icon != "" {
		drink.Icon = icon
	}
	drink.HydrationMultiplier = multiplier
	if !drink.MultiplierInRange() {
		return nil, ErrInvalidMultiplier
	}

	if err := l.store.SaveCustomDrink(drink); err != nil {
		return nil, fmt.Errorf("save custom drink: %w", err)
	}
	return drink, nil
}

// DeleteCustomDrink removes a custom drink definition. Existing logged
// events keep their label and hydration value.
func (l *Ledger) DeleteCustomDrink(id string) error {
	return l.store.DeleteCustomDrink(id)
}
