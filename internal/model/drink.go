// Package model defines domain entities for the application.
package model

import (
	"time"
)

// DrinkType identifies one of the built-in drink categories, or "custom"
// for user-defined drinks.
type DrinkType string

const (
	DrinkWater       DrinkType = "water"
	DrinkSportsDrink DrinkType = "sports_drink"
	DrinkMilk        DrinkType = "milk"
	DrinkTea         DrinkType = "tea"
	DrinkJuice       DrinkType = "juice"
	DrinkCoffee      DrinkType = "coffee"
	DrinkSoda        DrinkType = "soda"
	DrinkEnergyDrink DrinkType = "energy_drink"
	DrinkAlcohol     DrinkType = "alcohol"
	DrinkCustom      DrinkType = "custom"
)

// BuiltinMultipliers maps each non-custom drink type to its hydration
// multiplier. Values below 1.0 reflect diuretic or sugar content; alcohol
// is net dehydrating.
var BuiltinMultipliers = map[DrinkType]float64{
	DrinkWater:       1.0,
	DrinkSportsDrink: 1.05,
	DrinkMilk:        0.95,
	DrinkTea:         0.85,
	DrinkJuice:       0.8,
	DrinkCoffee:      0.7,
	DrinkSoda:        0.5,
	DrinkEnergyDrink: 0.3,
	DrinkAlcohol:     -0.5,
}

// DrinkColors maps built-in drink types to their display hex color.
var DrinkColors = map[DrinkType]string{
	DrinkWater:       "#3b82f6",
	DrinkSportsDrink: "#8b5cf6",
	DrinkMilk:        "#38bdf8",
	DrinkTea:         "#84cc16",
	DrinkJuice:       "#f97316",
	DrinkCoffee:      "#78350f",
	DrinkSoda:        "#f43f5e",
	DrinkEnergyDrink: "#eab308",
	DrinkAlcohol:     "#dc2626",
}

var drinkLabels = map[DrinkType]string{
	DrinkWater:       "Water",
	DrinkSportsDrink: "Sports Drink",
	DrinkMilk:        "Milk",
	DrinkTea:         "Tea",
	DrinkJuice:       "Juice",
	DrinkCoffee:      "Coffee",
	DrinkSoda:        "Soda",
	DrinkEnergyDrink: "Energy Drink",
	DrinkAlcohol:     "Alcohol",
	DrinkCustom:      "Custom Drink",
}

// IsValid checks if the drink type is one of the known categories.
func (t DrinkType) IsValid() bool {
	_, ok := drinkLabels[t]
	return ok
}

// Label returns the human-readable display label for the drink type.
func (t DrinkType) Label() string {
	if label, ok := drinkLabels[t]; ok {
		return label
	}
	return string(t)
}

// Multiplier returns the built-in hydration multiplier for a non-custom
// drink type. Custom drinks carry their own multiplier and return 1.0 here.
func (t DrinkType) Multiplier() float64 {
	if m, ok := BuiltinMultipliers[t]; ok {
		return m
	}
	return 1.0
}

// DrinkSource records where a drink event originated.
type DrinkSource string

const (
	SourceLocal   DrinkSource = "local"
	SourceBackend DrinkSource = "backend"
)

// DrinkEvent is a single logged drink. HydrationML is the effective
// hydration contribution (amount x multiplier) and may be negative.
type DrinkEvent struct {
	ID            string      `json:"id"`
	Type          DrinkType   `json:"type"`
	CustomDrinkID string      `json:"custom_drink_id,omitempty"`
	Label         string      `json:"label,omitempty"`
	AmountML      float64     `json:"amount_ml"`
	HydrationML   float64     `json:"hydration_ml"`
	Timestamp     time.Time   `json:"timestamp"`
	RemoteLogID   string      `json:"remote_log_id,omitempty"`
	Source        DrinkSource `json:"source"`
}

// Custom drink multiplier bounds.
const (
	MinHydrationMultiplier = -0.5
	MaxHydrationMultiplier = 1.5
)

// CustomDrink is a user-defined drink type. Names are unique per user
// (case-insensitive) so remote label-only log entries can be matched back.
type CustomDrink struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Color               string  `json:"color"`
	HydrationMultiplier float64 `json:"hydration_multiplier"`
	Icon                string  `json:"icon"`
}

// MultiplierInRange reports whether the custom drink's multiplier is within
// the accepted range.
func (d *CustomDrink) MultiplierInRange() bool {
	return d.HydrationMultiplier >= MinHydrationMultiplier && d.HydrationMultiplier <= MaxHydrationMultiplier
}
