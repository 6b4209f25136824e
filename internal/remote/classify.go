package remote

import (
	"strings"

	"github.com/dripline/dripline/internal/model"
)

// labelKeywords classifies remote label-only log entries into built-in drink
// types. Matching is case-insensitive on the normalized label; order within a
// type does not matter, but more specific keywords must not collide across
// types (e.g. "latte" is milk, not coffee, since milk dominates the drink).
var labelKeywords = []struct {
	drinkType model.DrinkType
	keywords  []string
}{
	{model.DrinkSportsDrink, []string{"sports drink", "gatorade", "powerade", "electrolyte", "isotonic"}},
	{model.DrinkEnergyDrink, []string{"energy drink", "energy", "monster", "red bull", "redbull", "celsius"}},
	{model.DrinkMilk, []string{"milk", "latte", "cappuccino", "flat white", "mocha", "milkshake", "smoothie"}},
	{model.DrinkCoffee, []string{"coffee", "espresso", "americano", "cold brew", "macchiato"}},
	{model.DrinkTea, []string{"tea", "chai", "matcha", "kombucha"}},
	{model.DrinkJuice, []string{"juice", "lemonade", "nectar", "cider"}},
	{model.DrinkSoda, []string{"soda", "cola", "coke", "pepsi", "sprite", "fanta", "tonic", "soft drink"}},
	{model.DrinkAlcohol, []string{"alcohol", "beer", "wine", "whiskey", "whisky", "vodka", "gin", "rum", "cocktail", "sake"}},
	{model.DrinkWater, []string{"water", "sparkling", "seltzer"}},
}

// ClassifyLabel maps a free-text drink label to a built-in drink type. The
// label is trimmed and lowercased before matching; unmatched labels classify
// as custom and are resolved against local custom drinks by the caller.
func ClassifyLabel(label string) model.DrinkType {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if normalized == "" {
		return model.DrinkWater
	}

	// Exact match against the built-in display labels first.
	for _, t := range []model.DrinkType{
		model.DrinkWater, model.DrinkSportsDrink, model.DrinkMilk, model.DrinkTea,
		model.DrinkJuice, model.DrinkCoffee, model.DrinkSoda, model.DrinkEnergyDrink,
		model.DrinkAlcohol,
	} {
		if normalized == strings.ToLower(t.Label()) || normalized == string(t) {
			return t
		}
	}

	for _, entry := range labelKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(normalized, keyword) {
				return entry.drinkType
			}
		}
	}
	return model.DrinkCustom
}
