package store

import (
	"sort"
	"strings"

	"github.com/dripline/dripline/internal/model"
)

// CustomDrinks returns all stored custom drink definitions sorted by name.
func (s *Store) CustomDrinks() ([]model.CustomDrink, error) {
	rows, err := s.db.Query(`SELECT value FROM kv WHERE key LIKE ? ESCAPE '\'`, escapeLike(keyDrinkPrefix)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drinks []model.CustomDrink
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		var drink model.CustomDrink
		if decodeJSON(value, &drink) && drink.ID != "" {
			drinks = append(drinks, drink)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(drinks, func(i, j int) bool {
		return strings.ToLower(drinks[i].Name) < strings.ToLower(drinks[j].Name)
	})
	return drinks, nil
}

// SaveCustomDrink upserts a drink by id.
func (s *Store) SaveCustomDrink(drink *model.CustomDrink) error {
	return s.setJSON(keyDrinkPrefix+drink.ID, drink)
}

// DeleteCustomDrink removes a drink definition. Deleting an unknown id is a
// no-op.
func (s *Store) DeleteCustomDrink(id string) error {
	return s.delete(keyDrinkPrefix + id)
}

// CustomDrinkByID looks up a drink by local id. When no direct match exists
// it falls back to the backend drink map: a remote id resolves to its label,
// which is then matched against drink names. This covers drinks created
// server-side under a different id scheme.
func (s *Store) CustomDrinkByID(id string) (*model.CustomDrink, error) {
	var drink model.CustomDrink
	ok, err := s.getJSON(keyDrinkPrefix+id, &drink)
	if err != nil {
		return nil, err
	}
	if ok {
		return &drink, nil
	}

	drinkMap, err := s.BackendDrinkMap()
	if err != nil {
		return nil, err
	}
	label, ok := drinkMap[id]
	if !ok {
		return nil, nil
	}
	return s.CustomDrinkByLabel(label)
}

// CustomDrinkByLabel matches a drink by name, case-insensitive and
// whitespace-trimmed. Returns nil when no drink matches.
func (s *Store) CustomDrinkByLabel(label string) (*model.CustomDrink, error) {
	want := strings.ToLower(strings.TrimSpace(label))
	if want == "" {
		return nil, nil
	}

	drinks, err := s.CustomDrinks()
	if err != nil {
		return nil, err
	}
	for i := range drinks {
		if strings.ToLower(strings.TrimSpace(drinks[i].Name)) == want {
			return &drinks[i], nil
		}
	}
	return nil, nil
}

// BackendDrinkMap returns the remote-drink-id to label reverse lookup cache.
func (s *Store) BackendDrinkMap() (map[string]string, error) {
	drinkMap := make(map[string]string)
	if _, err := s.getJSON(keyBackendDrinkMap, &drinkMap); err != nil {
		return nil, err
	}
	return drinkMap, nil
}

// RememberBackendDrink records a remote drink id/label pair. Populated
// opportunistically on successful remote reads and writes; never pruned.
func (s *Store) RememberBackendDrink(remoteID, label string) error {
	if remoteID == "" || label == "" {
		return nil
	}
	drinkMap, err := s.BackendDrinkMap()
	if err != nil {
		return err
	}
	if existing, ok := drinkMap[remoteID]; ok && existing == label {
		return nil
	}
	drinkMap[remoteID] = label
	return s.setJSON(keyBackendDrinkMap, drinkMap)
}
