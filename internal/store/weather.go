package store

import (
	"github.com/dripline/dripline/internal/model"
)

// WeatherCache returns the persisted daily weather cache entry, or nil.
// TTL enforcement is the weather package's job; the store only persists.
func (s *Store) WeatherCache() (*model.WeatherCacheEntry, error) {
	var entry model.WeatherCacheEntry
	ok, err := s.getJSON(keyWeatherCache, &entry)
	if err != nil || !ok {
		return nil, err
	}
	return &entry, nil
}

// SaveWeatherCache overwrites the daily weather cache entry.
func (s *Store) SaveWeatherCache(entry *model.WeatherCacheEntry) error {
	return s.setJSON(keyWeatherCache, entry)
}

// DeleteWeatherCache drops the daily weather cache entry.
func (s *Store) DeleteWeatherCache() error {
	return s.delete(keyWeatherCache)
}

// WeeklyWeatherCache returns the persisted forecast cache, or nil.
func (s *Store) WeeklyWeatherCache() (*model.WeeklyWeatherCache, error) {
	var cache model.WeeklyWeatherCache
	ok, err := s.getJSON(keyWeatherWeekly, &cache)
	if err != nil || !ok {
		return nil, err
	}
	return &cache, nil
}

// SaveWeeklyWeatherCache overwrites the forecast cache.
func (s *Store) SaveWeeklyWeatherCache(cache *model.WeeklyWeatherCache) error {
	return s.setJSON(keyWeatherWeekly, cache)
}

// DeleteWeeklyWeatherCache drops the forecast cache.
func (s *Store) DeleteWeeklyWeatherCache() error {
	return s.delete(keyWeatherWeekly)
}

// LocationPreference returns the stored location choice, defaulting to auto.
func (s *Store) LocationPreference() (*model.LocationPreference, error) {
	var pref model.LocationPreference
	ok, err := s.getJSON(keyLocationPref, &pref)
	if err != nil || !ok {
		return &model.LocationPreference{Mode: model.LocationAuto}, err
	}
	if pref.Mode != model.LocationManual || pref.Manual == nil {
		pref.Mode = model.LocationAuto
		pref.Manual = nil
	}
	return &pref, nil
}

// SaveLocationPreference stores the location choice.
func (s *Store) SaveLocationPreference(pref *model.LocationPreference) error {
	return s.setJSON(keyLocationPref, pref)
}
