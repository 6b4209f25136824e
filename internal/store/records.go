package store

import (
	"encoding/json"
	"strings"

	"github.com/dripline/dripline/internal/model"
)

func decodeDayRecord(raw string) *model.DayRecord {
	var record model.DayRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil
	}
	return &record
}

// GetDayRecord returns the record for a date key, or nil when none exists.
func (s *Store) GetDayRecord(date string) (*model.DayRecord, error) {
	var record model.DayRecord
	ok, err := s.getJSON(keyDayPrefix+date, &record)
	if err != nil || !ok {
		return nil, err
	}
	return &record, nil
}

// SaveDayRecord overwrites the full record for its date.
func (s *Store) SaveDayRecord(record *model.DayRecord) error {
	return s.setJSON(keyDayPrefix+record.Date, record)
}

// DeleteDayRecord removes one date partition.
func (s *Store) DeleteDayRecord(date string) error {
	return s.delete(keyDayPrefix + date)
}

// AllDayRecords returns every stored record keyed by date. Corrupted entries
// are skipped.
func (s *Store) AllDayRecords() (map[string]*model.DayRecord, error) {
	rows, err := s.db.Query(`SELECT key, value FROM kv WHERE key LIKE ? ESCAPE '\' ORDER BY key`, escapeLike(keyDayPrefix)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make(map[string]*model.DayRecord)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		date := strings.TrimPrefix(key, keyDayPrefix)
		record := decodeDayRecord(value)
		if record == nil || record.Date != date {
			continue
		}
		records[date] = record
	}
	return records, rows.Err()
}
