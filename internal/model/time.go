package model

import "time"

// LocalDayKey formats t as a YYYY-MM-DD day key in the named IANA timezone.
// An empty or unknown timezone falls back to the system local zone.
func LocalDayKey(t time.Time, timezone string) string {
	loc := time.Local
	if timezone != "" {
		if parsed, err := time.LoadLocation(timezone); err == nil {
			loc = parsed
		}
	}
	return t.In(loc).Format(time.DateOnly)
}
