package ledger

import "time"

// ApplicationYear returns the accrual year a timestamp falls in. Application
// years are 12-month cycles labeled by the calendar year they start in: with a
// July 1 boundary, 2025-08-15 is in application year 2025 and 2025-03-10 is in
// application year 2024.
func ApplicationYear(now time.Time, cycleMonth time.Month, cycleDay int) int {
	boundary := time.Date(now.Year(), cycleMonth, cycleDay, 0, 0, 0, 0, now.Location())
	if now.Before(boundary) {
		return now.Year() - 1
	}
	return now.Year()
}

// CycleEnd returns the instant the given application year's cycle ends
// (exclusive), i.e. the start of the next cycle.
func CycleEnd(year int, cycleMonth time.Month, cycleDay int, loc *time.Location) time.Time {
	return time.Date(year+1, cycleMonth, cycleDay, 0, 0, 0, 0, loc)
}
