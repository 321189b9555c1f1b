package domain

// DayProgress is the percentage of done habits, rounded half up.
// A day with no habits is at 0.
func DayProgress(habits []HabitStatus) int {
	total := len(habits)
	if total == 0 {
		return 0
	}

	done := 0
	for _, h := range habits {
		if h.IsDone {
			done++
		}
	}

	return (200*done + total) / (2 * total)
}

type DayProgressEntry struct {
	DayID   string `json:"day_id" yaml:"day_id"`
	Date    Date   `json:"date" yaml:"date"`
	Percent int    `json:"percent" yaml:"percent"`
}

// WeekProgress is the per-day breakdown of a week, in the order the days are given.
func WeekProgress(days []DaySummary) []DayProgressEntry {
	entries := make([]DayProgressEntry, 0, len(days))
	for _, d := range days {
		entries = append(entries, DayProgressEntry{
			DayID:   d.ID,
			Date:    d.Date,
			Percent: DayProgress(d.Habits),
		})
	}
	return entries
}
