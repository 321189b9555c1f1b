package domain

import (
	"fmt"
	"time"
)

type Week struct {
	ID        string    `json:"id" db:"id" yaml:"id"`
	Name      string    `json:"name" db:"name" yaml:"name"`
	StartDate Date      `json:"start_date" db:"start_date" yaml:"start_date"`
	EndDate   Date      `json:"end_date" db:"end_date" yaml:"end_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at" yaml:"created_at"`
}

type Day struct {
	ID          string `json:"id" db:"id" yaml:"id"`
	WeekID      string `json:"week_id" db:"week_id" yaml:"week_id"`
	Date        Date   `json:"date" db:"date" yaml:"date"`
	IsCompleted bool   `json:"is_completed" db:"is_completed" yaml:"is_completed"`
}

// DaySummary is a day with the minimal habit projection needed for progress.
type DaySummary struct {
	Day    `yaml:",inline"`
	Habits []HabitStatus `json:"habits" yaml:"habits"`
}

type WeekTree struct {
	Week *Week        `json:"week" yaml:"week"`
	Days []DaySummary `json:"days" yaml:"days"`
}

type DayTree struct {
	Day    *Day     `json:"day" yaml:"day"`
	Habits []*Habit `json:"habits" yaml:"habits"`
}

// WeekLabel is the display name a week gets from its first day, written
// day/month/year without zero padding.
func WeekLabel(start Date) string {
	return fmt.Sprintf("Week of %d/%d/%d", start.Day, int(start.Month), start.Year)
}

// PlanWeek expands the range and builds the unsaved Week with one Day per
// date. The stored end date is always the last generated day.
func PlanWeek(start Date, end *Date) (*Week, []*Day, error) {
	dates, err := ExpandRange(start, end)
	if err != nil {
		return nil, nil, err
	}

	week := &Week{
		Name:      WeekLabel(start),
		StartDate: start,
		EndDate:   dates[len(dates)-1],
	}

	days := make([]*Day, 0, len(dates))
	for _, d := range dates {
		days = append(days, &Day{Date: d, IsCompleted: false})
	}

	return week, days, nil
}

// AttachDays tags every day with the week id once the week has one.
func AttachDays(weekID string, days []*Day) {
	for _, d := range days {
		d.WeekID = weekID
	}
}
