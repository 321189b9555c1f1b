package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type printer struct {
	out    io.Writer
	format string
}

func newPrinter(out io.Writer, format string) (*printer, error) {
	switch format {
	case formatText, formatJSON, formatYAML:
		return &printer{out: out, format: format}, nil
	}
	return nil, fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
}

// print encodes data for json and yaml, and calls text otherwise.
func (p *printer) print(data interface{}, text func(w io.Writer)) error {
	switch p.format {
	case formatJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case formatYAML:
		enc := yaml.NewEncoder(p.out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

func check(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func writeWeeks(w io.Writer, weeks []*domain.Week) {
	if len(weeks) == 0 {
		fmt.Fprintln(w, "No weeks yet.")
		return
	}
	fmt.Fprintln(w, "ID\tNAME\tSTART\tEND")
	for _, wk := range weeks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", wk.ID, wk.Name, wk.StartDate, wk.EndDate)
	}
}

// weekReport is the json/yaml shape of a week, the same one the HTTP API returns.
type weekReport struct {
	Week *domain.Week `json:"week" yaml:"week"`
	Days []dayStatus  `json:"days" yaml:"days"`
}

type dayStatus struct {
	domain.DaySummary `yaml:",inline"`
	Progress          int `json:"progress" yaml:"progress"`
}

func newWeekReport(tree *domain.WeekTree) weekReport {
	report := weekReport{Week: tree.Week, Days: make([]dayStatus, 0, len(tree.Days))}
	for _, d := range tree.Days {
		report.Days = append(report.Days, dayStatus{DaySummary: d, Progress: domain.DayProgress(d.Habits)})
	}
	return report
}

func writeWeekTree(w io.Writer, tree *domain.WeekTree) {
	fmt.Fprintf(w, "%s (%s .. %s)\n", tree.Week.Name, tree.Week.StartDate, tree.Week.EndDate)
	fmt.Fprintln(w, "DAY\tDATE\tHABITS\tPROGRESS\tCOMPLETED")
	for _, d := range tree.Days {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d%%\t%s\n",
			d.ID, d.Date, len(d.Habits), domain.DayProgress(d.Habits), check(d.IsCompleted))
	}
}

func writeHabits(w io.Writer, habits []*domain.Habit, progress int) {
	for _, h := range habits {
		fmt.Fprintf(w, "%s\t%s\t%s\n", check(h.IsDone), h.ID, h.Name)
	}
	if len(habits) == 0 {
		fmt.Fprintln(w, "No habits on this day.")
	}
	fmt.Fprintf(w, "Progress: %d%%\n", progress)
}

func writeDayTree(w io.Writer, tree *domain.DayTree) {
	fmt.Fprintf(w, "Day %s (%s) completed %s\n", tree.Day.Date, tree.Day.ID, check(tree.Day.IsCompleted))
	writeHabits(w, tree.Habits, domain.DayProgress(domain.HabitStatuses(tree.Habits)))
}

// dayReport is the json/yaml shape of a day after a habit command.
type dayReport struct {
	DayID    string          `json:"day_id" yaml:"day_id"`
	Habits   []*domain.Habit `json:"habits" yaml:"habits"`
	Progress int             `json:"progress" yaml:"progress"`
	Outcome  string          `json:"outcome" yaml:"outcome"`
}

func (r dayReport) writeText(w io.Writer) {
	fmt.Fprintln(w, strings.ToUpper(r.Outcome[:1])+r.Outcome[1:]+".")
	writeHabits(w, r.Habits, r.Progress)
}
