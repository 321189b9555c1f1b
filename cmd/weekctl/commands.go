package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-weeks/internal/core/reconciler"
	"github.com/comitanigiacomo/kanso-weeks/internal/core/services"
)

// run opens a session and a printer around one command body.
func run(cmd *cobra.Command, opts *options, fn func(*session, *printer) error) error {
	p, err := newPrinter(cmd.OutOrStdout(), opts.format)
	if err != nil {
		return err
	}
	return withSession(cmd.Context(), opts, func(s *session) error {
		return fn(s, p)
	})
}

func newWeeksCmd(opts *options) *cobra.Command {
	weeksCmd := &cobra.Command{
		Use:     "weeks",
		Aliases: []string{"week", "w"},
		Short:   "List, create, show and delete weeks",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List weeks, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(s *session, p *printer) error {
				weeks, err := s.weeks.ListWeeks(cmd.Context())
				if err != nil {
					return err
				}
				return p.print(weeks, func(w io.Writer) { writeWeeks(w, weeks) })
			})
		},
	}

	var start, end string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a week with one day per date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if start == "" {
				start = domain.Today().String()
			}
			return run(cmd, opts, func(s *session, p *printer) error {
				week, err := s.weeks.CreateWeek(cmd.Context(), services.CreateWeekInput{StartDate: start, EndDate: end})
				if err != nil {
					return err
				}
				return p.print(week, func(w io.Writer) {
					fmt.Fprintf(w, "Created %s\t%s\n", week.Name, week.ID)
				})
			})
		},
	}
	createCmd.Flags().StringVar(&start, "start", "", "First day, YYYY-MM-DD (default today)")
	createCmd.Flags().StringVar(&end, "end", "", "Last day, YYYY-MM-DD (default start + 6 days)")

	showCmd := &cobra.Command{
		Use:   "show <week-id>",
		Short: "Show a week with its days and progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(s *session, p *printer) error {
				tree, err := s.weeks.FetchWeekWithDays(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return p.print(newWeekReport(tree), func(w io.Writer) { writeWeekTree(w, tree) })
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:     "delete <week-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a week with all its days and habits",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(s *session, p *printer) error {
				if err := s.weeks.DeleteWeek(cmd.Context(), args[0]); err != nil {
					return err
				}
				return p.print(map[string]string{"deleted": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "Deleted week %s\n", args[0])
				})
			})
		},
	}

	weeksCmd.AddCommand(listCmd, createCmd, showCmd, deleteCmd)
	return weeksCmd
}

func newDayCmd(opts *options) *cobra.Command {
	dayCmd := &cobra.Command{
		Use:   "day",
		Short: "Show a day or set its completion flag",
	}

	showCmd := &cobra.Command{
		Use:   "show <day-id>",
		Short: "Show a day with its habits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(s *session, p *printer) error {
				tree, err := s.weeks.FetchDayWithHabits(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return p.print(tree, func(w io.Writer) { writeDayTree(w, tree) })
			})
		},
	}

	completeCmd := &cobra.Command{
		Use:   "complete <day-id> [true|false]",
		Short: "Set the completion flag of a day (default true)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			completed := true
			if len(args) == 2 {
				v, err := strconv.ParseBool(args[1])
				if err != nil {
					return fmt.Errorf("invalid completion value %q", args[1])
				}
				completed = v
			}
			return run(cmd, opts, func(s *session, p *printer) error {
				if err := s.weeks.SetDayCompletion(cmd.Context(), args[0], completed); err != nil {
					return err
				}
				tree, err := s.weeks.FetchDayWithHabits(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return p.print(tree, func(w io.Writer) { writeDayTree(w, tree) })
			})
		},
	}

	dayCmd.AddCommand(showCmd, completeCmd)
	return dayCmd
}

// applyToDay loads the day into a view, runs one optimistic mutation and
// prints the reconciled habits.
func applyToDay(cmd *cobra.Command, opts *options, dayID string, mutate func(*reconciler.DayView) reconciler.Result) error {
	return run(cmd, opts, func(s *session, p *printer) error {
		view := reconciler.NewDayView(s.habits, dayID, reconciler.RollbackOnFailure)
		if err := view.Load(cmd.Context()); err != nil {
			return err
		}

		res := mutate(view)
		if !res.OK() {
			return fmt.Errorf("%s %s: %w", res.Op, res.Outcome, res.Err)
		}

		report := dayReport{
			DayID:    view.DayID(),
			Habits:   view.Habits(),
			Progress: view.Progress(),
			Outcome:  res.Outcome.String(),
		}
		return p.print(report, report.writeText)
	})
}

func newHabitCmd(opts *options) *cobra.Command {
	habitCmd := &cobra.Command{
		Use:     "habit",
		Aliases: []string{"h"},
		Short:   "Add, toggle, rename and remove habits of a day",
	}

	addCmd := &cobra.Command{
		Use:   "add <day-id> <name>",
		Short: "Add a habit to a day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyToDay(cmd, opts, args[0], func(v *reconciler.DayView) reconciler.Result {
				_, res := v.Create(cmd.Context(), args[1])
				return res
			})
		},
	}

	toggleCmd := &cobra.Command{
		Use:   "toggle <day-id> <habit-id>",
		Short: "Flip the done flag of a habit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyToDay(cmd, opts, args[0], func(v *reconciler.DayView) reconciler.Result {
				return v.Toggle(cmd.Context(), args[1])
			})
		},
	}

	renameCmd := &cobra.Command{
		Use:   "rename <day-id> <habit-id> <name>",
		Short: "Rename a habit",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyToDay(cmd, opts, args[0], func(v *reconciler.DayView) reconciler.Result {
				return v.Rename(cmd.Context(), args[1], args[2])
			})
		},
	}

	rmCmd := &cobra.Command{
		Use:     "rm <day-id> <habit-id>",
		Aliases: []string{"delete"},
		Short:   "Remove a habit from a day",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyToDay(cmd, opts, args[0], func(v *reconciler.DayView) reconciler.Result {
				return v.Delete(cmd.Context(), args[1])
			})
		},
	}

	habitCmd.AddCommand(addCmd, toggleCmd, renameCmd, rmCmd)
	return habitCmd
}
