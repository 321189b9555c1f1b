package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

type options struct {
	dbPath  string
	server  string
	format  string
	timeout string
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "weekctl",
		Short: "Manage weeks, days and habits",
		Long: `weekctl works on a local SQLite database, or on a running Kanso Weeks
server when --server is given.

Examples:
  # Create a week starting today
  weekctl weeks create

  # Create a three day week and show it
  weekctl weeks create --start 2024-03-10 --end 2024-03-12
  weekctl weeks show <week-id>

  # Track a habit on a day
  weekctl habit add <day-id> "Read 20 pages"
  weekctl habit toggle <day-id> <habit-id>`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVarP(&opts.dbPath, "db", "d", "kanso-weeks.db", "SQLite database file")
	rootCmd.PersistentFlags().StringVarP(&opts.server, "server", "s", "", "Server base URL, e.g. http://localhost:8080")
	rootCmd.PersistentFlags().StringVarP(&opts.format, "output", "o", formatText, "Output format: text|json|yaml")
	rootCmd.PersistentFlags().StringVar(&opts.timeout, "timeout", "10s", "Request timeout when using --server")

	rootCmd.AddCommand(
		newWeeksCmd(opts),
		newDayCmd(opts),
		newHabitCmd(opts),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
