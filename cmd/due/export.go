package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"due/internal/fsutil"
	"due/internal/reports"

	"github.com/spf13/cobra"
)

func (c *cli) exportCmd() *cobra.Command {
	var (
		weekly bool
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export [DATE]",
		Short: "Generate a deadline report",
		Long: `Generates a report of what is overdue and what falls due, as Markdown
(human-readable) or JSON (machine-readable).

DATE is YYYY-MM-DD in the configured timezone and defaults to today. A
weekly report covers the Sunday-to-Saturday week containing DATE.`,
		Example: `  due export
  due export 2025-12-14
  due export --weekly --format json --output weekly.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format == "md" {
				format = "markdown"
			}
			if format != "markdown" && format != "json" {
				return fmt.Errorf("invalid format %q: use 'markdown' or 'json'", format)
			}

			store, err := c.openStore()
			if err != nil {
				return err
			}

			date := store.Now()
			if len(args) > 0 {
				date, err = time.ParseInLocation("2006-01-02", args[0], store.Location())
				if err != nil {
					return fmt.Errorf("invalid date %q: use YYYY-MM-DD", args[0])
				}
			}

			gen := reports.NewGenerator(store)
			var out []byte
			switch {
			case weekly && format == "json":
				out, err = reports.FormatWeeklyJSON(gen.GenerateWeekly(date))
			case weekly:
				out = []byte(reports.FormatWeeklyMarkdown(gen.GenerateWeekly(date)))
			case format == "json":
				out, err = reports.FormatDailyJSON(gen.GenerateDaily(date))
			default:
				out = []byte(reports.FormatDailyMarkdown(gen.GenerateDaily(date)))
			}
			if err != nil {
				return fmt.Errorf("formatting report: %w", err)
			}

			if output == "" {
				_, err := c.stdout.Write(out)
				return err
			}

			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0700); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
			}
			if err := fsutil.WriteFileAtomic(output, out, 0600); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			fmt.Fprintf(c.stdout, "Report written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&weekly, "weekly", "w", false, "Generate a weekly report instead of a daily one")
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Output format: markdown or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to FILE instead of stdout")
	return cmd
}
