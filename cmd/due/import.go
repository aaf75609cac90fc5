package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"due/internal/importer"
	"due/internal/ui"

	"github.com/spf13/cobra"
)

const previewLimit = 20

func (c *cli) importCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import FORMAT FILE",
		Short: "Import tasks from other apps",
		Long: `Imports open tasks that have a due date. Completed tasks and tasks
without a due date are skipped. The whole import is a single change, so
'due undo' reverts it.

FORMATS:
  todoist       Todoist CSV backup (TYPE, CONTENT, PRIORITY, DATE columns)
                priority 1 → urgency 5, 2 → 4, 3 → 3, 4 → 1
  taskwarrior   'task export' output (JSON array or one object per line)
                priority H → urgency 5, M → 3, L → 2, none → 1

Dates without a time of day are due at 09:00. Pass - as FILE to read stdin.`,
		Example: `  due import todoist ~/Downloads/Todoist_backup.csv
  task export | due import taskwarrior -
  due import --dry-run todoist backup.csv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.ToLower(args[0])
			imp := importer.GetImporter(format)
			if imp == nil {
				return fmt.Errorf("unknown format %q (supported: %s)", format, strings.Join(importer.SupportedFormats(), ", "))
			}

			var r io.Reader = c.stdin
			if args[1] != "-" {
				f, err := os.Open(args[1])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			store, err := c.openStore()
			if err != nil {
				return err
			}

			if dryRun {
				tasks, err := imp.Preview(r, store.Location())
				if err != nil {
					return fmt.Errorf("parsing file: %w", err)
				}
				c.printPreview(tasks, store.Location())
				return nil
			}

			result, err := imp.Import(r, store)
			if err != nil {
				return fmt.Errorf("importing: %w", err)
			}

			fmt.Fprintf(c.stdout, "Import complete!\n")
			fmt.Fprintf(c.stdout, "  Imported: %d tasks\n", result.Imported)
			if result.Skipped > 0 {
				fmt.Fprintf(c.stdout, "  Skipped:  %d items\n", result.Skipped)
			}
			for _, e := range result.Errors {
				fmt.Fprintf(c.stdout, "    - %s\n", e)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview the import without making changes")
	return cmd
}

func (c *cli) printPreview(tasks []importer.PreviewTask, loc *time.Location) {
	if len(tasks) == 0 {
		fmt.Fprintln(c.stdout, "No tasks found to import.")
		return
	}

	fmt.Fprintf(c.stdout, "Preview: %d tasks found\n", len(tasks))
	fmt.Fprintln(c.stdout, "────────────────────────────")

	for i, task := range tasks {
		if i == previewLimit {
			fmt.Fprintf(c.stdout, "  ... and %d more\n", len(tasks)-previewLimit)
			break
		}

		details := []string{fmt.Sprintf("urgency %d", task.Urgency)}
		switch {
		case task.Done:
			details = append(details, "done, skipped")
		case task.DueDate == nil:
			details = append(details, "no due date, skipped")
		default:
			details = append(details, task.DueDate.In(loc).Format(ui.DisplayLayout))
		}
		fmt.Fprintf(c.stdout, "  %s (%s)\n", task.Text, strings.Join(details, ", "))
	}

	fmt.Fprintln(c.stdout)
	fmt.Fprintln(c.stdout, "Run without --dry-run to import.")
}
