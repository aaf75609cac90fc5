package main

import (
	"fmt"
	"time"

	"due/internal/backup"

	"github.com/spf13/cobra"
)

func (c *cli) backupManager() *backup.Manager {
	return backup.NewManager(c.cfg.GetDataDir(), version,
		backup.WithFiles(c.cfg.Files.Tasks, c.cfg.Files.Undo),
		backup.WithLogger(c.logger),
	)
}

func (c *cli) backupCmd() *cobra.Command {
	var (
		list bool
		keep int
	)

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create and manage backups",
		Long: `Creates a timestamped copy of the task file and the undo snapshot.
Backups are stored in the backups/ folder of the data directory and can be
restored with 'due restore'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := c.backupManager()
			if list {
				return c.listBackups(manager)
			}
			if err := c.createBackup(manager); err != nil {
				return err
			}
			if keep > 0 {
				n, err := manager.Prune(keep)
				if err != nil {
					return fmt.Errorf("pruning backups: %w", err)
				}
				if n > 0 {
					fmt.Fprintf(c.stdout, "  Pruned %d old backups.\n", n)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "List available backups")
	cmd.Flags().IntVar(&keep, "keep", 0, "After backing up, keep only this many backups (0 keeps all)")
	return cmd
}

// createBackup creates a new backup and displays the result.
func (c *cli) createBackup(manager *backup.Manager) error {
	name, err := manager.Create()
	if err != nil {
		return fmt.Errorf("creating backup: %w", err)
	}

	info, err := manager.GetBackup(name)
	if err != nil {
		return fmt.Errorf("reading backup info: %w", err)
	}

	fmt.Fprintf(c.stdout, "✓ Backup created: %s\n", name)
	fmt.Fprintf(c.stdout, "  Tasks: %d\n", info.Stats[c.tasksFile()])
	fmt.Fprintf(c.stdout, "  Location: %s\n", info.Path)
	return nil
}

// listBackups lists all available backups.
func (c *cli) listBackups(manager *backup.Manager) error {
	backups, err := manager.List()
	if err != nil {
		return fmt.Errorf("listing backups: %w", err)
	}

	if len(backups) == 0 {
		fmt.Fprintln(c.stdout, "No backups available.")
		fmt.Fprintln(c.stdout, "Run 'due backup' to create one.")
		return nil
	}

	fmt.Fprintln(c.stdout, "Available backups:")
	for _, b := range backups {
		fmt.Fprintf(c.stdout, "  %s  (%s)   Tasks: %d\n", b.Name, formatAge(b.CreatedAt, c.clock()), b.Stats[c.tasksFile()])
	}
	return nil
}

func (c *cli) tasksFile() string {
	if c.cfg.Files.Tasks != "" {
		return c.cfg.Files.Tasks
	}
	return "tasks.json"
}

func (c *cli) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

// formatAge returns a human-readable age string.
func formatAge(t, now time.Time) string {
	d := now.Sub(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	default:
		return plural(int(d.Hours()/24/7), "week")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
