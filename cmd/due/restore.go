package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *cli) restoreCmd() *cobra.Command {
	var latest, force bool

	cmd := &cobra.Command{
		Use:   "restore [BACKUP_NAME]",
		Short: "Restore data from a backup",
		Long: `Restores the task file and the undo snapshot from a backup. Every file
in the backup is checked first, and a safety backup of the current data is
made before anything is overwritten.

Use 'due backup --list' to see available backups.`,
		Example: `  due restore 2025-12-15_143022_000
  due restore --latest --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := c.backupManager()

			var name string
			switch {
			case latest && len(args) > 0:
				return errors.New("pass a backup name or --latest, not both")
			case latest:
				backups, err := manager.List()
				if err != nil {
					return fmt.Errorf("listing backups: %w", err)
				}
				if len(backups) == 0 {
					return errors.New("no backups available")
				}
				name = backups[0].Name
			case len(args) == 1:
				name = args[0]
			default:
				return errors.New("no backup specified; use 'due restore BACKUP_NAME' or 'due restore --latest'")
			}

			info, err := manager.GetBackup(name)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.stdout, "Restoring from backup: %s\n", info.Name)
			fmt.Fprintf(c.stdout, "  Created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(c.stdout, "  Tasks: %d\n\n", info.Stats[c.tasksFile()])

			if !force {
				if !c.confirm("⚠ This will overwrite your current data.\nContinue? [y/N] ") {
					fmt.Fprintln(c.stdout, "Restore cancelled.")
					return nil
				}
			}

			if err := manager.Restore(name); err != nil {
				return fmt.Errorf("restoring backup: %w", err)
			}
			fmt.Fprintf(c.stdout, "✓ Restored successfully from %s\n", name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&latest, "latest", false, "Restore from the most recent backup")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}

// confirm prints prompt and reads a yes or no answer. End of input is no.
func (c *cli) confirm(prompt string) bool {
	fmt.Fprint(c.stdout, prompt)

	reader := bufio.NewReader(c.stdin)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		fmt.Fprintln(c.stdout)
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
