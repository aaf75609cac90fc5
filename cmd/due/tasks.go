package main

import (
	"errors"
	"fmt"

	"due/internal/storage"
	"due/internal/ui"

	"github.com/spf13/cobra"
)

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print overdue and upcoming tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}

			now := store.Now()
			overdue, upcoming := store.Partition(now)
			view := ui.ListView{
				Styles:    ui.NewStyles(c.cfg),
				Location:  store.Location(),
				NameWidth: c.cfg.UX.NameWidth,
				Selected:  -1,
			}
			fmt.Fprintln(c.stdout, view.Render(now, overdue, upcoming))
			return nil
		},
	}
}

func (c *cli) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   `add NAME "DD HH" URGENCY`,
		Short: "Add a task",
		Long: `Add a task due at hour HH on day DD of this month, or of next month if
that moment already passed. URGENCY runs from 1 (low) to 5 (high).`,
		Example: `  due add "Pay rent" "01 09" 4`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			urgency, err := storage.ParseUrgency(args[2])
			if err != nil {
				return err
			}

			store, err := c.openStore()
			if err != nil {
				return err
			}

			task, err := store.AddTask(args[0], args[1], urgency)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "Added %q, due %s (urgency %d).\n",
				task.Name, task.Deadline.In(store.Location()).Format(ui.DisplayLayout+" MST"), task.Urgency)
			return nil
		},
	}
}

func (c *cli) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm INDEX|NAME",
		Aliases: []string{"remove"},
		Short:   "Remove a task by index, or every task with a name",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}

			id := storage.ParseIdentifier(args[0])
			if err := checkIdentifier(store, id); err != nil {
				return err
			}

			n, err := store.RemoveTask(id)
			if err != nil {
				return err
			}
			if n == 1 {
				fmt.Fprintln(c.stdout, "Removed 1 task.")
			} else {
				fmt.Fprintf(c.stdout, "Removed %d tasks.\n", n)
			}
			return nil
		},
	}
}

func (c *cli) updateCmd() *cobra.Command {
	var (
		name    string
		due     string
		urgency string
	)

	cmd := &cobra.Command{
		Use:   "update INDEX|NAME",
		Short: "Change a task's name, deadline or urgency",
		Long: `Change the task at INDEX, or the first task named NAME. Only the fields
given as flags change.`,
		Example: `  due update 0 --due "15 17"
  due update "Pay rent" --urgency 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := storage.Update{Name: name, DayHour: due}
			if cmd.Flags().Changed("urgency") {
				n, err := storage.ParseUrgency(urgency)
				if err != nil {
					return err
				}
				u.Urgency = n
			}
			if u.IsEmpty() {
				return errors.New("nothing to update: pass at least one of --name, --due, --urgency")
			}

			store, err := c.openStore()
			if err != nil {
				return err
			}

			id := storage.ParseIdentifier(args[0])
			if err := checkIdentifier(store, id); err != nil {
				return err
			}
			if err := store.UpdateTask(id, u); err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, "Task updated.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "New task name")
	cmd.Flags().StringVarP(&due, "due", "d", "", `New deadline as "DD HH"`)
	cmd.Flags().StringVarP(&urgency, "urgency", "u", "", "New urgency (1-5)")
	return cmd
}

func (c *cli) undoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Undo the last change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}

			undone, err := store.Undo()
			if err != nil {
				return err
			}
			if undone {
				fmt.Fprintln(c.stdout, "Last action undone.")
			} else {
				fmt.Fprintln(c.stdout, "No actions to undo.")
			}
			return nil
		},
	}
}

// checkIdentifier rejects identifiers that select nothing, so a typo never
// replaces the undo snapshot.
func checkIdentifier(store *storage.Store, id storage.Identifier) error {
	if store.ValidateIdentifier(id) {
		return nil
	}
	if id.IsIndex() {
		return &storage.IndexError{Index: id.Index(), Len: store.Len()}
	}
	return fmt.Errorf("no task matches %s", id)
}
