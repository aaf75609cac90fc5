package main

import (
	"fmt"
	"time"

	"due/internal/notify"

	"github.com/spf13/cobra"
)

func (c *cli) notifyCmd() *cobra.Command {
	var (
		within    time.Duration
		sound     bool
		printOnly bool
	)

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send a desktop reminder for overdue and upcoming tasks",
		Long: `Sends one desktop notification listing overdue tasks and tasks due
within the reminder window. Nothing is sent when no task qualifies.

Uses notify-send on Linux and osascript on macOS. Where neither is
available the reminder is printed instead. Run it from cron or a systemd
timer for periodic reminders.`,
		Example: `  due notify
  due notify --within 2h --sound
  */30 * * * * due notify`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("within") {
				d, err := time.ParseDuration(c.cfg.Notify.Within)
				if err != nil {
					return fmt.Errorf("invalid notify.within %q in config: %w", c.cfg.Notify.Within, err)
				}
				within = d
			}
			if within < 0 {
				return fmt.Errorf("--within must not be negative")
			}
			if !cmd.Flags().Changed("sound") {
				sound = c.cfg.Notify.Sound
			}

			store, err := c.openStore()
			if err != nil {
				return err
			}

			now := store.Now()
			overdue, upcoming := store.Partition(now)
			digest := notify.NewDigest(now, overdue, upcoming, within)
			if digest.Empty() {
				fmt.Fprintln(c.stdout, "Nothing due.")
				return nil
			}

			n := c.notifier
			if n == nil {
				n = notify.New()
			}
			if printOnly || !n.IsSupported() {
				fmt.Fprintln(c.stdout, digest.Title())
				fmt.Fprintln(c.stdout, digest.Message(store.Location()))
				return nil
			}

			send := n.Send
			if sound {
				send = n.SendWithSound
			}
			if err := send(digest.Title(), digest.Message(store.Location())); err != nil {
				return fmt.Errorf("sending notification: %w", err)
			}
			c.logger.Debug("reminder sent", "overdue", len(digest.Overdue), "due_soon", len(digest.DueSoon))
			fmt.Fprintf(c.stdout, "Reminder sent: %s\n", digest.Title())
			return nil
		},
	}

	cmd.Flags().DurationVarP(&within, "within", "w", 24*time.Hour, "Remind about deadlines this far ahead (default from config)")
	cmd.Flags().BoolVar(&sound, "sound", false, "Play the notification sound")
	cmd.Flags().BoolVarP(&printOnly, "print", "p", false, "Print the reminder instead of sending it")
	return cmd
}
