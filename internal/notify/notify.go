// Package notify provides cross-platform desktop notification support.
// It uses native notification mechanisms on macOS (osascript) and Linux (notify-send).
package notify

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"due/internal/storage"
)

// AppName is the application name notifications are sent under.
const AppName = "due"

// Notifier defines the interface for sending desktop notifications.
type Notifier interface {
	// Send sends a notification with the given title and message.
	Send(title, message string) error

	// SendWithSound sends a notification with sound.
	SendWithSound(title, message string) error

	// IsSupported returns true if notifications are supported on this platform.
	IsSupported() bool
}

type noopNotifier struct{}

func (n *noopNotifier) Send(title, message string) error {
	return nil
}

func (n *noopNotifier) SendWithSound(title, message string) error {
	return nil
}

func (n *noopNotifier) IsSupported() bool {
	return false
}

// New creates a platform-specific notifier.
// Returns a no-op notifier if the platform doesn't support notifications.
func New() Notifier {
	n := newPlatformNotifier()
	if n == nil || !n.IsSupported() {
		return &noopNotifier{}
	}
	return n
}

// maxLines caps how many tasks a notification body lists.
const maxLines = 5

// Digest is the content of a deadline reminder: tasks already overdue and
// tasks falling due within the reminder window, each in deadline order.
type Digest struct {
	Overdue []storage.Task
	DueSoon []storage.Task
}

// NewDigest picks the reminder-worthy tasks out of a partitioned list.
// Upcoming tasks count as due soon when their deadline is at most within
// after now.
func NewDigest(now time.Time, overdue, upcoming []storage.Entry, within time.Duration) Digest {
	var d Digest
	for _, e := range overdue {
		d.Overdue = append(d.Overdue, e.Task)
	}
	cutoff := now.Add(within)
	for _, e := range upcoming {
		if e.Task.Deadline.After(cutoff) {
			break
		}
		d.DueSoon = append(d.DueSoon, e.Task)
	}
	return d
}

// Empty reports whether there is nothing to remind about.
func (d Digest) Empty() bool {
	return len(d.Overdue) == 0 && len(d.DueSoon) == 0
}

// Title summarizes the digest in one line, e.g. "2 overdue, 1 due soon".
func (d Digest) Title() string {
	var parts []string
	if n := len(d.Overdue); n > 0 {
		parts = append(parts, fmt.Sprintf("%d overdue", n))
	}
	if n := len(d.DueSoon); n > 0 {
		parts = append(parts, fmt.Sprintf("%d due soon", n))
	}
	if len(parts) == 0 {
		return "Nothing due"
	}
	return strings.Join(parts, ", ")
}

// Message lists the tasks, overdue first, with deadlines shown in loc.
func (d Digest) Message(loc *time.Location) string {
	var lines []string
	add := func(prefix string, tasks []storage.Task) {
		for _, t := range tasks {
			lines = append(lines, fmt.Sprintf("%s %s (%s)", prefix, t.Name, t.Deadline.In(loc).Format("Mon 15:04")))
		}
	}
	add("!", d.Overdue)
	add("-", d.DueSoon)

	if len(lines) > maxLines {
		more := len(lines) - maxLines
		lines = append(lines[:maxLines], fmt.Sprintf("and %d more", more))
	}
	return strings.Join(lines, "\n")
}

// commandNotifier sends notifications by running a desktop helper program.
type commandNotifier struct {
	program string
	args    func(title, message string, sound bool) []string
	run     func(name string, args ...string) error
}

func (n *commandNotifier) Send(title, message string) error {
	return n.send(title, message, false)
}

func (n *commandNotifier) SendWithSound(title, message string) error {
	return n.send(title, message, true)
}

// IsSupported reports whether the helper program is on PATH.
func (n *commandNotifier) IsSupported() bool {
	_, err := exec.LookPath(n.program)
	return err == nil
}

func (n *commandNotifier) send(title, message string, sound bool) error {
	if err := n.run(n.program, n.args(title, message, sound)...); err != nil {
		return fmt.Errorf("%s failed: %w", n.program, err)
	}
	return nil
}

func runCommand(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// notifySendArgs builds the notify-send command line. Digest lines start
// with "-", so options are terminated before the text. Whether the sound
// hint is honored depends on the notification daemon.
func notifySendArgs(title, message string, sound bool) []string {
	args := []string{"--app-name=" + AppName}
	if sound {
		args = append(args, "--hint=string:sound-name:message-new-instant")
	}
	return append(args, "--", title, message)
}

// osascriptArgs builds an AppleScript "display notification" call. The
// digest title goes in the subtitle so the banner is headed by the app name.
func osascriptArgs(title, message string, sound bool) []string {
	script := fmt.Sprintf(`display notification "%s" with title "%s" subtitle "%s"`,
		escapeAppleScript(message), escapeAppleScript(AppName), escapeAppleScript(title))
	if sound {
		script += ` sound name "default"`
	}
	return []string{"-e", script}
}

// escapeAppleScript escapes special characters for AppleScript strings.
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}
