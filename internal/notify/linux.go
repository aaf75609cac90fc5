//go:build linux

package notify

func newPlatformNotifier() Notifier {
	return &commandNotifier{program: "notify-send", args: notifySendArgs, run: runCommand}
}
