//go:build darwin

package notify

func newPlatformNotifier() Notifier {
	return &commandNotifier{program: "osascript", args: osascriptArgs, run: runCommand}
}
