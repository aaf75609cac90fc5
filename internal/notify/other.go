//go:build !darwin && !linux

package notify

// Other platforms have no notifier; New falls back to a no-op.
func newPlatformNotifier() Notifier {
	return nil
}
