package notify

import "runtime"

// Backend is a notification delivery mechanism that can report whether it is
// usable on this machine.
type Backend interface {
	Available() bool
}

// PermissionResult describes the outcome of a permission check. When no
// backend is usable, Instructions carries platform-specific manual setup
// steps for display to the user.
type PermissionResult struct {
	Granted          bool
	NeedsManualSetup bool
	Platform         string
	Instructions     []string
}

// CheckAndRequestPermissions probes the given backends in order and reports
// success on the first usable one. There is no retry loop; re-checking is
// user-triggered.
func CheckAndRequestPermissions(backends ...Backend) PermissionResult {
	for _, b := range backends {
		if b.Available() {
			return PermissionResult{Granted: true, Platform: runtime.GOOS}
		}
	}
	return PermissionResult{
		NeedsManualSetup: true,
		Platform:         runtime.GOOS,
		Instructions:     manualSetupInstructions(runtime.GOOS),
	}
}

func manualSetupInstructions(goos string) []string {
	switch goos {
	case "windows":
		return []string{
			"Open Settings > System > Notifications.",
			"Turn on \"Get notifications from apps and other senders\".",
			"Find HabitQuest in the sender list and enable it.",
			"Make sure Focus Assist is not blocking notifications.",
		}
	case "darwin":
		return []string{
			"Open System Settings > Notifications.",
			"Select HabitQuest (or your terminal app) in the list.",
			"Enable \"Allow notifications\" and pick an alert style.",
			"Check that Focus mode is off or allows HabitQuest.",
		}
	case "linux":
		return []string{
			"Install a notification daemon (e.g. dunst or your desktop's default).",
			"Install libnotify so the notify-send command is available.",
			"Verify with: notify-send \"test\" from a terminal.",
		}
	default:
		return []string{
			"Desktop notifications are not supported on this platform.",
		}
	}
}
