package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

// Notifier sends a desktop notification.
type Notifier interface {
	Send(title, body string) error
}

// NoopNotifier discards every notification. Used when desktop notifications
// are disabled.
type NoopNotifier struct{}

func (NoopNotifier) Send(string, string) error { return nil }

// ExecNotifier shells out to the platform notification tool.
type ExecNotifier struct{}

func (ExecNotifier) Send(title, body string) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", title, body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(body), escapeAppleScript(title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

// Available reports whether the platform notification tool is on PATH.
func (ExecNotifier) Available() bool {
	switch runtime.GOOS {
	case "linux":
		_, err := exec.LookPath("notify-send")
		return err == nil
	case "darwin":
		_, err := exec.LookPath("osascript")
		return err == nil
	default:
		return false
	}
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// FallbackNotifier tries each backend in order and stops at the first
// success. Total failure is logged and swallowed; delivery errors never
// surface to the caller.
type FallbackNotifier struct {
	backends []Notifier
	logger   *zap.Logger
}

func NewFallbackNotifier(logger *zap.Logger, backends ...Notifier) *FallbackNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackNotifier{backends: backends, logger: logger}
}

func (f *FallbackNotifier) Send(title, body string) error {
	var lastErr error
	for i, backend := range f.backends {
		err := backend.Send(title, body)
		if err == nil {
			if i > 0 {
				f.logger.Debug("notification sent via fallback backend", zap.Int("backend", i))
			}
			return nil
		}
		lastErr = err
	}
	if lastErr != nil {
		f.logger.Warn("all notification backends failed",
			zap.String("title", title),
			zap.Error(lastErr))
	}
	return nil
}
