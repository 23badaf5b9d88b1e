package out

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"

	"examclock/internal/modules/alert/domain"
)

// NotifyFunc shows a desktop notification.
type NotifyFunc func(title, message, appIcon string) error

// DesktopNotifier posts notifications through the platform notification
// service (D-Bus on Linux, Notification Center on macOS, toasts on
// Windows). It stays silent: the tone is driven separately so the sound
// toggle applies to it.
type DesktopNotifier struct {
	notify NotifyFunc
	icon   string
}

func NewDesktopNotifier() *DesktopNotifier {
	return NewDesktopNotifierWith(beeep.Notify, "")
}

func NewDesktopNotifierWith(notify NotifyFunc, icon string) *DesktopNotifier {
	return &DesktopNotifier{notify: notify, icon: icon}
}

func (n *DesktopNotifier) Info(_ context.Context, note domain.Notification) error {
	return n.send(note)
}

func (n *DesktopNotifier) Critical(_ context.Context, note domain.Notification) error {
	return n.send(note)
}

// CloseCritical is a no-op: a posted notification cannot be retracted.
func (n *DesktopNotifier) CloseCritical(context.Context) error {
	return nil
}

func (n *DesktopNotifier) send(note domain.Notification) error {
	if err := n.notify(note.Title, note.Body, n.icon); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

type NopNotifier struct{}

func (NopNotifier) Info(context.Context, domain.Notification) error     { return nil }
func (NopNotifier) Critical(context.Context, domain.Notification) error { return nil }
func (NopNotifier) CloseCritical(context.Context) error                 { return nil }
