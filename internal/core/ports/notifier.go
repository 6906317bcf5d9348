package ports

import "context"

// NotificationKind selects the template for an outbound message.
type NotificationKind string

const (
	NotifyInvite        NotificationKind = "invite"
	NotifyWelcome       NotificationKind = "welcome"
	NotifyAdminNewStaff NotificationKind = "admin_new_staff"
)

// Notifier delivers templated email. Sends are best-effort side effects:
// every caller in the core treats a Notifier failure as non-fatal, and a
// failed send never unwinds an already-committed state transition.
type Notifier interface {
	Send(ctx context.Context, kind NotificationKind, recipient string, data map[string]string) error
}
