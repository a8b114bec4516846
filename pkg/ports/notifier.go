package ports

import "context"

// NotificationKind classifies a Notification.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyFailure NotificationKind = "failure"
)

// Notification is user-facing feedback about an operation (a toast or alert on a screen).
type Notification struct {
	Kind    NotificationKind
	Message string
	Err     error
}

// Notifier delivers notifications to the presentation layer.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify calls f(ctx, n).
func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// NoopNotifier is a safe default when callers do not need feedback.
var NoopNotifier Notifier = NotifierFunc(func(context.Context, Notification) {})
