package ports

import (
	"context"
	"time"
)

// ResetNotification carries a freshly issued password reset token to the
// account owner.
type ResetNotification struct {
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Notifier delivers reset notifications.
type Notifier interface {
	NotifyPasswordReset(ctx context.Context, n ResetNotification) error
}

// NotificationQueue hands notifications off for asynchronous delivery.
// Enqueue reports false when the notification was dropped.
type NotificationQueue interface {
	Enqueue(n ResetNotification) bool
}
