// Package notify delivers password reset notifications.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/screengrabber/account-api/internal/core/domain"
	"github.com/screengrabber/account-api/internal/core/ports"
)

// LogNotifier writes reset notifications to the structured log in place of
// sending mail. The token and link are only logged at debug level.
type LogNotifier struct {
	log     zerolog.Logger
	linkURL string
}

// NewLogNotifier creates a LogNotifier. linkURL is the reset page the link
// points at; it may be empty.
func NewLogNotifier(log zerolog.Logger, linkURL string) *LogNotifier {
	return &LogNotifier{log: log, linkURL: linkURL}
}

var _ ports.Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) NotifyPasswordReset(ctx context.Context, rn ports.ResetNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.log.Info().
		Str("email", rn.Email).
		Time("expires_at", rn.ExpiresAt.UTC()).
		Msg("password reset notification")

	ev := n.log.Debug().Str("email", rn.Email).Str("reset_token", rn.Token)
	if link := domain.ResetLink(n.linkURL, rn.Token); link != "" {
		ev = ev.Str("reset_url", link)
	}
	ev.Msg("password reset token")
	return nil
}
