package domain

import (
	"net/url"
	"time"
)

// ResetClaimLease bounds how long a redemption may hold a token before
// another redemption can take it over.
const ResetClaimLease = time.Minute

// PasswordReset is a single-use credential recovery token. Records are kept
// after redemption for audit.
type PasswordReset struct {
	Email     string
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// ExpiredAt reports whether the token is past its expiry at now.
func (r *PasswordReset) ExpiredAt(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// ResetLink appends token as the "token" query parameter of base. It returns
// "" when base is empty or unparsable.
func ResetLink(base, token string) string {
	if base == "" {
		return ""
	}
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
