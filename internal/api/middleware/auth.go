package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/screengrabber/account-api/internal/core/domain"
	"github.com/screengrabber/account-api/internal/core/ports"
)

// ContextKeySession is the echo.Context key holding the *ports.Session.
const ContextKeySession = "session"

// SessionResolver turns a raw bearer token into an authenticated session.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*ports.Session, error)
	ResolveOptionalSession(ctx context.Context, token string) (*ports.Session, bool)
}

// RequireAuth rejects the request unless it carries a bearer token that
// resolves to a live session, which is then injected into the context.
func RequireAuth(resolver SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return domain.ErrUnauthenticated
			}

			token, ok := bearerToken(authHeader)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			sess, err := resolver.ResolveSession(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(ContextKeySession, sess)
			return next(c)
		}
	}
}

// OptionalAuth injects a session when the request carries a valid bearer
// token. A missing, malformed, expired or revoked token means an anonymous
// request, never an error.
func OptionalAuth(resolver SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return next(c)
			}

			if sess, ok := resolver.ResolveOptionalSession(c.Request().Context(), token); ok {
				c.Set(ContextKeySession, sess)
			}
			return next(c)
		}
	}
}

// SessionFrom returns the session injected by RequireAuth or OptionalAuth.
func SessionFrom(c echo.Context) (*ports.Session, bool) {
	sess, ok := c.Get(ContextKeySession).(*ports.Session)
	return sess, ok && sess != nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
