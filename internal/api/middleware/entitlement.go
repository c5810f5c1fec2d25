package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/screengrabber/account-api/internal/core/domain"
)

// RequirePro admits only sessions whose account holds an active Pro
// entitlement. It must run after RequireAuth.
func RequirePro() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, ok := SessionFrom(c)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if !sess.User.IsPro {
				return domain.ErrNotPro
			}
			return next(c)
		}
	}
}
