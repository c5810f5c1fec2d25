package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/screengrabber/account-api/internal/api/middleware"
	"github.com/screengrabber/account-api/internal/core/domain"
	"github.com/screengrabber/account-api/internal/core/ports"
)

// ctxSession returns the session injected by the auth middleware. Its absence
// on a protected route means the route was wired without RequireAuth.
func ctxSession(c echo.Context) (*ports.Session, error) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return sess, nil
}
