package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/screengrabber/account-api/internal/api/middleware"
	"github.com/screengrabber/account-api/internal/core/domain"
	"github.com/screengrabber/account-api/internal/core/ports"
)

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withSession(c echo.Context, u *domain.User) *ports.Session {
	sess := &ports.Session{
		User:   u,
		Claims: &ports.TokenClaims{UserID: u.ID, Email: u.Email, TokenID: "jti-1"},
	}
	c.Set(middleware.ContextKeySession, sess)
	return sess
}

type stubAuthService struct {
	registerFn  func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn     func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	federatedFn func(ctx context.Context, in ports.FederatedLoginInput) (*ports.AuthResult, error)
	logoutFn    func(ctx context.Context, claims *ports.TokenClaims) error
	requestFn   func(ctx context.Context, email string) (*ports.ResetRequestResult, error)
	resetFn     func(ctx context.Context, token, newPassword string) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) FederatedLogin(ctx context.Context, in ports.FederatedLoginInput) (*ports.AuthResult, error) {
	return s.federatedFn(ctx, in)
}

func (s *stubAuthService) ResolveSession(context.Context, string) (*ports.Session, error) {
	return nil, domain.ErrUnauthenticated
}

func (s *stubAuthService) ResolveOptionalSession(context.Context, string) (*ports.Session, bool) {
	return nil, false
}

func (s *stubAuthService) Logout(ctx context.Context, claims *ports.TokenClaims) error {
	return s.logoutFn(ctx, claims)
}

func (s *stubAuthService) RequestPasswordReset(ctx context.Context, email string) (*ports.ResetRequestResult, error) {
	return s.requestFn(ctx, email)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return s.resetFn(ctx, token, newPassword)
}
