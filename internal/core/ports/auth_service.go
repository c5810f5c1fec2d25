package ports

import (
	"context"

	"github.com/screengrabber/account-api/internal/core/domain"
)

// RegisterInput carries a password sign-up. Name is optional.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// FederatedLoginInput carries an identity asserted by the federated provider.
type FederatedLoginInput struct {
	Email       string
	Name        string
	Picture     string
	FederatedID string
}

// AuthResult pairs a fresh bearer token with the account it was issued for.
type AuthResult struct {
	Token string
	User  *domain.User
}

// Session is an authenticated request identity.
type Session struct {
	User   *domain.User
	Claims *TokenClaims
}

// ResetRequestResult is the reply to a forgot-password request. Token is only
// set when a reset token was actually issued.
type ResetRequestResult struct {
	Message string
	Token   string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	FederatedLogin(ctx context.Context, in FederatedLoginInput) (*AuthResult, error)
	ResolveSession(ctx context.Context, token string) (*Session, error)
	// ResolveOptionalSession maps every failure of ResolveSession to
	// "no identity".
	ResolveOptionalSession(ctx context.Context, token string) (*Session, bool)
	Logout(ctx context.Context, claims *TokenClaims) error
	RequestPasswordReset(ctx context.Context, email string) (*ResetRequestResult, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}
