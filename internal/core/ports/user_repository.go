package ports

import (
	"context"

	"github.com/screengrabber/account-api/internal/core/domain"
)

// FederatedProfile is the identity-provider data written on federated login.
type FederatedProfile struct {
	Name        string
	Picture     string
	FederatedID string
}

// UserRepository is the credential store for user records. Emails are
// expected in normalized form.
type UserRepository interface {
	// Create inserts a new user. It returns domain.ErrUserExists when the
	// email is already taken; the storage uniqueness constraint decides races.
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	// LinkFederated switches the account to federated sign-in and stores the
	// given profile.
	LinkFederated(ctx context.Context, id string, profile FederatedProfile) error
	GrantPro(ctx context.Context, id, licenseKey string) error
}
