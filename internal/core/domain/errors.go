package domain

import "errors"

// Account errors.
var (
	ErrUserExists         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrFederatedAccount   = errors.New("this account uses Google sign-in, please use Google to log in")
)

// Bearer token errors.
var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrTokenInvalid    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token has expired")
	ErrTokenRevoked    = errors.New("token has been revoked")
)

// Password reset errors.
var (
	ErrResetTokenInvalid = errors.New("invalid or expired reset token")
	ErrResetTokenExpired = errors.New("reset token has expired")
)

// Entitlement errors.
var (
	ErrLicenseNotFound = errors.New("license not found")
	ErrLicenseExists   = errors.New("license already exists")
	ErrNotPro          = errors.New("pro license required")
)
