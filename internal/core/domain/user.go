package domain

import (
	"strings"
	"time"
)

// AuthProvider names the credential a User signs in with.
type AuthProvider string

const (
	ProviderPassword  AuthProvider = "password"
	ProviderFederated AuthProvider = "federated"
)

// User models an account holder.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Name         string       `json:"name,omitempty"`
	Picture      string       `json:"picture,omitempty"`
	AuthProvider AuthProvider `json:"-"`
	FederatedID  string       `json:"-"`
	IsPro        bool         `json:"is_pro"`
	LicenseKey   string       `json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
}

// IsFederated reports whether password login is closed for the account.
func (u *User) IsFederated() bool {
	return u.AuthProvider == ProviderFederated
}

// NormalizeEmail is the single case policy for email keys: trimmed, lower-case.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DefaultName derives a display name from the local part of an email.
func DefaultName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
