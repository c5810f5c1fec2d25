package handler

import (
	"time"

	"github.com/screengrabber/account-api/internal/core/domain"
)

// ── Auth ──────────────────────────────────────────────────────────────────────

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,maxbytes=72"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type googleLoginRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	GoogleID string `json:"google_id" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required,maxbytes=72"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Picture   string    `json:"picture,omitempty"`
	IsPro     bool      `json:"is_pro"`
	CreatedAt time.Time `json:"created_at"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type forgotPasswordResponse struct {
	Message    string `json:"message"`
	DebugToken string `json:"debug_token,omitempty"`
	ResetURL   string `json:"reset_url,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// ── License ───────────────────────────────────────────────────────────────────

type validateLicenseRequest struct {
	LicenseKey string `json:"license_key" validate:"required"`
}

type validateLicenseResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type issueLicenseRequest struct {
	Note string `json:"note"`
}

type licenseResponse struct {
	Key       string    `json:"key"`
	Active    bool      `json:"active"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type proFeaturesResponse struct {
	Features []string `json:"features"`
}

// ── Status ────────────────────────────────────────────────────────────────────

type createStatusRequest struct {
	ClientName string `json:"client_name" validate:"required"`
}

type statusResponse struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Timestamp  time.Time `json:"timestamp"`
}

// ── Mappers ───────────────────────────────────────────────────────────────────

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Picture:   u.Picture,
		IsPro:     u.IsPro,
		CreatedAt: u.CreatedAt.UTC(),
	}
}

func toLicenseResponse(l *domain.License) licenseResponse {
	return licenseResponse{
		Key:       l.Key,
		Active:    l.Active,
		Note:      l.Note,
		CreatedAt: l.CreatedAt.UTC(),
	}
}

func toStatusResponse(s *domain.StatusCheck) statusResponse {
	return statusResponse{
		ID:         s.ID,
		ClientName: s.ClientName,
		Timestamp:  s.Timestamp.UTC(),
	}
}
