package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/screengrabber/account-api/internal/core/domain"
	"github.com/screengrabber/account-api/internal/core/ports"
)

// DefaultLicensePrefix starts every issued license key.
const DefaultLicensePrefix = "SCROLLFRAME-PRO"

const (
	msgLicenseActivated = "License activated successfully"
	msgLicenseValid     = "License is valid. Sign in to activate Pro on your account."
	msgLicenseInvalid   = "Invalid or expired license key"

	issueAttempts = 3
)

// EntitlementService binds Pro entitlement to users through license keys.
type EntitlementService struct {
	licenses ports.LicenseRepository
	users    ports.UserRepository
	prefix   string
	now      func() time.Time
	log      zerolog.Logger
}

func NewEntitlementService(licenses ports.LicenseRepository, users ports.UserRepository, prefix string, log zerolog.Logger) *EntitlementService {
	if prefix == "" {
		prefix = DefaultLicensePrefix
	}
	return &EntitlementService{
		licenses: licenses,
		users:    users,
		prefix:   prefix,
		now:      time.Now,
		log:      log,
	}
}

var _ ports.EntitlementService = (*EntitlementService)(nil)

// ValidateLicense reports whether key is an active license. A signed-in
// caller is upgraded to Pro; an anonymous caller only learns the key is good.
func (s *EntitlementService) ValidateLicense(ctx context.Context, key string, caller *domain.User) (*ports.LicenseValidation, error) {
	key = strings.TrimSpace(key)

	license, err := s.licenses.FindActive(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrLicenseNotFound) {
			return &ports.LicenseValidation{Valid: false, Message: msgLicenseInvalid}, nil
		}
		return nil, fmt.Errorf("validate license: %w", err)
	}

	if caller == nil {
		return &ports.LicenseValidation{Valid: true, Message: msgLicenseValid}, nil
	}

	if err := s.users.GrantPro(ctx, caller.ID, license.Key); err != nil {
		return nil, fmt.Errorf("validate license: %w", err)
	}
	caller.IsPro = true
	caller.LicenseKey = license.Key

	s.log.Info().Str("user_id", caller.ID).Msg("pro entitlement granted")
	return &ports.LicenseValidation{Valid: true, Message: msgLicenseActivated}, nil
}

// IssueLicense creates a new active license key.
func (s *EntitlementService) IssueLicense(ctx context.Context, note string) (*domain.License, error) {
	for attempt := 0; attempt < issueAttempts; attempt++ {
		key, err := s.newKey()
		if err != nil {
			return nil, fmt.Errorf("issue license: %w", err)
		}
		license := &domain.License{
			Key:       key,
			Active:    true,
			Note:      note,
			CreatedAt: s.now().UTC(),
		}
		err = s.licenses.Create(ctx, license)
		if err == nil {
			s.log.Info().Str("license", key).Msg("license issued")
			return license, nil
		}
		if !errors.Is(err, domain.ErrLicenseExists) {
			return nil, fmt.Errorf("issue license: %w", err)
		}
	}
	return nil, fmt.Errorf("issue license: %w", domain.ErrLicenseExists)
}

// DeactivateLicense stops key from granting entitlement. Users already
// upgraded keep Pro.
func (s *EntitlementService) DeactivateLicense(ctx context.Context, key string) error {
	if err := s.licenses.Deactivate(ctx, strings.TrimSpace(key)); err != nil {
		if errors.Is(err, domain.ErrLicenseNotFound) {
			return domain.ErrLicenseNotFound
		}
		return fmt.Errorf("deactivate license: %w", err)
	}
	s.log.Info().Str("license", key).Msg("license deactivated")
	return nil
}

// newKey formats PREFIX-<16 upper-case hex digits>.
func (s *EntitlementService) newKey() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return s.prefix + "-" + strings.ToUpper(hex.EncodeToString(b)), nil
}
