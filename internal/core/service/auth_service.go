package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/screengrabber/account-api/internal/core/domain"
	"github.com/screengrabber/account-api/internal/core/ports"
)

// DefaultResetTokenTTL is how long a password reset token stays redeemable.
const DefaultResetTokenTTL = time.Hour

const (
	msgResetAcknowledged = "If an account with this email exists, a password reset link has been sent."
	msgResetFederated    = "This account uses Google sign-in. Please use Google to log in."
)

// AuthService implements registration, login, federated login, session
// resolution and password recovery.
type AuthService struct {
	users    ports.UserRepository
	resets   ports.PasswordResetRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	denylist ports.TokenDenylist
	throttle ports.Throttle
	notify   ports.NotificationQueue

	resetTTL         time.Duration
	exposeResetToken bool
	now              func() time.Time
	log              zerolog.Logger
}

// AuthOption customises an AuthService.
type AuthOption func(*AuthService)

// WithDenylist enables early revocation of bearer tokens.
func WithDenylist(d ports.TokenDenylist) AuthOption {
	return func(s *AuthService) { s.denylist = d }
}

// WithResetThrottle limits reset requests per email.
func WithResetThrottle(t ports.Throttle) AuthOption {
	return func(s *AuthService) { s.throttle = t }
}

// WithNotificationQueue sends issued reset tokens for delivery.
func WithNotificationQueue(q ports.NotificationQueue) AuthOption {
	return func(s *AuthService) { s.notify = q }
}

// WithResetTokenTTL overrides DefaultResetTokenTTL.
func WithResetTokenTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) {
		if ttl > 0 {
			s.resetTTL = ttl
		}
	}
}

// WithExposedResetToken returns raw reset tokens to the caller. Diagnostic
// builds only.
func WithExposedResetToken(expose bool) AuthOption {
	return func(s *AuthService) { s.exposeResetToken = expose }
}

// WithAuthClock overrides the time source.
func WithAuthClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

func NewAuthService(
	users ports.UserRepository,
	resets ports.PasswordResetRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	log zerolog.Logger,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		users:    users,
		resets:   resets,
		hasher:   hasher,
		tokens:   tokens,
		resetTTL: DefaultResetTokenTTL,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.AuthService = (*AuthService)(nil)

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := domain.NormalizeEmail(in.Email)

	// Fast path only: the unique index on email settles concurrent sign-ups.
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = domain.DefaultName(email)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		AuthProvider: domain.ProviderPassword,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if user.IsFederated() {
		return nil, domain.ErrFederatedAccount
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}

	return s.issue(user)
}

// upgradeHash rewrites a legacy digest with the primary algorithm. Failure
// leaves the old digest in place.
func (s *AuthService) upgradeHash(ctx context.Context, user *domain.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("password rehash failed")
		return
	}
	user.PasswordHash = hash
	s.log.Info().Str("user_id", user.ID).Msg("password digest upgraded")
}

// FederatedLogin upserts the account for a federated identity. An existing
// password account with the same email becomes federated-only.
func (s *AuthService) FederatedLogin(ctx context.Context, in ports.FederatedLoginInput) (*ports.AuthResult, error) {
	email := domain.NormalizeEmail(in.Email)

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return s.linkFederated(ctx, user, in)
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("federated login: %w", err)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = domain.DefaultName(email)
	}
	user = &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Picture:      in.Picture,
		AuthProvider: domain.ProviderFederated,
		FederatedID:  in.FederatedID,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, domain.ErrUserExists) {
			return nil, fmt.Errorf("federated login: %w", err)
		}
		// Lost a concurrent insert; link the winner instead.
		existing, ferr := s.users.FindByEmail(ctx, email)
		if ferr != nil {
			return nil, fmt.Errorf("federated login: %w", ferr)
		}
		return s.linkFederated(ctx, existing, in)
	}

	s.log.Info().Str("user_id", user.ID).Msg("federated user created")
	return s.issue(user)
}

func (s *AuthService) linkFederated(ctx context.Context, user *domain.User, in ports.FederatedLoginInput) (*ports.AuthResult, error) {
	profile := ports.FederatedProfile{
		Name:        firstNonEmpty(strings.TrimSpace(in.Name), user.Name),
		Picture:     firstNonEmpty(in.Picture, user.Picture),
		FederatedID: in.FederatedID,
	}
	if err := s.users.LinkFederated(ctx, user.ID, profile); err != nil {
		return nil, fmt.Errorf("federated login: %w", err)
	}

	if !user.IsFederated() {
		s.log.Info().Str("user_id", user.ID).Msg("password account linked to federated identity")
	}
	user.Name = profile.Name
	user.Picture = profile.Picture
	user.FederatedID = profile.FederatedID
	user.AuthProvider = domain.ProviderFederated

	return s.issue(user)
}

// ResolveSession authenticates a bearer token and loads its user.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*ports.Session, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			return nil, fmt.Errorf("resolve session: %w", err)
		}
		if revoked {
			return nil, domain.ErrTokenRevoked
		}
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	return &ports.Session{User: user, Claims: claims}, nil
}

// ResolveOptionalSession is ResolveSession for routes where signing in is
// optional: any failure yields no identity.
func (s *AuthService) ResolveOptionalSession(ctx context.Context, token string) (*ports.Session, bool) {
	if token == "" {
		return nil, false
	}
	sess, err := s.ResolveSession(ctx, token)
	if err != nil {
		s.log.Debug().Err(err).Msg("optional session ignored")
		return nil, false
	}
	return sess, true
}

// Logout revokes the presented token until its natural expiry. Without a
// denylist tokens stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, claims *ports.TokenClaims) error {
	if claims == nil || claims.TokenID == "" {
		return domain.ErrTokenInvalid
	}
	if s.denylist == nil {
		s.log.Warn().Str("user_id", claims.UserID).Msg("logout without denylist, token stays valid until expiry")
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// RequestPasswordReset answers identically for unknown and password accounts.
// Federated accounts are redirected to federated login.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*ports.ResetRequestResult, error) {
	email = domain.NormalizeEmail(email)
	ack := &ports.ResetRequestResult{Message: msgResetAcknowledged}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return ack, nil
		}
		return nil, fmt.Errorf("request password reset: %w", err)
	}
	if user.IsFederated() {
		return &ports.ResetRequestResult{Message: msgResetFederated}, nil
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, "reset:"+email)
		if err != nil {
			s.log.Warn().Err(err).Msg("reset throttle unavailable, continuing")
		} else if !allowed {
			s.log.Info().Str("user_id", user.ID).Msg("password reset throttled")
			return ack, nil
		}
	}

	token, err := newResetToken()
	if err != nil {
		return nil, fmt.Errorf("request password reset: %w", err)
	}
	now := s.now().UTC()
	reset := &domain.PasswordReset{
		Email:     email,
		Token:     token,
		ExpiresAt: now.Add(s.resetTTL),
		CreatedAt: now,
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return nil, fmt.Errorf("request password reset: %w", err)
	}

	if s.notify != nil {
		n := ports.ResetNotification{Email: email, Token: token, ExpiresAt: reset.ExpiresAt}
		if !s.notify.Enqueue(n) {
			s.log.Warn().Str("user_id", user.ID).Msg("reset notification dropped")
		}
	}

	if s.exposeResetToken {
		ack.Token = token
	}
	return ack, nil
}

// ResetPassword redeems a reset token. The token is claimed first so only one
// redemption writes a password; any failure before MarkUsed releases the
// claim and leaves the token redeemable.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return domain.ErrResetTokenInvalid
	}

	reset, err := s.resets.Claim(ctx, token, s.now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrResetTokenInvalid) {
			return domain.ErrResetTokenInvalid
		}
		return fmt.Errorf("reset password: %w", err)
	}

	consumed := false
	defer func() {
		if consumed {
			return
		}
		if rerr := s.resets.Release(context.WithoutCancel(ctx), token); rerr != nil {
			s.log.Warn().Err(rerr).Msg("reset claim release failed")
		}
	}()

	if reset.ExpiredAt(s.now()) {
		return domain.ErrResetTokenExpired
	}

	user, err := s.users.FindByEmail(ctx, reset.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrResetTokenInvalid
		}
		return fmt.Errorf("reset password: %w", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if err := s.resets.MarkUsed(ctx, token); err != nil {
		if errors.Is(err, domain.ErrResetTokenInvalid) {
			return domain.ErrResetTokenInvalid
		}
		return fmt.Errorf("reset password: %w", err)
	}
	consumed = true

	s.log.Info().Str("user_id", user.ID).Msg("password reset")
	return nil
}

func (s *AuthService) issue(user *domain.User) (*ports.AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, User: user}, nil
}

// newResetToken returns 32 random bytes, URL-safe encoded.
func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
