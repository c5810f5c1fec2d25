package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/screengrabber/account-api/internal/core/domain"
	"github.com/screengrabber/account-api/internal/core/hasher"
	"github.com/screengrabber/account-api/internal/core/ports"
)

func mustRegister(t *testing.T, f *authFixture, email, password string) *ports.AuthResult {
	t.Helper()
	res, err := f.svc.Register(context.Background(), ports.RegisterInput{Email: email, Password: password})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return res
}

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture()

	res, err := f.svc.Register(context.Background(), ports.RegisterInput{Email: " Alice@Example.com", Password: "pass123"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected token")
	}

	u := res.User
	if u.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if u.Name != "alice" {
		t.Fatalf("expected default name from local part, got %q", u.Name)
	}
	if u.AuthProvider != domain.ProviderPassword || u.IsPro {
		t.Fatalf("unexpected user state: %+v", u)
	}
	if !u.CreatedAt.Equal(f.clock.t) {
		t.Fatalf("unexpected created_at: %v", u.CreatedAt)
	}

	stored := f.users.byEmail("alice@example.com")
	if stored == nil || stored.PasswordHash == "pass123" {
		t.Fatalf("expected stored hashed password, got %+v", stored)
	}

	claims, err := f.tokens.Verify(res.Token)
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.UserID != u.ID {
		t.Fatalf("token user %q, want %q", claims.UserID, u.ID)
	}
}

func TestAuthService_Register_KeepsGivenName(t *testing.T) {
	f := newAuthFixture()

	res, err := f.svc.Register(context.Background(), ports.RegisterInput{Email: "a@x.com", Password: "pw", Name: "Ada"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.User.Name != "Ada" {
		t.Fatalf("expected Ada, got %q", res.User.Name)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	f := newAuthFixture()
	mustRegister(t, f, "bob@example.com", "pass")

	for _, pw := range []string{"pass", "other", ""} {
		_, err := f.svc.Register(context.Background(), ports.RegisterInput{Email: "BOB@example.com", Password: pw})
		if !errors.Is(err, domain.ErrUserExists) {
			t.Fatalf("expected ErrUserExists for password %q, got %v", pw, err)
		}
	}
	if f.users.created != 1 {
		t.Fatalf("expected a single user, got %d", f.users.created)
	}
}

func TestAuthService_Register_StoreRejectsDuplicate(t *testing.T) {
	f := newAuthFixture()
	f.users.createErr = domain.ErrUserExists

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{Email: "race@example.com", Password: "pw"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists from store, got %v", err)
	}
}

func TestAuthService_Register_StoreError(t *testing.T) {
	f := newAuthFixture()
	f.users.findErr = errStore

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{Email: "a@x.com", Password: "pw"})
	if !errors.Is(err, errStore) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture()
	reg := mustRegister(t, f, "carol@example.com", "s3cret")

	res, err := f.svc.Login(context.Background(), "carol@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Token == reg.Token {
		t.Fatalf("expected a fresh token")
	}
	claims, err := f.tokens.Verify(res.Token)
	if err != nil || claims.UserID != reg.User.ID {
		t.Fatalf("login token does not identify the user: %v %+v", err, claims)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	f := newAuthFixture()
	mustRegister(t, f, "dave@example.com", "goodpass")

	if _, err := f.svc.Login(context.Background(), "dave@example.com", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	f := newAuthFixture()

	if _, err := f.svc.Login(context.Background(), "ghost@example.com", "pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_FederatedAccount(t *testing.T) {
	f := newAuthFixture()
	_, err := f.svc.FederatedLogin(context.Background(), ports.FederatedLoginInput{Email: "fed@example.com", FederatedID: "g-1"})
	if err != nil {
		t.Fatalf("federated login: %v", err)
	}

	for _, pw := range []string{"", "anything", "hunter2"} {
		if _, err := f.svc.Login(context.Background(), "fed@example.com", pw); !errors.Is(err, domain.ErrFederatedAccount) {
			t.Fatalf("expected ErrFederatedAccount for %q, got %v", pw, err)
		}
	}
}

func TestAuthService_Login_UpgradesLegacyDigest(t *testing.T) {
	f := newAuthFixture()
	legacy, _ := hasher.SHA256{}.Hash("old-pass")
	f.users.seed(&domain.User{
		ID:           "legacy-1",
		Email:        "old@example.com",
		PasswordHash: legacy,
		AuthProvider: domain.ProviderPassword,
	})

	if _, err := f.svc.Login(context.Background(), "old@example.com", "old-pass"); err != nil {
		t.Fatalf("legacy login failed: %v", err)
	}
	if got := f.users.users["legacy-1"].PasswordHash; got == legacy {
		t.Fatalf("expected digest to be upgraded")
	}
	if _, err := f.svc.Login(context.Background(), "old@example.com", "old-pass"); err != nil {
		t.Fatalf("login after upgrade failed: %v", err)
	}
}

func TestAuthService_Login_RehashFailureStillSucceeds(t *testing.T) {
	f := newAuthFixture()
	legacy, _ := hasher.SHA256{}.Hash("old-pass")
	f.users.seed(&domain.User{ID: "legacy-1", Email: "old@example.com", PasswordHash: legacy, AuthProvider: domain.ProviderPassword})
	f.users.updateErr = errStore

	if _, err := f.svc.Login(context.Background(), "old@example.com", "old-pass"); err != nil {
		t.Fatalf("login must not fail on rehash error: %v", err)
	}
	if f.users.users["legacy-1"].PasswordHash != legacy {
		t.Fatalf("digest must be unchanged")
	}
}

func TestAuthService_FederatedLogin_CreatesUser(t *testing.T) {
	f := newAuthFixture()

	res, err := f.svc.FederatedLogin(context.Background(), ports.FederatedLoginInput{
		Email:       "g@example.com",
		Picture:     "https://img/1.png",
		FederatedID: "g-1",
	})
	if err != nil {
		t.Fatalf("federated login: %v", err)
	}
	u := res.User
	if u.AuthProvider != domain.ProviderFederated || u.FederatedID != "g-1" || u.IsPro {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.Name != "g" || u.Picture != "https://img/1.png" {
		t.Fatalf("unexpected profile: %+v", u)
	}
	if _, err := f.tokens.Verify(res.Token); err != nil {
		t.Fatalf("token invalid: %v", err)
	}
}

func TestAuthService_FederatedLogin_Idempotent(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	first, err := f.svc.FederatedLogin(ctx, ports.FederatedLoginInput{Email: "g@example.com", Name: "First", Picture: "p1", FederatedID: "g-1"})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := f.svc.FederatedLogin(ctx, ports.FederatedLoginInput{Email: "g@example.com", Name: "Second", FederatedID: "g-1"})
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	if len(f.users.users) != 1 {
		t.Fatalf("expected one user, got %d", len(f.users.users))
	}
	if first.User.ID != second.User.ID {
		t.Fatalf("identity changed between calls")
	}
	stored := f.users.users[first.User.ID]
	if stored.Name != "Second" {
		t.Fatalf("expected new name to win, got %q", stored.Name)
	}
	if stored.Picture != "p1" {
		t.Fatalf("expected old picture to be kept when absent, got %q", stored.Picture)
	}
	if second.User.Name != "Second" || second.User.Picture != "p1" {
		t.Fatalf("unexpected returned user: %+v", second.User)
	}
}

func TestAuthService_FederatedLogin_LinksPasswordAccount(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	reg := mustRegister(t, f, "link@example.com", "pw1")
	hashBefore := f.users.users[reg.User.ID].PasswordHash

	res, err := f.svc.FederatedLogin(ctx, ports.FederatedLoginInput{Email: "link@example.com", FederatedID: "g-9"})
	if err != nil {
		t.Fatalf("federated login: %v", err)
	}
	if res.User.ID != reg.User.ID {
		t.Fatalf("expected existing account to be linked")
	}
	if res.User.Name != "link" {
		t.Fatalf("expected existing name kept, got %q", res.User.Name)
	}

	stored := f.users.users[reg.User.ID]
	if stored.AuthProvider != domain.ProviderFederated {
		t.Fatalf("expected provider upgrade, got %s", stored.AuthProvider)
	}
	if stored.PasswordHash != hashBefore {
		t.Fatalf("password hash must be retained")
	}
	if _, err := f.svc.Login(ctx, "link@example.com", "pw1"); !errors.Is(err, domain.ErrFederatedAccount) {
		t.Fatalf("expected password login to be closed, got %v", err)
	}
}

func TestAuthService_FederatedLogin_LostCreateRace(t *testing.T) {
	f := newAuthFixture()
	repo := &racingUserRepo{
		stubUserRepo: f.users,
		winner:       &domain.User{ID: "winner", Email: "race@example.com", Name: "w", AuthProvider: domain.ProviderPassword},
	}
	f.svc.users = repo

	res, err := f.svc.FederatedLogin(context.Background(), ports.FederatedLoginInput{Email: "race@example.com", FederatedID: "g-1"})
	if err != nil {
		t.Fatalf("federated login: %v", err)
	}
	if res.User.ID != "winner" || res.User.AuthProvider != domain.ProviderFederated {
		t.Fatalf("expected the winning record to be linked, got %+v", res.User)
	}
	if len(f.users.users) != 1 {
		t.Fatalf("expected a single user, got %d", len(f.users.users))
	}
}

// racingUserRepo reports no user on the first lookup and inserts winner when
// Create is attempted, mimicking a concurrent sign-up.
type racingUserRepo struct {
	*stubUserRepo
	winner *domain.User
}

func (r *racingUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.seed(r.winner)
	return r.stubUserRepo.Create(ctx, user)
}

func TestAuthService_ResolveSession(t *testing.T) {
	f := newAuthFixture()
	reg := mustRegister(t, f, "s@example.com", "pw")

	sess, err := f.svc.ResolveSession(context.Background(), reg.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if sess.User.ID != reg.User.ID || sess.Claims.UserID != reg.User.ID {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestAuthService_ResolveSession_Failures(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	reg := mustRegister(t, f, "s@example.com", "pw")

	if _, err := f.svc.ResolveSession(ctx, ""); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := f.svc.ResolveSession(ctx, "garbage"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}

	orphan, err := f.tokens.Issue("deleted-user", "gone@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := f.svc.ResolveSession(ctx, orphan); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	f.clock.Advance(7 * 24 * time.Hour)
	if _, err := f.svc.ResolveSession(ctx, reg.Token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAuthService_ResolveSession_DenylistErrorFailsClosed(t *testing.T) {
	f := newAuthFixture()
	reg := mustRegister(t, f, "s@example.com", "pw")
	f.denylist.err = errStore

	if _, err := f.svc.ResolveSession(context.Background(), reg.Token); !errors.Is(err, errStore) {
		t.Fatalf("expected denylist error, got %v", err)
	}
}

func TestAuthService_ResolveOptionalSession(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	reg := mustRegister(t, f, "o@example.com", "pw")

	if sess, ok := f.svc.ResolveOptionalSession(ctx, reg.Token); !ok || sess.User.ID != reg.User.ID {
		t.Fatalf("expected identity, got %v %+v", ok, sess)
	}
	for _, tok := range []string{"", "garbage"} {
		if sess, ok := f.svc.ResolveOptionalSession(ctx, tok); ok || sess != nil {
			t.Fatalf("expected no identity for %q", tok)
		}
	}

	f.denylist.err = errStore
	if _, ok := f.svc.ResolveOptionalSession(ctx, reg.Token); ok {
		t.Fatalf("expected store failure to map to no identity")
	}
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	reg := mustRegister(t, f, "l@example.com", "pw")

	sess, err := f.svc.ResolveSession(ctx, reg.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := f.svc.Logout(ctx, sess.Claims); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if until := f.denylist.revoked[sess.Claims.TokenID]; !until.Equal(sess.Claims.ExpiresAt) {
		t.Fatalf("expected revocation until token expiry, got %v", until)
	}
	if _, err := f.svc.ResolveSession(ctx, reg.Token); !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}

	other, err := f.svc.Login(ctx, "l@example.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := f.svc.ResolveSession(ctx, other.Token); err != nil {
		t.Fatalf("other sessions must survive logout: %v", err)
	}
}

func TestAuthService_Logout_InvalidClaims(t *testing.T) {
	f := newAuthFixture()

	if err := f.svc.Logout(context.Background(), nil); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if err := f.svc.Logout(context.Background(), &ports.TokenClaims{UserID: "u"}); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestAuthService_RequestPasswordReset_UnknownEmail(t *testing.T) {
	f := newAuthFixture()

	res, err := f.svc.RequestPasswordReset(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if res.Message != msgResetAcknowledged || res.Token != "" {
		t.Fatalf("unexpected reply: %+v", res)
	}
	if len(f.resets.resets) != 0 || len(f.queue.sent) != 0 {
		t.Fatalf("no token must be issued for unknown emails")
	}
}

func TestAuthService_RequestPasswordReset_PasswordAccount(t *testing.T) {
	f := newAuthFixture()
	mustRegister(t, f, "r@example.com", "pw")

	res, err := f.svc.RequestPasswordReset(context.Background(), "R@example.com")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if res.Message != msgResetAcknowledged {
		t.Fatalf("reply must match the unknown-email reply, got %q", res.Message)
	}
	if res.Token != "" {
		t.Fatalf("token must not be exposed by default")
	}

	reset := f.resets.only()
	if reset == nil {
		t.Fatalf("expected one reset record, got %d", len(f.resets.resets))
	}
	if reset.Email != "r@example.com" || reset.Used || len(reset.Token) < 40 {
		t.Fatalf("unexpected reset: %+v", reset)
	}
	if !reset.ExpiresAt.Equal(f.clock.t.Add(time.Hour)) {
		t.Fatalf("expected 1h TTL, got %v", reset.ExpiresAt.Sub(f.clock.t))
	}
	if len(f.queue.sent) != 1 || f.queue.sent[0].Token != reset.Token {
		t.Fatalf("expected notification for issued token, got %+v", f.queue.sent)
	}
}

func TestAuthService_RequestPasswordReset_Exposed(t *testing.T) {
	f := newAuthFixture(WithExposedResetToken(true), WithResetTokenTTL(30*time.Minute))
	mustRegister(t, f, "r@example.com", "pw")

	res, err := f.svc.RequestPasswordReset(context.Background(), "r@example.com")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	reset := f.resets.only()
	if reset == nil || res.Token != reset.Token {
		t.Fatalf("expected exposed token to match stored token")
	}
	if !reset.ExpiresAt.Equal(f.clock.t.Add(30 * time.Minute)) {
		t.Fatalf("expected configured TTL")
	}
}

func TestAuthService_RequestPasswordReset_FederatedAccount(t *testing.T) {
	f := newAuthFixture()
	if _, err := f.svc.FederatedLogin(context.Background(), ports.FederatedLoginInput{Email: "fed@example.com", FederatedID: "g"}); err != nil {
		t.Fatalf("federated login: %v", err)
	}

	res, err := f.svc.RequestPasswordReset(context.Background(), "fed@example.com")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if res.Message != msgResetFederated {
		t.Fatalf("expected federated redirect, got %q", res.Message)
	}
	if len(f.resets.resets) != 0 {
		t.Fatalf("no token must be issued for federated accounts")
	}
}

func TestAuthService_RequestPasswordReset_Throttled(t *testing.T) {
	th := &stubThrottle{allow: false}
	f := newAuthFixture(WithResetThrottle(th))
	mustRegister(t, f, "r@example.com", "pw")

	res, err := f.svc.RequestPasswordReset(context.Background(), "r@example.com")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if res.Message != msgResetAcknowledged {
		t.Fatalf("throttled reply must be the generic ack, got %q", res.Message)
	}
	if len(f.resets.resets) != 0 {
		t.Fatalf("throttled request must not issue a token")
	}
	if len(th.keys) != 1 || th.keys[0] != "reset:r@example.com" {
		t.Fatalf("unexpected throttle keys: %v", th.keys)
	}
}

func TestAuthService_RequestPasswordReset_ThrottleErrorProceeds(t *testing.T) {
	f := newAuthFixture(WithResetThrottle(&stubThrottle{err: errStore}))
	mustRegister(t, f, "r@example.com", "pw")

	if _, err := f.svc.RequestPasswordReset(context.Background(), "r@example.com"); err != nil {
		t.Fatalf("request: %v", err)
	}
	if len(f.resets.resets) != 1 {
		t.Fatalf("expected token despite throttle failure")
	}
}

func TestAuthService_RequestPasswordReset_DroppedNotification(t *testing.T) {
	f := newAuthFixture()
	f.queue.accept = false
	mustRegister(t, f, "r@example.com", "pw")

	if _, err := f.svc.RequestPasswordReset(context.Background(), "r@example.com"); err != nil {
		t.Fatalf("a dropped notification must not fail the request: %v", err)
	}
	if len(f.resets.resets) != 1 {
		t.Fatalf("token must still be stored")
	}
}

func TestAuthService_RequestPasswordReset_StoreError(t *testing.T) {
	f := newAuthFixture()
	mustRegister(t, f, "r@example.com", "pw")
	f.resets.createErr = errStore

	if _, err := f.svc.RequestPasswordReset(context.Background(), "r@example.com"); !errors.Is(err, errStore) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func requestResetToken(t *testing.T, f *authFixture, email string) string {
	t.Helper()
	if _, err := f.svc.RequestPasswordReset(context.Background(), email); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	reset := f.resets.only()
	if reset == nil {
		t.Fatalf("expected a reset record")
	}
	return reset.Token
}

func TestAuthService_ResetPassword_SingleUse(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	mustRegister(t, f, "r@example.com", "pw1")
	tok := requestResetToken(t, f, "r@example.com")

	if err := f.svc.ResetPassword(ctx, tok, "pw2"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !f.resets.resets[tok].Used {
		t.Fatalf("token must be marked used")
	}
	if err := f.svc.ResetPassword(ctx, tok, "pw3"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid on second use, got %v", err)
	}
	if _, err := f.svc.Login(ctx, "r@example.com", "pw2"); err != nil {
		t.Fatalf("second redemption must not change the password: %v", err)
	}
}

func TestAuthService_ResetPassword_Expired(t *testing.T) {
	f := newAuthFixture()
	mustRegister(t, f, "r@example.com", "pw1")
	tok := requestResetToken(t, f, "r@example.com")

	f.clock.Advance(time.Hour + time.Second)
	if err := f.svc.ResetPassword(context.Background(), tok, "pw2"); !errors.Is(err, domain.ErrResetTokenExpired) {
		t.Fatalf("expected ErrResetTokenExpired, got %v", err)
	}
	if f.resets.resets[tok].Used {
		t.Fatalf("expired token must not be marked used")
	}
}

func TestAuthService_ResetPassword_AtExpiryInstant(t *testing.T) {
	f := newAuthFixture()
	mustRegister(t, f, "r@example.com", "pw1")
	tok := requestResetToken(t, f, "r@example.com")

	f.clock.Advance(time.Hour)
	if err := f.svc.ResetPassword(context.Background(), tok, "pw2"); err != nil {
		t.Fatalf("token must be redeemable at its expiry instant: %v", err)
	}
}

func TestAuthService_ResetPassword_UnknownToken(t *testing.T) {
	f := newAuthFixture()

	for _, tok := range []string{"", "nope"} {
		if err := f.svc.ResetPassword(context.Background(), tok, "pw"); !errors.Is(err, domain.ErrResetTokenInvalid) {
			t.Fatalf("expected ErrResetTokenInvalid for %q, got %v", tok, err)
		}
	}
}

func TestAuthService_ResetPassword_UpdateFailureKeepsToken(t *testing.T) {
	f := newAuthFixture()
	mustRegister(t, f, "r@example.com", "pw1")
	tok := requestResetToken(t, f, "r@example.com")
	f.users.updateErr = errStore

	if err := f.svc.ResetPassword(context.Background(), tok, "pw2"); !errors.Is(err, errStore) {
		t.Fatalf("expected store error, got %v", err)
	}
	if f.resets.resets[tok].Used {
		t.Fatalf("token must stay unused when the password write fails")
	}
	if _, held := f.resets.claims[tok]; held {
		t.Fatalf("claim must be released when the password write fails")
	}

	f.users.updateErr = nil
	if err := f.svc.ResetPassword(context.Background(), tok, "pw2"); err != nil {
		t.Fatalf("retry after store recovery: %v", err)
	}
}

func TestAuthService_ResetPassword_ConcurrentRedemptionLoses(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	mustRegister(t, f, "r@example.com", "pw1")
	tok := requestResetToken(t, f, "r@example.com")

	// A redemption in flight holds the claim.
	if _, err := f.resets.Claim(ctx, tok, f.clock.Now()); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := f.svc.ResetPassword(ctx, tok, "loser"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid while claimed, got %v", err)
	}
	if _, err := f.svc.Login(ctx, "r@example.com", "loser"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("losing redemption must not write its password, got %v", err)
	}

	// An abandoned claim can be taken over after the lease.
	f.clock.Advance(domain.ResetClaimLease)
	if err := f.svc.ResetPassword(ctx, tok, "pw2"); err != nil {
		t.Fatalf("reset after stale claim: %v", err)
	}
	if _, err := f.svc.Login(ctx, "r@example.com", "pw2"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestAuthService_ResetPassword_ExpiredReleasesClaim(t *testing.T) {
	f := newAuthFixture()
	mustRegister(t, f, "r@example.com", "pw1")
	tok := requestResetToken(t, f, "r@example.com")

	f.clock.Advance(2 * time.Hour)
	if err := f.svc.ResetPassword(context.Background(), tok, "pw2"); !errors.Is(err, domain.ErrResetTokenExpired) {
		t.Fatalf("expected ErrResetTokenExpired, got %v", err)
	}
	if _, held := f.resets.claims[tok]; held || f.resets.releases != 1 {
		t.Fatalf("claim must be released, releases=%d", f.resets.releases)
	}
}

func TestAuthService_PasswordRecoveryScenario(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	t1 := mustRegister(t, f, "a@x.com", "pw1")
	t2, err := f.svc.Login(ctx, "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("login pw1: %v", err)
	}
	if t1.Token == t2.Token {
		t.Fatalf("expected distinct tokens")
	}
	c1, err1 := f.tokens.Verify(t1.Token)
	c2, err2 := f.tokens.Verify(t2.Token)
	if err1 != nil || err2 != nil || c1.UserID != c2.UserID {
		t.Fatalf("both tokens must verify to the same user: %v %v", err1, err2)
	}

	r := requestResetToken(t, f, "a@x.com")
	if err := f.svc.ResetPassword(ctx, r, "pw2"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := f.svc.Login(ctx, "a@x.com", "pw1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password must fail, got %v", err)
	}
	if _, err := f.svc.Login(ctx, "a@x.com", "pw2"); err != nil {
		t.Fatalf("new password must work: %v", err)
	}
}
