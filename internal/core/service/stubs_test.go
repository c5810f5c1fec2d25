package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/screengrabber/account-api/internal/core/domain"
	"github.com/screengrabber/account-api/internal/core/hasher"
	"github.com/screengrabber/account-api/internal/core/ports"
	"github.com/screengrabber/account-api/internal/core/token"
)

// ---------------------------------------------------------------------------
// Clock
// ---------------------------------------------------------------------------

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users map[string]*domain.User // by id

	findErr   error
	createErr error // returned once, then cleared
	updateErr error
	grantErr  error
	created   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrUserExists
		}
	}
	r.users[user.ID] = cloneUser(user)
	r.created++
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdatePasswordHash(_ context.Context, id, hash string) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *stubUserRepo) LinkFederated(_ context.Context, id string, p ports.FederatedProfile) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Name = p.Name
	u.Picture = p.Picture
	u.FederatedID = p.FederatedID
	u.AuthProvider = domain.ProviderFederated
	return nil
}

func (r *stubUserRepo) GrantPro(_ context.Context, id, key string) error {
	if r.grantErr != nil {
		return r.grantErr
	}
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsPro = true
	u.LicenseKey = key
	return nil
}

// seed inserts u directly, bypassing the service.
func (r *stubUserRepo) seed(u *domain.User) {
	r.users[u.ID] = cloneUser(u)
}

func (r *stubUserRepo) byEmail(email string) *domain.User {
	for _, u := range r.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Password resets
// ---------------------------------------------------------------------------

type stubResetRepo struct {
	resets    map[string]*domain.PasswordReset
	claims    map[string]time.Time
	createErr error
	releases  int
}

func newStubResetRepo() *stubResetRepo {
	return &stubResetRepo{
		resets: make(map[string]*domain.PasswordReset),
		claims: make(map[string]time.Time),
	}
}

func (r *stubResetRepo) Create(_ context.Context, reset *domain.PasswordReset) error {
	if r.createErr != nil {
		return r.createErr
	}
	clone := *reset
	r.resets[reset.Token] = &clone
	return nil
}

func (r *stubResetRepo) Claim(_ context.Context, tok string, now time.Time) (*domain.PasswordReset, error) {
	reset, ok := r.resets[tok]
	if !ok || reset.Used {
		return nil, domain.ErrResetTokenInvalid
	}
	if at, held := r.claims[tok]; held && now.Sub(at) < domain.ResetClaimLease {
		return nil, domain.ErrResetTokenInvalid
	}
	r.claims[tok] = now
	clone := *reset
	return &clone, nil
}

func (r *stubResetRepo) Release(_ context.Context, tok string) error {
	r.releases++
	if reset, ok := r.resets[tok]; ok && !reset.Used {
		delete(r.claims, tok)
	}
	return nil
}

func (r *stubResetRepo) MarkUsed(_ context.Context, tok string) error {
	reset, ok := r.resets[tok]
	if !ok || reset.Used {
		return domain.ErrResetTokenInvalid
	}
	reset.Used = true
	return nil
}

// only returns the single stored reset, or nil.
func (r *stubResetRepo) only() *domain.PasswordReset {
	if len(r.resets) != 1 {
		return nil
	}
	for _, reset := range r.resets {
		return reset
	}
	return nil
}

// ---------------------------------------------------------------------------
// Denylist, throttle, notification queue
// ---------------------------------------------------------------------------

type stubDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func newStubDenylist() *stubDenylist {
	return &stubDenylist{revoked: make(map[string]time.Time)}
}

func (d *stubDenylist) Revoke(_ context.Context, id string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.revoked[id] = until
	return nil
}

func (d *stubDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	_, ok := d.revoked[id]
	return ok, nil
}

type stubThrottle struct {
	allow bool
	err   error
	keys  []string
}

func (t *stubThrottle) Allow(_ context.Context, key string) (bool, error) {
	t.keys = append(t.keys, key)
	return t.allow, t.err
}

type stubQueue struct {
	accept bool
	sent   []ports.ResetNotification
}

func (q *stubQueue) Enqueue(n ports.ResetNotification) bool {
	if !q.accept {
		return false
	}
	q.sent = append(q.sent, n)
	return true
}

// ---------------------------------------------------------------------------
// Licenses
// ---------------------------------------------------------------------------

type stubLicenseRepo struct {
	licenses  map[string]*domain.License
	findErr   error
	createErr []error // consumed one per Create call
}

func newStubLicenseRepo(licenses ...*domain.License) *stubLicenseRepo {
	r := &stubLicenseRepo{licenses: make(map[string]*domain.License)}
	for _, l := range licenses {
		r.licenses[l.Key] = l
	}
	return r
}

func (r *stubLicenseRepo) FindActive(_ context.Context, key string) (*domain.License, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	l, ok := r.licenses[key]
	if !ok || !l.Active {
		return nil, domain.ErrLicenseNotFound
	}
	clone := *l
	return &clone, nil
}

func (r *stubLicenseRepo) Create(_ context.Context, l *domain.License) error {
	if len(r.createErr) > 0 {
		err := r.createErr[0]
		r.createErr = r.createErr[1:]
		if err != nil {
			return err
		}
	}
	if _, ok := r.licenses[l.Key]; ok {
		return domain.ErrLicenseExists
	}
	clone := *l
	r.licenses[l.Key] = &clone
	return nil
}

func (r *stubLicenseRepo) Deactivate(_ context.Context, key string) error {
	l, ok := r.licenses[key]
	if !ok {
		return domain.ErrLicenseNotFound
	}
	l.Active = false
	return nil
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

var errStore = errors.New("store unavailable")

type authFixture struct {
	svc      *AuthService
	users    *stubUserRepo
	resets   *stubResetRepo
	tokens   *token.JWT
	denylist *stubDenylist
	queue    *stubQueue
	clock    *fakeClock
}

func newAuthFixture(opts ...AuthOption) *authFixture {
	f := &authFixture{
		users:    newStubUserRepo(),
		resets:   newStubResetRepo(),
		denylist: newStubDenylist(),
		queue:    &stubQueue{accept: true},
		clock:    newFakeClock(),
	}
	f.tokens = token.NewJWT([]byte("test-secret"), token.DefaultTTL, token.WithClock(f.clock.Now))
	h := hasher.NewChain(hasher.NewBcrypt(bcrypt.MinCost), hasher.SHA256{})

	base := []AuthOption{
		WithDenylist(f.denylist),
		WithNotificationQueue(f.queue),
		WithAuthClock(f.clock.Now),
	}
	f.svc = NewAuthService(f.users, f.resets, h, f.tokens, zerolog.Nop(), append(base, opts...)...)
	return f
}
