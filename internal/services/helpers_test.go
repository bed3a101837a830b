package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/twohearts/wedding-api/internal/auth"
	"github.com/twohearts/wedding-api/internal/database/testutil"
	"github.com/twohearts/wedding-api/internal/models"
	"github.com/twohearts/wedding-api/pkg/crypto"
	"github.com/twohearts/wedding-api/pkg/mail"
)

// fakeClock is a mutable time source shared by the services under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// captureMailer records outgoing messages instead of delivering them.
type captureMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) Messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mail.Message, len(m.sent))
	copy(out, m.sent)
	return out
}

type testEnv struct {
	db     *gorm.DB
	clock  *fakeClock
	mailer *captureMailer
	tokens *iauth.TokenService
	codes  *iauth.CodeService
	auth   *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	clock := newFakeClock()

	ledger, err := iauth.NewLedger(db, clock.Now)
	require.NoError(t, err)

	tokens, err := iauth.NewTokenService(db, ledger, iauth.TokenConfig{
		Secret: "test-token-secret",
		Issuer: "wedding-api-test",
		Clock:  clock.Now,
	})
	require.NoError(t, err)

	codes, err := iauth.NewCodeService("test-code-secret", clock.Now)
	require.NoError(t, err)

	mailer := &captureMailer{}
	auth, err := NewAuthService(db, tokens, codes, mailer, AuthConfig{Clock: clock.Now})
	require.NoError(t, err)

	return &testEnv{db: db, clock: clock, mailer: mailer, tokens: tokens, codes: codes, auth: auth}
}

func seedGroup(t *testing.T, db *gorm.DB, name, code string, guestNames ...string) *models.InvitationGroup {
	t.Helper()

	group := &models.InvitationGroup{
		FriendlyName:     name,
		RegistrationCode: code,
	}
	require.NoError(t, db.Create(group).Error)

	invitation := &models.Invitation{
		GroupID:  group.ID,
		Type:     models.InvitationHouse,
		Response: models.ResponseNone,
	}
	require.NoError(t, db.Create(invitation).Error)
	group.Invitation = invitation

	for _, gn := range guestNames {
		guest := &models.Guest{GroupID: group.ID, Name: gn}
		require.NoError(t, db.Create(guest).Error)
		group.Guests = append(group.Guests, *guest)
	}
	return group
}

func seedUser(t *testing.T, db *gorm.DB, email, password string, verified bool, groupID *string) *models.User {
	t.Helper()

	hashed, err := crypto.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		FirstName:    "Test",
		LastName:     "Guest",
		PasswordHash: hashed,
		Verified:     verified,
		GroupID:      groupID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedAdmin(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := seedUser(t, db, email, "admin-password", true, nil)
	require.NoError(t, db.Model(user).Update("admin", true).Error)
	user.Admin = true
	return user
}
