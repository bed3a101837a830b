package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/twohearts/wedding-api/internal/database/testutil"
	"github.com/twohearts/wedding-api/internal/models"
)

func newTestTokenService(t *testing.T, db *gorm.DB, clock func() time.Time) *TokenService {
	t.Helper()

	ledger, err := NewLedger(db, clock)
	require.NoError(t, err)

	svc, err := NewTokenService(db, ledger, TokenConfig{
		Secret: "test-secret",
		Issuer: "wedding-api",
		Clock:  clock,
	})
	require.NoError(t, err)
	return svc
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PasswordHash: "irrelevant",
		Verified:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	ledger, err := NewLedger(db, nil)
	require.NoError(t, err)

	_, err = NewTokenService(db, ledger, TokenConfig{})
	require.Error(t, err)
	require.EqualError(t, err, "token service: secret must be provided")
}

func TestIssueAndValidate(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, db, func() time.Time { return current })
	user := createTestUser(t, db, "ada@example.com")

	token, err := svc.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	resolved, err := svc.Validate(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved.ID)
	require.Equal(t, "ada@example.com", resolved.Email)

	// The issuance must have landed in the ledger.
	var count int64
	require.NoError(t, db.Model(&models.Token{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestEachLoginIssuesAFreshToken(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	// A frozen clock makes both tokens share iat and exp to the second;
	// they must still differ and both land in the ledger.
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, db, func() time.Time { return current })
	user := createTestUser(t, db, "ada@example.com")

	first, err := svc.Issue(user)
	require.NoError(t, err)
	second, err := svc.Issue(user)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// Both stay valid: multiple concurrent sessions per user are allowed.
	_, err = svc.Validate(first)
	require.NoError(t, err)
	_, err = svc.Validate(second)
	require.NoError(t, err)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newTestTokenService(t, db, nil)
	user := createTestUser(t, db, "ada@example.com")

	token, err := svc.Issue(user)
	require.NoError(t, err)

	ledger, err := NewLedger(db, nil)
	require.NoError(t, err)
	other, err := NewTokenService(db, ledger, TokenConfig{Secret: "other-secret"})
	require.NoError(t, err)

	_, err = other.Validate(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateRevokedToken(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newTestTokenService(t, db, nil)
	user := createTestUser(t, db, "ada@example.com")

	token, err := svc.Issue(user)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(token))

	_, err = svc.Validate(token)
	require.ErrorIs(t, err, ErrTokenRevoked)

	// Revocation is monotonic: still revoked on the next attempt.
	_, err = svc.Validate(token)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestValidateTokenMissingFromLedger(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, db, func() time.Time { return current })
	user := createTestUser(t, db, "ada@example.com")

	token, err := svc.Issue(user)
	require.NoError(t, err)

	// Wipe the ledger entirely; a cryptographically valid token with no
	// ledger row must fail closed as revoked.
	require.NoError(t, db.Where("1 = 1").Delete(&models.Token{}).Error)

	_, err = svc.Validate(token)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestValidateExpiredToken(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, db, func() time.Time { return current })
	user := createTestUser(t, db, "ada@example.com")

	token, err := svc.Issue(user)
	require.NoError(t, err)

	current = current.Add(7*24*time.Hour + time.Minute)
	_, err = svc.Validate(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestRevokedWinsOverExpired(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, db, func() time.Time { return current })
	user := createTestUser(t, db, "ada@example.com")

	token, err := svc.Issue(user)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(token))

	current = current.Add(8 * 24 * time.Hour)
	_, err = svc.Validate(token)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestValidateDeletedAccountRevokesToken(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newTestTokenService(t, db, nil)
	user := createTestUser(t, db, "ada@example.com")

	token, err := svc.Issue(user)
	require.NoError(t, err)

	require.NoError(t, db.Delete(user).Error)

	_, err = svc.Validate(token)
	require.ErrorIs(t, err, ErrTokenInvalid)

	// Defensive cleanup: the orphaned token is now revoked in the ledger.
	var record models.Token
	require.NoError(t, db.Where("token = ?", token).Take(&record).Error)
	require.True(t, record.Revoked)
}

func TestValidateGarbageToken(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newTestTokenService(t, db, nil)

	for _, input := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Validate(input)
		require.ErrorIs(t, err, ErrTokenInvalid, "input %q", input)
	}
}
