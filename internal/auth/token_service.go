package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/twohearts/wedding-api/internal/models"
)

// DefaultTokenTTL defines the fallback validity period for bearer tokens.
const DefaultTokenTTL = 7 * 24 * time.Hour

var (
	// ErrTokenInvalid covers malformed tokens, bad signatures, and tokens
	// whose subject no longer exists.
	ErrTokenInvalid = errors.New("token: invalid")
	// ErrTokenRevoked marks a token the ledger no longer accepts. Tokens the
	// ledger has never seen report the same error.
	ErrTokenRevoked = errors.New("token: revoked")
	// ErrTokenExpired marks a token past its embedded expiry.
	ErrTokenExpired = errors.New("token: expired")
)

// TokenConfig bundles the configuration required to build a TokenService.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
	Clock  func() time.Time
}

// Claims represents the payload embedded in issued bearer tokens. The
// subject email is the source of identity; no database relation ties a
// token row to a user.
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenService mints and validates bearer tokens representing "this email,
// authenticated, until time T", recording every issuance in the ledger.
type TokenService struct {
	db     *gorm.DB
	ledger *Ledger
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService from the shared secret and the
// backing store.
func NewTokenService(db *gorm.DB, ledger *Ledger, cfg TokenConfig) (*TokenService, error) {
	if db == nil {
		return nil, errors.New("token service: db is required")
	}
	if ledger == nil {
		return nil, errors.New("token service: ledger is required")
	}
	if cfg.Secret == "" {
		return nil, errors.New("token service: secret must be provided")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &TokenService{
		db:     db,
		ledger: ledger,
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    now,
	}, nil
}

// Issue signs a fresh token for the user and records it in the ledger.
// Every call produces a brand-new token; concurrent logins by the same
// user each get their own.
func (s *TokenService) Issue(user *models.User) (string, error) {
	if user == nil || user.Email == "" {
		return "", errors.New("token service: user with email is required")
	}

	// The jti keeps simultaneous logins distinct: iat and exp only carry
	// second precision, and the ledger indexes tokens uniquely.
	now := s.now()
	claims := &Claims{
		Name: user.FullName(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Email,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token service: sign token: %w", err)
	}

	if err := s.ledger.Record(signed); err != nil {
		return "", err
	}

	return signed, nil
}

// Validate resolves a token string to its user. Checks run in a fixed
// order: signature, ledger state, expiry, then account lookup. A valid
// token whose account has been deleted is revoked on the spot and reported
// as invalid.
func (s *TokenService) Validate(tokenString string) (*models.User, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	// Claim validation is deferred so a token that is both revoked and
	// expired reports revoked, matching the ledger-first contract.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	if _, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}); err != nil {
		return nil, ErrTokenInvalid
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	usable, err := s.ledger.IsUsable(tokenString)
	if err != nil {
		return nil, err
	}
	if !usable {
		return nil, ErrTokenRevoked
	}

	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(s.now()) {
		return nil, ErrTokenExpired
	}

	var user models.User
	err = s.db.Where("email = ?", claims.Subject).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Token outlived its account; make sure it can never pass again.
		_ = s.ledger.Revoke(tokenString)
		return nil, ErrTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("token service: look up subject: %w", err)
	}

	return &user, nil
}

// Revoke invalidates the supplied token string via the ledger.
func (s *TokenService) Revoke(tokenString string) error {
	return s.ledger.Revoke(tokenString)
}
