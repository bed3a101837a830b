package auth

import (
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultCodeMaxAge is the fallback validity window for signed codes.
const DefaultCodeMaxAge = 3 * time.Hour

var (
	// ErrCodeInvalid marks a code whose signature or structure does not check out.
	ErrCodeInvalid = errors.New("code: invalid")
	// ErrCodeExpired marks a structurally valid code issued too long ago.
	ErrCodeExpired = errors.New("code: expired")
)

// CodeService mints and validates stateless, tamper-evident, time-limited
// codes carrying a single email address. The same mechanism backs both
// email verification and password recovery; only the callers' cross-checks
// differ. Codes are deliberately not JWTs so they can never be presented as
// session tokens.
type CodeService struct {
	secret []byte
	now    func() time.Time
}

type codePayload struct {
	Email    string `json:"email"`
	IssuedAt int64  `json:"iat"`
}

// NewCodeService constructs a CodeService bound to the server secret.
func NewCodeService(secret string, clock func() time.Time) (*CodeService, error) {
	if secret == "" {
		return nil, errors.New("code service: secret must be provided")
	}
	if clock == nil {
		clock = time.Now
	}
	return &CodeService{secret: []byte(secret), now: clock}, nil
}

// Issue produces a URL-safe signed code embedding the email and the current
// time. Pure function of payload, secret, and clock; persisting the result
// onto the user record is the caller's job.
func (s *CodeService) Issue(email string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", errors.New("code service: email is required")
	}

	payload, err := json.Marshal(codePayload{
		Email:    email,
		IssuedAt: s.now().Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("code service: marshal payload: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + s.sign(encoded), nil
}

// Validate verifies the signature and the age of a code, returning the
// embedded email. Tampering of any kind yields ErrCodeInvalid, never a
// different payload.
func (s *CodeService) Validate(code string, maxAge time.Duration) (string, error) {
	if maxAge <= 0 {
		maxAge = DefaultCodeMaxAge
	}

	encoded, signature, found := strings.Cut(code, ".")
	if !found || encoded == "" || signature == "" {
		return "", ErrCodeInvalid
	}

	expected := s.sign(encoded)
	if subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) != 1 {
		return "", ErrCodeInvalid
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrCodeInvalid
	}

	var payload codePayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Email == "" {
		return "", ErrCodeInvalid
	}

	issuedAt := time.Unix(payload.IssuedAt, 0)
	if s.now().Sub(issuedAt) > maxAge {
		return "", ErrCodeExpired
	}

	return payload.Email, nil
}

func (s *CodeService) sign(encoded string) string {
	mac := hmac.New(sha512.New, s.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
