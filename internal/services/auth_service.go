package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	iauth "github.com/twohearts/wedding-api/internal/auth"
	"github.com/twohearts/wedding-api/internal/models"
	"github.com/twohearts/wedding-api/pkg/crypto"
	apperrors "github.com/twohearts/wedding-api/pkg/errors"
	"github.com/twohearts/wedding-api/pkg/logger"
	"github.com/twohearts/wedding-api/pkg/mail"
	"github.com/twohearts/wedding-api/pkg/metrics"
)

// AuthConfig tunes code lifetimes for the AuthService.
type AuthConfig struct {
	VerificationMaxAge time.Duration
	RecoveryMaxAge     time.Duration
	Clock              func() time.Time
}

// RegisterInput describes a registration request after parsing.
type RegisterInput struct {
	Email            string
	Password         string
	FirstName        string
	LastName         string
	RegistrationCode string
}

// AuthService implements the account flows: registration, login/logout,
// email verification, and password change/recovery.
type AuthService struct {
	db     *gorm.DB
	tokens *iauth.TokenService
	codes  *iauth.CodeService
	mailer mail.Mailer

	verificationMaxAge time.Duration
	recoveryMaxAge     time.Duration
	now                func() time.Time
	log                *zap.Logger
}

// NewAuthService wires the account flows over the shared stores.
func NewAuthService(db *gorm.DB, tokens *iauth.TokenService, codes *iauth.CodeService, mailer mail.Mailer, cfg AuthConfig) (*AuthService, error) {
	if db == nil {
		return nil, errors.New("auth service: db is required")
	}
	if tokens == nil {
		return nil, errors.New("auth service: token service is required")
	}
	if codes == nil {
		return nil, errors.New("auth service: code service is required")
	}

	verification := cfg.VerificationMaxAge
	if verification <= 0 {
		verification = iauth.DefaultCodeMaxAge
	}
	recovery := cfg.RecoveryMaxAge
	if recovery <= 0 {
		recovery = iauth.DefaultCodeMaxAge
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &AuthService{
		db:                 db,
		tokens:             tokens,
		codes:              codes,
		mailer:             mailer,
		verificationMaxAge: verification,
		recoveryMaxAge:     recovery,
		now:                clock,
		log:                logger.WithModule("auth"),
	}, nil
}

// Register creates an unverified account attached to the invitation group
// matching the registration code, and issues a verification code.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	email := strings.TrimSpace(input.Email)
	if email == "" || strings.TrimSpace(input.Password) == "" {
		return nil, apperrors.NewBadRequest("email and password are required")
	}

	var group models.InvitationGroup
	err := s.db.WithContext(ctx).
		Where("registration_code = ?", strings.TrimSpace(input.RegistrationCode)).
		Take(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("registration code does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("auth service: look up group: %w", err)
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth service: hash password: %w", err)
	}

	code, err := s.codes.Issue(email)
	if err != nil {
		return nil, fmt.Errorf("auth service: issue verification code: %w", err)
	}

	user := &models.User{
		Email:            email,
		FirstName:        strings.TrimSpace(input.FirstName),
		LastName:         strings.TrimSpace(input.LastName),
		PasswordHash:     hashed,
		Verified:         false,
		VerificationCode: &code,
		GroupID:          &group.ID,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("an account already exists with that email")
		}
		return nil, fmt.Errorf("auth service: create user: %w", err)
	}

	s.sendCode(ctx, email, "Confirm your email address",
		"Welcome!\n\nPlease confirm your email address using the code below:\n%s\n\nIf you did not create an account, you can ignore this message.\n", code)

	return user, nil
}

// Login checks credentials and returns a freshly issued bearer token. Bad
// email and bad password are indistinguishable; only an unverified account
// gets its own status.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return "", nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("auth service: look up user: %w", err)
	}

	if !crypto.VerifyPassword(user.PasswordHash, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return "", nil, apperrors.ErrInvalidCredentials
	}

	if !user.Verified {
		metrics.AuthAttempts.WithLabelValues("unverified").Inc()
		return "", nil, apperrors.ErrAccountNotVerified
	}

	token, err := s.tokens.Issue(&user)
	if err != nil {
		return "", nil, fmt.Errorf("auth service: issue token: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return token, &user, nil
}

// Logout revokes the presented token.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	if err := s.tokens.Revoke(tokenString); err != nil {
		return fmt.Errorf("auth service: revoke token: %w", err)
	}
	return nil
}

// ChangePassword replaces the password hash for an authenticated user.
func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, newPassword string) error {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(newPassword) == "" {
		return apperrors.NewBadRequest("password is required")
	}

	hashed, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth service: hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hashed).Error; err != nil {
		return fmt.Errorf("auth service: update password: %w", err)
	}
	return nil
}

// ForgottenPassword issues a recovery code when the email matches an
// account. It reports success either way so the endpoint cannot be used to
// enumerate accounts. A fresh code supersedes any outstanding one.
func (s *AuthService) ForgottenPassword(ctx context.Context, email string) error {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("auth service: look up user: %w", err)
	}

	code, err := s.codes.Issue(user.Email)
	if err != nil {
		return fmt.Errorf("auth service: issue recovery code: %w", err)
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]any{
		"recovery_code":         code,
		"recovery_generated_on": now,
	}).Error; err != nil {
		return fmt.Errorf("auth service: store recovery code: %w", err)
	}

	s.sendCode(ctx, user.Email, "Reset your password",
		"A password reset was requested for your account.\n\nUse the code below to set a new password:\n%s\n\nIf you did not request this, you can ignore this message.\n", code)

	return nil
}

// ResetPassword consumes a recovery code and sets a new password. The code
// must be the one currently stored on the account; an older code that is
// still cryptographically valid fails once a newer one has been issued.
func (s *AuthService) ResetPassword(ctx context.Context, code, newPassword string) error {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(newPassword) == "" {
		return apperrors.NewBadRequest("password is required")
	}

	email, err := s.codes.Validate(code, s.recoveryMaxAge)
	if err != nil {
		metrics.CodeValidations.WithLabelValues("recovery", "failure").Inc()
		return mapCodeError(err)
	}

	var user models.User
	err = s.db.WithContext(ctx).
		Where("email = ? AND recovery_code = ?", email, code).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Superseded or already used.
		metrics.CodeValidations.WithLabelValues("recovery", "failure").Inc()
		return apperrors.ErrCodeInvalid
	}
	if err != nil {
		return fmt.Errorf("auth service: look up recovery code: %w", err)
	}

	hashed, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth service: hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]any{
		"password_hash":         hashed,
		"recovery_code":         nil,
		"recovery_generated_on": nil,
	}).Error; err != nil {
		return fmt.Errorf("auth service: reset password: %w", err)
	}

	metrics.CodeValidations.WithLabelValues("recovery", "success").Inc()
	return nil
}

// VerifyEmail flips the verified flag using a valid, unexpired code.
func (s *AuthService) VerifyEmail(ctx context.Context, code string) error {
	ctx = ensureContext(ctx)

	email, err := s.codes.Validate(code, s.verificationMaxAge)
	if err != nil {
		metrics.CodeValidations.WithLabelValues("verify", "failure").Inc()
		return mapCodeError(err)
	}

	var user models.User
	err = s.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.CodeValidations.WithLabelValues("verify", "failure").Inc()
		return apperrors.ErrCodeInvalid
	}
	if err != nil {
		return fmt.Errorf("auth service: look up user: %w", err)
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]any{
		"verified":          true,
		"verification_code": nil,
		"verified_on":       now,
	}).Error; err != nil {
		return fmt.Errorf("auth service: mark verified: %w", err)
	}

	metrics.CodeValidations.WithLabelValues("verify", "success").Inc()
	return nil
}

func (s *AuthService) sendCode(ctx context.Context, to, subject, bodyFormat, code string) {
	if s.mailer == nil {
		return
	}

	msg := mail.Message{
		To:      []string{to},
		Subject: subject,
		Body:    fmt.Sprintf(bodyFormat, code),
	}
	if err := s.mailer.Send(ctx, msg); err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		// Delivery is best effort; the code can be re-requested.
		s.log.Warn("send code email failed", zap.String("to", to), zap.Error(err))
	}
}

func mapCodeError(err error) error {
	switch {
	case errors.Is(err, iauth.ErrCodeExpired):
		return apperrors.ErrCodeExpired
	case errors.Is(err, iauth.ErrCodeInvalid):
		return apperrors.ErrCodeInvalid
	default:
		return err
	}
}
