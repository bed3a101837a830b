package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/twohearts/wedding-api/internal/models"
	"github.com/twohearts/wedding-api/pkg/metrics"
)

// ErrTokenNotRecorded is returned when revoking a token the ledger has never
// seen. Callers validate tokens before revoking them, so hitting this is a
// programming error rather than a user-facing condition.
var ErrTokenNotRecorded = errors.New("ledger: token not recorded")

// Ledger persists issued bearer tokens and their revocation state. A token
// missing from the ledger is treated exactly like a revoked one, so the
// system fails closed if an insert was ever lost.
type Ledger struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLedger constructs a Ledger backed by the provided database.
func NewLedger(db *gorm.DB, clock func() time.Time) (*Ledger, error) {
	if db == nil {
		return nil, errors.New("ledger: db is required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &Ledger{db: db, now: clock}, nil
}

// Record inserts a freshly issued token as non-revoked.
func (l *Ledger) Record(tokenString string) error {
	if strings.TrimSpace(tokenString) == "" {
		return errors.New("ledger: token string is required")
	}

	record := models.Token{Token: tokenString}
	if err := l.db.Create(&record).Error; err != nil {
		return fmt.Errorf("ledger: record token: %w", err)
	}

	metrics.ActiveTokens.Inc()
	return nil
}

// IsUsable reports whether the exact token string exists and has not been
// revoked. Absent and revoked rows are indistinguishable to callers.
func (l *Ledger) IsUsable(tokenString string) (bool, error) {
	var record models.Token
	err := l.db.Where("token = ?", tokenString).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger: look up token: %w", err)
	}
	return !record.Revoked, nil
}

// Revoke marks a token permanently unusable and stamps the revocation time.
// Revoking an unknown token returns ErrTokenNotRecorded; revoking an
// already-revoked token is a no-op.
func (l *Ledger) Revoke(tokenString string) error {
	now := l.now()

	result := l.db.Model(&models.Token{}).
		Where("token = ? AND revoked = ?", tokenString, false).
		Updates(map[string]any{
			"revoked":    true,
			"revoked_on": now,
		})
	if result.Error != nil {
		return fmt.Errorf("ledger: revoke token: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// Either already revoked (harmless repeat) or never recorded.
		var count int64
		if err := l.db.Model(&models.Token{}).Where("token = ?", tokenString).Count(&count).Error; err != nil {
			return fmt.Errorf("ledger: revoke token: %w", err)
		}
		if count == 0 {
			return ErrTokenNotRecorded
		}
		return nil
	}

	metrics.ActiveTokens.Dec()
	return nil
}
