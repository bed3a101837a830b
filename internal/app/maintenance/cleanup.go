package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/twohearts/wedding-api/internal/models"
	"github.com/twohearts/wedding-api/pkg/logger"
)

const defaultSchedule = "@daily"

// Cleaner clears expired signed codes from account rows on a schedule.
// Bearer tokens are deliberately left alone: the revocation ledger must
// keep every issued token so validation stays fail-closed.
type Cleaner struct {
	db       *gorm.DB
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger
	maxAge   time.Duration
	schedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithSchedule overrides the cron specification.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. maxAge is how long a signed code stays
// valid; stored codes older than that are dead weight and get cleared.
func NewCleaner(db *gorm.DB, maxAge time.Duration, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:       db,
		now:      time.Now,
		maxAge:   maxAge,
		schedule: defaultSchedule,
		log:      logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return cleaner
}

// Start registers the cleanup job and launches the scheduler.
func (c *Cleaner) Start() error {
	if c.db == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if _, err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("code cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for any running job to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// CleanupStats captures how many account rows were touched.
type CleanupStats struct {
	RecoveryCodes int64
}

// RunOnce clears expired recovery codes immediately. Used by the scheduled
// job and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) (CleanupStats, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		stats CleanupStats
		errs  error
	)

	cutoff := c.now().Add(-c.maxAge)

	result := c.db.WithContext(ctx).Model(&models.User{}).
		Where("recovery_code IS NOT NULL AND recovery_generated_on < ?", cutoff).
		Updates(map[string]any{
			"recovery_code":         nil,
			"recovery_generated_on": nil,
		})
	if result.Error != nil {
		errs = multierr.Append(errs, result.Error)
	} else {
		stats.RecoveryCodes = result.RowsAffected
	}

	if stats.RecoveryCodes > 0 {
		c.log.Info("cleared expired recovery codes", zap.Int64("count", stats.RecoveryCodes))
	}

	return stats, errs
}
