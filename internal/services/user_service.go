package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/twohearts/wedding-api/internal/models"
	apperrors "github.com/twohearts/wedding-api/pkg/errors"
)

// ErrUserNotFound indicates the requested user does not exist.
var ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)

// UpdateUserInput enumerates mutable user attributes. Nil fields are left
// unchanged.
type UpdateUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Admin     *bool
}

// UserService manages account records on behalf of administrators and the
// profile endpoints.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// List returns every account with its group preloaded.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	ctx = ensureContext(ctx)

	var users []models.User
	if err := s.db.WithContext(ctx).Preload("Group").Order("created_at").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("user service: list users: %w", err)
	}
	return users, nil
}

// Get fetches one account by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Preload("Group").Take(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: get user: %w", err)
	}
	return &user, nil
}

// Find searches accounts by name. With orphaned set, only accounts not
// linked to any guest seat are returned (used when assigning seats).
func (s *UserService) Find(ctx context.Context, query string, orphaned bool) ([]models.User, error) {
	ctx = ensureContext(ctx)

	tx := s.db.WithContext(ctx).Model(&models.User{})
	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + q + "%"
		tx = tx.Where("first_name LIKE ? OR last_name LIKE ?", pattern, pattern)
	}
	if orphaned {
		tx = tx.Where("id NOT IN (?)",
			s.db.Model(&models.Guest{}).Select("user_id").Where("user_id IS NOT NULL"))
	}

	var users []models.User
	if err := tx.Order("last_name, first_name").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("user service: find users: %w", err)
	}
	return users, nil
}

// Update applies admin edits to an account. Administrators cannot change
// their own admin flag, so the last admin cannot lock everyone out.
func (s *UserService) Update(ctx context.Context, actor *models.User, id string, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Email != nil && strings.TrimSpace(*input.Email) != "" {
		updates["email"] = strings.TrimSpace(*input.Email)
	}
	if input.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.Admin != nil && (actor == nil || actor.ID != user.ID) {
		updates["admin"] = *input.Admin
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("an account already exists with that email")
		}
		return nil, fmt.Errorf("user service: update user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies self-service edits (no admin flag changes).
func (s *UserService) UpdateProfile(ctx context.Context, user *models.User, input UpdateUserInput) (*models.User, error) {
	input.Admin = nil
	return s.Update(ctx, user, user.ID, input)
}

// Delete removes an account permanently and frees any guest seat it held.
// Issued tokens stay in the ledger; validation revokes them on first use.
func (s *UserService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Guest{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
			return fmt.Errorf("user service: unlink guest: %w", err)
		}

		result := tx.Delete(&models.User{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("user service: delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}
