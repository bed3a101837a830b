package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/twohearts/wedding-api/internal/models"
	"github.com/twohearts/wedding-api/pkg/crypto"
	apperrors "github.com/twohearts/wedding-api/pkg/errors"
)

const registrationCodeLength = 8

var (
	// ErrGroupNotFound indicates the requested invitation group does not exist.
	ErrGroupNotFound = apperrors.New("GROUP_NOT_FOUND", "Group not found", http.StatusNotFound)
	// ErrGuestNotFound indicates the requested guest seat does not exist.
	ErrGuestNotFound = apperrors.New("GUEST_NOT_FOUND", "Guest not found", http.StatusNotFound)
)

// CreateGroupInput describes a new invitation group.
type CreateGroupInput struct {
	Name             string
	RegistrationCode string
	InvitationType   models.InvitationType
	GuestNames       []string
}

// UpdateGroupInput enumerates mutable group and invitation attributes.
type UpdateGroupInput struct {
	Name             *string
	RegistrationCode *string
	InvitationType   *models.InvitationType
	Response         *models.ResponseType
	Requirements     *string
	Locked           *bool
}

// GroupService manages invitation groups and their guest seats.
type GroupService struct {
	db *gorm.DB
}

// NewGroupService constructs a GroupService instance.
func NewGroupService(db *gorm.DB) (*GroupService, error) {
	if db == nil {
		return nil, errors.New("group service: db is required")
	}
	return &GroupService{db: db}, nil
}

// List returns every group with invitation and guests preloaded.
func (s *GroupService) List(ctx context.Context) ([]models.InvitationGroup, error) {
	ctx = ensureContext(ctx)

	var groups []models.InvitationGroup
	err := s.db.WithContext(ctx).
		Preload("Invitation").
		Preload("Guests").
		Order("friendly_name").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("group service: list groups: %w", err)
	}
	return groups, nil
}

// Get fetches one group by id.
func (s *GroupService) Get(ctx context.Context, id string) (*models.InvitationGroup, error) {
	ctx = ensureContext(ctx)

	var group models.InvitationGroup
	err := s.db.WithContext(ctx).
		Preload("Invitation").
		Preload("Guests").
		Take(&group, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("group service: get group: %w", err)
	}
	return &group, nil
}

// FindByRegistrationCode resolves the code printed on an invitation, used
// by the public registration form.
func (s *GroupService) FindByRegistrationCode(ctx context.Context, code string) (*models.InvitationGroup, error) {
	ctx = ensureContext(ctx)

	var group models.InvitationGroup
	err := s.db.WithContext(ctx).
		Preload("Invitation").
		Preload("Guests").
		Where("registration_code = ?", strings.TrimSpace(code)).
		Take(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("registration code does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("group service: find by code: %w", err)
	}
	return &group, nil
}

// Create provisions a group with its invitation and optional guest seats.
// A registration code is generated when none is supplied.
func (s *GroupService) Create(ctx context.Context, input CreateGroupInput) (*models.InvitationGroup, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("group name is required")
	}
	if input.InvitationType == "" {
		return nil, apperrors.NewBadRequest("invitation type is required")
	}

	code := strings.TrimSpace(input.RegistrationCode)
	if code == "" {
		generated, err := crypto.GenerateRegistrationCode(registrationCodeLength)
		if err != nil {
			return nil, fmt.Errorf("group service: generate code: %w", err)
		}
		code = generated
	}

	group := &models.InvitationGroup{
		FriendlyName:     name,
		RegistrationCode: code,
		Invitation: &models.Invitation{
			Type:     input.InvitationType,
			Response: models.ResponseNone,
		},
	}
	for _, guestName := range input.GuestNames {
		guestName = strings.TrimSpace(guestName)
		if guestName == "" {
			continue
		}
		group.Guests = append(group.Guests, models.Guest{Name: guestName})
	}

	if err := s.db.WithContext(ctx).Create(group).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("a group already exists with that name")
		}
		return nil, fmt.Errorf("group service: create group: %w", err)
	}
	return group, nil
}

// Update applies admin edits to a group and its invitation.
func (s *GroupService) Update(ctx context.Context, id string, input UpdateGroupInput) (*models.InvitationGroup, error) {
	ctx = ensureContext(ctx)

	group, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		updates["friendly_name"] = strings.TrimSpace(*input.Name)
	}
	if input.RegistrationCode != nil && strings.TrimSpace(*input.RegistrationCode) != "" {
		updates["registration_code"] = strings.TrimSpace(*input.RegistrationCode)
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(group).Updates(updates).Error; err != nil {
			if isUniqueConstraintError(err) {
				return nil, apperrors.NewConflict("a group already exists with that name")
			}
			return nil, fmt.Errorf("group service: update group: %w", err)
		}
	}

	invUpdates := map[string]any{}
	if input.InvitationType != nil {
		invUpdates["type"] = *input.InvitationType
	}
	if input.Response != nil {
		invUpdates["response"] = *input.Response
	}
	if input.Requirements != nil {
		invUpdates["requirements"] = *input.Requirements
	}
	if input.Locked != nil {
		invUpdates["locked"] = *input.Locked
	}
	if len(invUpdates) > 0 && group.Invitation != nil {
		if err := s.db.WithContext(ctx).Model(group.Invitation).Updates(invUpdates).Error; err != nil {
			return nil, fmt.Errorf("group service: update invitation: %w", err)
		}
	}

	return s.Get(ctx, id)
}

// Delete removes a group with its invitation and guests. Accounts that
// registered against the group survive, detached.
func (s *GroupService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("group_id = ?", id).Update("group_id", nil).Error; err != nil {
			return fmt.Errorf("group service: detach users: %w", err)
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.Guest{}).Error; err != nil {
			return fmt.Errorf("group service: delete guests: %w", err)
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.Invitation{}).Error; err != nil {
			return fmt.Errorf("group service: delete invitation: %w", err)
		}

		result := tx.Delete(&models.InvitationGroup{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("group service: delete group: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrGroupNotFound
		}
		return nil
	})
}

// AddGuest appends a named seat to a group.
func (s *GroupService) AddGuest(ctx context.Context, groupID, name string) (*models.Guest, error) {
	ctx = ensureContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewBadRequest("guest name is required")
	}

	group, err := s.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}

	guest := &models.Guest{GroupID: group.ID, Name: name}
	if err := s.db.WithContext(ctx).Create(guest).Error; err != nil {
		return nil, fmt.Errorf("group service: add guest: %w", err)
	}
	return guest, nil
}

// RemoveGuest deletes a seat from a group.
func (s *GroupService) RemoveGuest(ctx context.Context, groupID, guestID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("id = ? AND group_id = ?", guestID, groupID).
		Delete(&models.Guest{})
	if result.Error != nil {
		return fmt.Errorf("group service: remove guest: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrGuestNotFound
	}
	return nil
}

// LinkGuest claims a seat for a registered user.
func (s *GroupService) LinkGuest(ctx context.Context, groupID, guestID, userID string) error {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).Take(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("group service: look up user: %w", err)
	}

	result := s.db.WithContext(ctx).Model(&models.Guest{}).
		Where("id = ? AND group_id = ?", guestID, groupID).
		Update("user_id", user.ID)
	if result.Error != nil {
		return fmt.Errorf("group service: link guest: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrGuestNotFound
	}
	return nil
}

// UnlinkGuest releases a seat from its user.
func (s *GroupService) UnlinkGuest(ctx context.Context, groupID, guestID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Model(&models.Guest{}).
		Where("id = ? AND group_id = ?", guestID, groupID).
		Update("user_id", nil)
	if result.Error != nil {
		return fmt.Errorf("group service: unlink guest: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrGuestNotFound
	}
	return nil
}
