package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/twohearts/wedding-api/internal/models"
	apperrors "github.com/twohearts/wedding-api/pkg/errors"
)

var (
	// ErrNoInvitation is returned for accounts not attached to a group.
	ErrNoInvitation = apperrors.New("NO_INVITATION", "No invitation is associated with this account", http.StatusNotFound)
	// ErrInvitationLocked rejects RSVP edits after the couple finalises numbers.
	ErrInvitationLocked = apperrors.New("INVITATION_LOCKED", "This invitation can no longer be changed", http.StatusForbidden)
	// ErrInvalidMenuChoice rejects a dish that does not exist or belongs to
	// a different course than the slot it was picked for.
	ErrInvalidMenuChoice = apperrors.New("INVALID_MENU_CHOICE", "Menu choice is not a valid item for that course", http.StatusBadRequest)
)

// GuestResponse carries one guest's attendance and menu picks in an RSVP.
type GuestResponse struct {
	GuestID       string
	IsComing      bool
	FirstCourse   *string
	MainCourse    *string
	DessertCourse *string
}

// RSVPInput is a full invitation response for the caller's group.
type RSVPInput struct {
	Declined       bool
	Requirements   string
	StayingInHouse bool
	Guests         []GuestResponse
}

// InvitationService exposes a user's own invitation and handles RSVPs.
type InvitationService struct {
	db *gorm.DB
}

// NewInvitationService constructs an InvitationService instance.
func NewInvitationService(db *gorm.DB) (*InvitationService, error) {
	if db == nil {
		return nil, errors.New("invitation service: db is required")
	}
	return &InvitationService{db: db}, nil
}

// GetForUser loads the caller's group with invitation and guests.
func (s *InvitationService) GetForUser(ctx context.Context, user *models.User) (*models.InvitationGroup, error) {
	ctx = ensureContext(ctx)

	if user == nil || user.GroupID == nil {
		return nil, ErrNoInvitation
	}

	var group models.InvitationGroup
	err := s.db.WithContext(ctx).
		Preload("Invitation").
		Preload("Guests").
		Take(&group, "id = ?", *user.GroupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoInvitation
	}
	if err != nil {
		return nil, fmt.Errorf("invitation service: load group: %w", err)
	}
	return &group, nil
}

// SubmitRSVP stores the group's response. Declining short-circuits; a
// confirmation updates the invitation details and each guest's attendance
// and menu choices in one transaction.
func (s *InvitationService) SubmitRSVP(ctx context.Context, user *models.User, input RSVPInput) error {
	ctx = ensureContext(ctx)

	group, err := s.GetForUser(ctx, user)
	if err != nil {
		return err
	}
	if group.Invitation == nil {
		return ErrNoInvitation
	}
	if group.Invitation.Locked {
		return ErrInvitationLocked
	}

	if input.Declined {
		err := s.db.WithContext(ctx).Model(group.Invitation).
			Update("response", models.ResponseDeclined).Error
		if err != nil {
			return fmt.Errorf("invitation service: decline: %w", err)
		}
		return nil
	}

	seats := make(map[string]*models.Guest, len(group.Guests))
	for i := range group.Guests {
		seats[group.Guests[i].ID] = &group.Guests[i]
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stayingInHouse := input.StayingInHouse && group.Invitation.Type == models.InvitationHouse

		err := tx.Model(group.Invitation).Updates(map[string]any{
			"response":         models.ResponseConfirmed,
			"requirements":     input.Requirements,
			"staying_in_house": stayingInHouse,
		}).Error
		if err != nil {
			return fmt.Errorf("invitation service: confirm: %w", err)
		}

		for _, gr := range input.Guests {
			seat, ok := seats[gr.GuestID]
			if !ok {
				return ErrGuestNotFound
			}

			updates := map[string]any{"is_coming": gr.IsComing}
			if gr.IsComing {
				if err := checkMenuChoice(tx, gr.FirstCourse, models.CourseStarter); err != nil {
					return err
				}
				if err := checkMenuChoice(tx, gr.MainCourse, models.CourseMain); err != nil {
					return err
				}
				if err := checkMenuChoice(tx, gr.DessertCourse, models.CourseDessert); err != nil {
					return err
				}
				updates["first_course_id"] = gr.FirstCourse
				updates["main_course_id"] = gr.MainCourse
				updates["dessert_course_id"] = gr.DessertCourse
			}
			if err := tx.Model(seat).Updates(updates).Error; err != nil {
				return fmt.Errorf("invitation service: update guest: %w", err)
			}
		}
		return nil
	})
}

// checkMenuChoice verifies the picked dish exists and is served as the
// given course. A nil pick clears the slot and is always accepted.
func checkMenuChoice(tx *gorm.DB, id *string, course models.MenuCourse) error {
	if id == nil || *id == "" {
		return nil
	}

	var count int64
	err := tx.Model(&models.MenuItem{}).
		Where("id = ? AND course = ?", *id, course).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("invitation service: check menu choice: %w", err)
	}
	if count == 0 {
		return ErrInvalidMenuChoice
	}
	return nil
}
