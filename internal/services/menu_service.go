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

// ErrMenuItemNotFound indicates the requested dish does not exist.
var ErrMenuItemNotFound = apperrors.New("MENU_ITEM_NOT_FOUND", "Menu item not found", http.StatusNotFound)

// CreateMenuItemInput describes a new dish.
type CreateMenuItemInput struct {
	Course         models.MenuCourse
	Name           string
	Description    string
	GlutenFree     bool
	Vegetarian     bool
	AdditionalInfo string
}

// UpdateMenuItemInput enumerates mutable dish attributes.
type UpdateMenuItemInput struct {
	Course         *models.MenuCourse
	Name           *string
	Description    *string
	GlutenFree     *bool
	Vegetarian     *bool
	AdditionalInfo *string
}

// MenuService manages the dish catalog guests choose from.
type MenuService struct {
	db *gorm.DB
}

// NewMenuService constructs a MenuService instance.
func NewMenuService(db *gorm.DB) (*MenuService, error) {
	if db == nil {
		return nil, errors.New("menu service: db is required")
	}
	return &MenuService{db: db}, nil
}

// List returns the full catalog grouped by course order.
func (s *MenuService) List(ctx context.Context) ([]models.MenuItem, error) {
	ctx = ensureContext(ctx)

	var items []models.MenuItem
	if err := s.db.WithContext(ctx).Order("course, name").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("menu service: list items: %w", err)
	}
	return items, nil
}

// Get fetches one dish by id.
func (s *MenuService) Get(ctx context.Context, id string) (*models.MenuItem, error) {
	ctx = ensureContext(ctx)

	var item models.MenuItem
	err := s.db.WithContext(ctx).Take(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMenuItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("menu service: get item: %w", err)
	}
	return &item, nil
}

// Create adds a dish to the catalog.
func (s *MenuService) Create(ctx context.Context, input CreateMenuItemInput) (*models.MenuItem, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewBadRequest("menu item name is required")
	}
	if input.Course == "" {
		return nil, apperrors.NewBadRequest("course is required")
	}

	item := &models.MenuItem{
		Course:         input.Course,
		Name:           strings.TrimSpace(input.Name),
		Description:    strings.TrimSpace(input.Description),
		GlutenFree:     input.GlutenFree,
		Vegetarian:     input.Vegetarian,
		AdditionalInfo: strings.TrimSpace(input.AdditionalInfo),
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, fmt.Errorf("menu service: create item: %w", err)
	}
	return item, nil
}

// Update applies edits to a dish.
func (s *MenuService) Update(ctx context.Context, id string, input UpdateMenuItemInput) (*models.MenuItem, error) {
	ctx = ensureContext(ctx)

	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Course != nil {
		updates["course"] = *input.Course
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.GlutenFree != nil {
		updates["gluten_free"] = *input.GlutenFree
	}
	if input.Vegetarian != nil {
		updates["vegetarian"] = *input.Vegetarian
	}
	if input.AdditionalInfo != nil {
		updates["additional_info"] = strings.TrimSpace(*input.AdditionalInfo)
	}

	if len(updates) == 0 {
		return item, nil
	}

	if err := s.db.WithContext(ctx).Model(item).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("menu service: update item: %w", err)
	}
	return item, nil
}

// Delete removes a dish. Guest choices referencing it are cleared.
func (s *MenuService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, column := range []string{"first_course_id", "main_course_id", "dessert_course_id"} {
			if err := tx.Model(&models.Guest{}).Where(column+" = ?", id).Update(column, nil).Error; err != nil {
				return fmt.Errorf("menu service: clear guest choices: %w", err)
			}
		}

		result := tx.Delete(&models.MenuItem{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("menu service: delete item: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrMenuItemNotFound
		}
		return nil
	})
}
