package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/twohearts/wedding-api/internal/models"
	"github.com/twohearts/wedding-api/internal/services"
	"github.com/twohearts/wedding-api/pkg/response"
)

// MenuHandler exposes the dish catalog: read access for guests, full CRUD
// for administrators.
type MenuHandler struct {
	menu *services.MenuService
}

func NewMenuHandler(menu *services.MenuService) *MenuHandler {
	return &MenuHandler{menu: menu}
}

// GET /api/menu
func (h *MenuHandler) List(c *gin.Context) {
	items, err := h.menu.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// GET /api/menu/:id
func (h *MenuHandler) Get(c *gin.Context) {
	item, err := h.menu.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

type createMenuItemRequest struct {
	Course         models.MenuCourse `json:"course" validate:"required,oneof=STARTER MAIN DESSERT"`
	Name           string            `json:"name" validate:"required,max=200"`
	Description    string            `json:"description" validate:"omitempty,max=1000"`
	GlutenFree     bool              `json:"gluten_free"`
	Vegetarian     bool              `json:"vegetarian"`
	AdditionalInfo string            `json:"additional_info" validate:"omitempty,max=1000"`
}

// POST /api/menu
func (h *MenuHandler) Create(c *gin.Context) {
	var req createMenuItemRequest
	if !bindAndValidate(c, &req) {
		return
	}

	item, err := h.menu.Create(requestContext(c), services.CreateMenuItemInput{
		Course:         req.Course,
		Name:           req.Name,
		Description:    req.Description,
		GlutenFree:     req.GlutenFree,
		Vegetarian:     req.Vegetarian,
		AdditionalInfo: req.AdditionalInfo,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

type updateMenuItemRequest struct {
	Course         *models.MenuCourse `json:"course" validate:"omitempty,oneof=STARTER MAIN DESSERT"`
	Name           *string            `json:"name" validate:"omitempty,max=200"`
	Description    *string            `json:"description" validate:"omitempty,max=1000"`
	GlutenFree     *bool              `json:"gluten_free"`
	Vegetarian     *bool              `json:"vegetarian"`
	AdditionalInfo *string            `json:"additional_info" validate:"omitempty,max=1000"`
}

// PATCH /api/menu/:id
func (h *MenuHandler) Update(c *gin.Context) {
	var req updateMenuItemRequest
	if !bindAndValidate(c, &req) {
		return
	}

	item, err := h.menu.Update(requestContext(c), c.Param("id"), services.UpdateMenuItemInput{
		Course:         req.Course,
		Name:           req.Name,
		Description:    req.Description,
		GlutenFree:     req.GlutenFree,
		Vegetarian:     req.Vegetarian,
		AdditionalInfo: req.AdditionalInfo,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// DELETE /api/menu/:id
func (h *MenuHandler) Delete(c *gin.Context) {
	if err := h.menu.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "menu item deleted")
}
