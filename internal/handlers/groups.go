package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/twohearts/wedding-api/internal/models"
	"github.com/twohearts/wedding-api/internal/services"
	"github.com/twohearts/wedding-api/pkg/response"
)

// GroupHandler exposes invitation group administration plus the public
// registration code lookup.
type GroupHandler struct {
	groups *services.GroupService
}

func NewGroupHandler(groups *services.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// GET /api/groups
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groups.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, groups)
}

// GET /api/groups/:id
func (h *GroupHandler) Get(c *gin.Context) {
	group, err := h.groups.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, group)
}

// GET /api/groups/lookup/:code
//
// Public endpoint used by the registration form to preview the invitation
// behind a code.
func (h *GroupHandler) Lookup(c *gin.Context) {
	group, err := h.groups.FindByRegistrationCode(requestContext(c), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}

	guests := make([]gin.H, 0, len(group.Guests))
	for _, guest := range group.Guests {
		guests = append(guests, gin.H{
			"id":      guest.ID,
			"name":    guest.Name,
			"claimed": guest.UserID != nil,
		})
	}

	response.Success(c, http.StatusOK, gin.H{
		"name":   group.FriendlyName,
		"guests": guests,
	})
}

type createGroupRequest struct {
	Name             string                `json:"name" validate:"required,max=200"`
	RegistrationCode string                `json:"registration_code" validate:"omitempty,min=4,max=16"`
	InvitationType   models.InvitationType `json:"invitation_type" validate:"required,oneof=HOUSE WEEKEND DAY"`
	GuestNames       []string              `json:"guest_names"`
}

// POST /api/groups
func (h *GroupHandler) Create(c *gin.Context) {
	var req createGroupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	group, err := h.groups.Create(requestContext(c), services.CreateGroupInput{
		Name:             req.Name,
		RegistrationCode: req.RegistrationCode,
		InvitationType:   req.InvitationType,
		GuestNames:       req.GuestNames,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, group)
}

type updateGroupRequest struct {
	Name             *string                `json:"name" validate:"omitempty,max=200"`
	RegistrationCode *string                `json:"registration_code" validate:"omitempty,min=4,max=16"`
	InvitationType   *models.InvitationType `json:"invitation_type" validate:"omitempty,oneof=HOUSE WEEKEND DAY"`
	Response         *models.ResponseType   `json:"response" validate:"omitempty,oneof=NO_RESPONSE CONFIRMED DECLINED"`
	Requirements     *string                `json:"requirements" validate:"omitempty,max=1000"`
	Locked           *bool                  `json:"locked"`
}

// PATCH /api/groups/:id
func (h *GroupHandler) Update(c *gin.Context) {
	var req updateGroupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	group, err := h.groups.Update(requestContext(c), c.Param("id"), services.UpdateGroupInput{
		Name:             req.Name,
		RegistrationCode: req.RegistrationCode,
		InvitationType:   req.InvitationType,
		Response:         req.Response,
		Requirements:     req.Requirements,
		Locked:           req.Locked,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, group)
}

// DELETE /api/groups/:id
func (h *GroupHandler) Delete(c *gin.Context) {
	if err := h.groups.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "group deleted")
}

type addGuestRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// POST /api/groups/:id/guests
func (h *GroupHandler) AddGuest(c *gin.Context) {
	var req addGuestRequest
	if !bindAndValidate(c, &req) {
		return
	}

	guest, err := h.groups.AddGuest(requestContext(c), c.Param("id"), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, guest)
}

// DELETE /api/groups/:id/guests/:guestId
func (h *GroupHandler) RemoveGuest(c *gin.Context) {
	if err := h.groups.RemoveGuest(requestContext(c), c.Param("id"), c.Param("guestId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "guest removed")
}

type linkGuestRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
}

// POST /api/groups/:id/guests/:guestId/user
func (h *GroupHandler) LinkGuest(c *gin.Context) {
	var req linkGuestRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.groups.LinkGuest(requestContext(c), c.Param("id"), c.Param("guestId"), req.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "guest linked")
}

// DELETE /api/groups/:id/guests/:guestId/user
func (h *GroupHandler) UnlinkGuest(c *gin.Context) {
	if err := h.groups.UnlinkGuest(requestContext(c), c.Param("id"), c.Param("guestId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "guest unlinked")
}
