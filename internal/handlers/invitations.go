package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/twohearts/wedding-api/internal/middleware"
	"github.com/twohearts/wedding-api/internal/services"
	"github.com/twohearts/wedding-api/pkg/errors"
	"github.com/twohearts/wedding-api/pkg/response"
)

// InvitationHandler serves a guest's own invitation and accepts RSVPs.
type InvitationHandler struct {
	invitations *services.InvitationService
}

func NewInvitationHandler(invitations *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

// GET /api/invitation
func (h *InvitationHandler) Get(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	group, err := h.invitations.GetForUser(requestContext(c), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, group)
}

type guestResponseRequest struct {
	GuestID       string  `json:"guest_id" validate:"required,uuid4"`
	IsComing      bool    `json:"is_coming"`
	FirstCourse   *string `json:"first_course_id" validate:"omitempty,uuid4"`
	MainCourse    *string `json:"main_course_id" validate:"omitempty,uuid4"`
	DessertCourse *string `json:"dessert_course_id" validate:"omitempty,uuid4"`
}

type rsvpRequest struct {
	Declined       bool                   `json:"declined"`
	Requirements   string                 `json:"requirements" validate:"omitempty,max=1000"`
	StayingInHouse bool                   `json:"staying_in_house"`
	Guests         []guestResponseRequest `json:"guests" validate:"dive"`
}

// PUT /api/invitation
func (h *InvitationHandler) Submit(c *gin.Context) {
	var req rsvpRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user := middleware.CurrentUser(c)
	if user == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	input := services.RSVPInput{
		Declined:       req.Declined,
		Requirements:   req.Requirements,
		StayingInHouse: req.StayingInHouse,
	}
	for _, gr := range req.Guests {
		input.Guests = append(input.Guests, services.GuestResponse{
			GuestID:       gr.GuestID,
			IsComing:      gr.IsComing,
			FirstCourse:   gr.FirstCourse,
			MainCourse:    gr.MainCourse,
			DessertCourse: gr.DessertCourse,
		})
	}

	if err := h.invitations.SubmitRSVP(requestContext(c), user, input); err != nil {
		response.Error(c, err)
		return
	}

	group, err := h.invitations.GetForUser(requestContext(c), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, group)
}
