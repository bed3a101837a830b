package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/twohearts/wedding-api/internal/middleware"
	"github.com/twohearts/wedding-api/internal/models"
	"github.com/twohearts/wedding-api/internal/services"
	"github.com/twohearts/wedding-api/pkg/errors"
	"github.com/twohearts/wedding-api/pkg/response"
)

// AuthHandler manages the account flows: registration, login/logout, email
// verification, and password change/recovery.
type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8"`
	FirstName        string `json:"first_name" validate:"required,max=100"`
	LastName         string `json:"last_name" validate:"required,max=100"`
	RegistrationCode string `json:"registration_code" validate:"required"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.auth.Register(requestContext(c), services.RegisterInput{
		Email:            req.Email,
		Password:         req.Password,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		RegistrationCode: req.RegistrationCode,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, userPayload(user))
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	token, user, err := h.auth.Login(requestContext(c), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user":  userPayload(user),
	})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.CurrentToken(c)
	if token == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.auth.Logout(requestContext(c), token); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "logged out")
}

type verifyRequest struct {
	Code string `json:"code" validate:"required"`
}

// POST /api/auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.auth.VerifyEmail(requestContext(c), req.Code); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "email verified")
}

type forgottenPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// POST /api/auth/password/forgot
//
// Replies with the same success message whether or not the email matches
// an account.
func (h *AuthHandler) ForgottenPassword(c *gin.Context) {
	var req forgottenPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.auth.ForgottenPassword(requestContext(c), req.Email); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "a recovery code has been sent if the account exists")
}

type resetPasswordRequest struct {
	Code     string `json:"code" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// POST /api/auth/password/reset
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.auth.ResetPassword(requestContext(c), req.Code, req.Password); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "password updated")
}

type changePasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// POST /api/auth/password/change
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user := middleware.CurrentUser(c)
	if user == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.auth.ChangePassword(requestContext(c), user, req.Password); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "password updated")
}

func userPayload(user *models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"admin":      user.Admin,
		"verified":   user.Verified,
		"group_id":   user.GroupID,
	}
}
