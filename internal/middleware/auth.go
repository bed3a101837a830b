package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/twohearts/wedding-api/internal/auth"
	"github.com/twohearts/wedding-api/internal/models"
	"github.com/twohearts/wedding-api/pkg/errors"
	"github.com/twohearts/wedding-api/pkg/response"
)

const (
	// TokenHeader carries the bearer token on authenticated requests.
	TokenHeader = "X-API-Token"

	CtxUserKey  = "authUser"
	CtxTokenKey = "authToken"
)

// RequireAuth rejects requests without a usable bearer token. On success
// the resolved account and the raw token are stored on the request context.
func RequireAuth(tokens *iauth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(TokenHeader))
		if token == "" {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		user, err := tokens.Validate(token)
		if err != nil {
			// All validation failures look the same to the caller.
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxUserKey, user)
		c.Set(CtxTokenKey, token)
		c.Next()
	}
}

// RequireAdmin allows only administrator accounts through. It must run
// after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !user.Admin {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated account, or nil outside RequireAuth.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// CurrentToken returns the raw bearer token for the request, if any.
func CurrentToken(c *gin.Context) string {
	value, ok := c.Get(CtxTokenKey)
	if !ok {
		return ""
	}
	token, _ := value.(string)
	return token
}
