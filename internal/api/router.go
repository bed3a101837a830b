package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/twohearts/wedding-api/internal/auth"
	"github.com/twohearts/wedding-api/internal/handlers"
	"github.com/twohearts/wedding-api/internal/middleware"
	"github.com/twohearts/wedding-api/internal/services"
)

// Services bundles the domain services the router mounts.
type Services struct {
	Auth        *services.AuthService
	Users       *services.UserService
	Groups      *services.GroupService
	Invitations *services.InvitationService
	Menu        *services.MenuService
}

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(db *gorm.DB, tokens *iauth.TokenService, svcs Services) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token service must be provided")
	}
	if svcs.Auth == nil || svcs.Users == nil || svcs.Groups == nil || svcs.Invitations == nil || svcs.Menu == nil {
		return nil, fmt.Errorf("all services must be provided")
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	r.NoRoute(middleware.NotFoundHandler)

	r.GET("/health", handlers.Health())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(svcs.Auth)
	userHandler := handlers.NewUserHandler(svcs.Users)
	groupHandler := handlers.NewGroupHandler(svcs.Groups)
	invitationHandler := handlers.NewInvitationHandler(svcs.Invitations)
	menuHandler := handlers.NewMenuHandler(svcs.Menu)

	// Public routes
	public := r.Group("/api")
	{
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/login", authHandler.Login)
		public.POST("/auth/verify", authHandler.Verify)
		public.POST("/auth/password/forgot", authHandler.ForgottenPassword)
		public.POST("/auth/password/reset", authHandler.ResetPassword)
		public.GET("/groups/lookup/:code", groupHandler.Lookup)
	}

	// Routes for any signed-in guest
	authed := r.Group("/api", middleware.RequireAuth(tokens))
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.POST("/auth/password/change", authHandler.ChangePassword)

		authed.GET("/users/me", userHandler.Me)
		authed.PATCH("/users/me", userHandler.UpdateMe)

		authed.GET("/invitation", invitationHandler.Get)
		authed.PUT("/invitation", invitationHandler.Submit)

		authed.GET("/menu", menuHandler.List)
		authed.GET("/menu/:id", menuHandler.Get)
	}

	// Administration
	admin := r.Group("/api", middleware.RequireAuth(tokens), middleware.RequireAdmin())
	{
		admin.GET("/users", userHandler.List)
		admin.GET("/users/:id", userHandler.Get)
		admin.PATCH("/users/:id", userHandler.Update)
		admin.DELETE("/users/:id", userHandler.Delete)

		admin.GET("/groups", groupHandler.List)
		admin.POST("/groups", groupHandler.Create)
		admin.GET("/groups/:id", groupHandler.Get)
		admin.PATCH("/groups/:id", groupHandler.Update)
		admin.DELETE("/groups/:id", groupHandler.Delete)
		admin.POST("/groups/:id/guests", groupHandler.AddGuest)
		admin.DELETE("/groups/:id/guests/:guestId", groupHandler.RemoveGuest)
		admin.POST("/groups/:id/guests/:guestId/user", groupHandler.LinkGuest)
		admin.DELETE("/groups/:id/guests/:guestId/user", groupHandler.UnlinkGuest)

		admin.POST("/menu", menuHandler.Create)
		admin.PATCH("/menu/:id", menuHandler.Update)
		admin.DELETE("/menu/:id", menuHandler.Delete)
	}

	return r, nil
}
