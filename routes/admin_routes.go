package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/taxdesk_backend/controllers"
	"github.com/HSouheill/taxdesk_backend/middleware"
	"github.com/HSouheill/taxdesk_backend/models"
)

// RegisterAdminRoutes sets up the admin profile and client management routes
func RegisterAdminRoutes(e *echo.Echo, deps *controllers.Deps, authed echo.MiddlewareFunc) {
	adminController := controllers.NewAdminController(deps)
	clientController := controllers.NewClientController(deps)

	protected := e.Group("/api/admin")
	protected.Use(authed)
	protected.Use(middleware.RequireRole(models.RoleAdmin))

	// Profile
	protected.GET("/profile", adminController.GetProfile)
	protected.PUT("/profile", adminController.UpdateProfile)
	protected.PUT("/password", adminController.ChangePassword)

	// Clients
	protected.GET("/clients", clientController.ListClients)
	protected.POST("/clients", clientController.CreateClient)
	protected.GET("/clients/:id", clientController.GetClient)
	protected.PUT("/clients/:id", clientController.UpdateClient)
	protected.DELETE("/clients/:id", clientController.DeleteClient)
}
