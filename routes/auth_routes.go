package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/taxdesk_backend/controllers"
)

// RegisterAuthRoutes sets up the login, registration and password routes of
// both roles.
func RegisterAuthRoutes(e *echo.Echo, deps *controllers.Deps, authed echo.MiddlewareFunc) {
	authController := controllers.NewAuthController(deps)

	// Admin authentication
	admin := e.Group("/api/admin")
	admin.POST("/register", authController.RegisterAdmin)
	admin.POST("/login", authController.AdminLogin)
	admin.POST("/verify-otp", authController.AdminVerifyOTP)
	admin.POST("/forgot-password", authController.AdminForgotPassword)
	admin.POST("/reset-password", authController.AdminResetPassword)

	// Client authentication
	auth := e.Group("/api/auth")
	auth.POST("/register", authController.RegisterClient)
	auth.POST("/verify-email", authController.VerifyClientEmail)
	auth.POST("/resend-verification", authController.ResendVerification)
	auth.POST("/login", authController.ClientLogin)
	auth.POST("/verify-otp", authController.ClientVerifyOTP)
	auth.POST("/forgot-password", authController.ClientForgotPassword)
	auth.POST("/reset-password", authController.ClientResetPassword)
	auth.POST("/logout", authController.Logout)

	auth.GET("/me", authController.Me, authed)
}
