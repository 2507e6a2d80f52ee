package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kelechukwu/quick-pickup/controllers"
	"github.com/kelechukwu/quick-pickup/middleware"
	"github.com/kelechukwu/quick-pickup/models"
)

// SetupAuthRoutes configures registration and login
func SetupAuthRoutes(app *fiber.App) {
	auth := app.Group("/auth")
	auth.Post("/register/company", controllers.RegisterCompany)
	auth.Post("/register/guest", controllers.RegisterGuest)
	auth.Post("/register/staff", middleware.Protected(), middleware.RequirePermission(models.ResourceUser, models.PermissionCreate), controllers.RegisterStaff)
	auth.Post("/login", controllers.Login)
}
