package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kelechukwu/quick-pickup/controllers"
	"github.com/kelechukwu/quick-pickup/middleware"
	"github.com/kelechukwu/quick-pickup/models"
)

// SetupRBACRoutes configures permission group, grant and tenant config routes
func SetupRBACRoutes(app *fiber.App) {
	rbac := app.Group("/rbac")
	rbac.Post("/groups", middleware.Protected(), middleware.RequirePermission(models.ResourceUser, models.PermissionUpdate), controllers.CreatePermissionGroup)
	rbac.Get("/groups", middleware.Protected(), middleware.RequirePermission(models.ResourceUser, models.PermissionRead), controllers.GetPermissionGroups)
	rbac.Post("/groups/assign", middleware.Protected(), middleware.RequirePermission(models.ResourceUser, models.PermissionUpdate), controllers.AssignUserToGroup)
	rbac.Post("/groups/remove", middleware.Protected(), middleware.RequirePermission(models.ResourceUser, models.PermissionUpdate), controllers.RemoveUserFromGroup)
	rbac.Post("/grants", middleware.Protected(), middleware.RequirePermission(models.ResourceUser, models.PermissionUpdate), controllers.GrantPermission)
	rbac.Get("/permissions/me", middleware.Protected(), controllers.GetEffectivePermissions)

	profile := app.Group("/profile")
	profile.Put("/payment-gateway", middleware.Protected(), middleware.RequirePermission(models.ResourceUser, models.PermissionUpdate), controllers.UpdatePaymentGateway)
}
