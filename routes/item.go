package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kelechukwu/quick-pickup/controllers"
	"github.com/kelechukwu/quick-pickup/middleware"
	"github.com/kelechukwu/quick-pickup/models"
)

// SetupItemRoutes configures all catalog related routes
func SetupItemRoutes(app *fiber.App) {
	item := app.Group("/items")
	item.Post("/", middleware.Protected(), middleware.RequirePermission(models.ResourceItem, models.PermissionCreate), controllers.CreateItem)
	item.Get("/", middleware.Protected(), middleware.RequirePermission(models.ResourceItem, models.PermissionRead), controllers.GetItems)
	item.Get("/company/:companyID", middleware.Protected(), middleware.RequirePermission(models.ResourceItem, models.PermissionRead), controllers.GetItems)
	item.Get("/:id", middleware.Protected(), middleware.RequirePermission(models.ResourceItem, models.PermissionRead), controllers.GetItem)
	item.Patch("/:id", middleware.Protected(), middleware.RequirePermission(models.ResourceItem, models.PermissionUpdate), controllers.UpdateItem)
	item.Post("/:id/image", middleware.Protected(), middleware.RequirePermission(models.ResourceItem, models.PermissionUpdate), controllers.UploadItemImage)
	item.Delete("/:id", middleware.Protected(), middleware.RequirePermission(models.ResourceItem, models.PermissionDelete), controllers.DeleteItem)
}
