package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kelechukwu/quick-pickup/controllers"
	"github.com/kelechukwu/quick-pickup/middleware"
	"github.com/kelechukwu/quick-pickup/models"
)

// SetupInventoryRoutes configures inventory and stock ledger routes
func SetupInventoryRoutes(app *fiber.App) {
	inventory := app.Group("/inventory")
	inventory.Get("/", middleware.Protected(), middleware.RequirePermission(models.ResourceInventory, models.PermissionRead), controllers.GetInventory)
	inventory.Post("/items/:itemID/stocks", middleware.Protected(), middleware.RequirePermission(models.ResourceStock, models.PermissionCreate), controllers.AddStock)
	inventory.Patch("/stocks/:stockID", middleware.Protected(), middleware.RequirePermission(models.ResourceStock, models.PermissionUpdate), controllers.UpdateStock)
}
