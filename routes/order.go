package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kelechukwu/quick-pickup/controllers"
	"github.com/kelechukwu/quick-pickup/middleware"
	"github.com/kelechukwu/quick-pickup/models"
)

// SetupOrderRoutes configures all order related routes
func SetupOrderRoutes(app *fiber.App) {
	order := app.Group("/orders")
	order.Post("/", middleware.Protected(), middleware.RequirePermission(models.ResourceOrder, models.PermissionCreate), controllers.CreateOrder)
	order.Get("/", middleware.Protected(), middleware.RequirePermission(models.ResourceOrder, models.PermissionRead), controllers.GetOrders)
	order.Get("/:id", middleware.Protected(), middleware.RequirePermission(models.ResourceOrder, models.PermissionRead), controllers.GetOrder)
	order.Post("/:id/payment-link", middleware.Protected(), middleware.RequirePermission(models.ResourcePayment, models.PermissionRead), controllers.RetryPaymentLink)
	order.Post("/:id/splits", middleware.Protected(), middleware.RequirePermission(models.ResourceOrder, models.PermissionCreate), controllers.SplitBill)
	order.Patch("/:id/status", middleware.Protected(), middleware.RequirePermission(models.ResourceOrder, models.PermissionUpdate), controllers.UpdateOrderStatus)

	// Provider redirect target, unauthenticated by nature.
	app.Get("/payment/callback", controllers.PaymentCallback)
}
