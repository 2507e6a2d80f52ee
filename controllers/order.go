package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/kelechukwu/quick-pickup/db"
	"github.com/kelechukwu/quick-pickup/middleware"
	"github.com/kelechukwu/quick-pickup/models"
	"github.com/kelechukwu/quick-pickup/services"
	"github.com/kelechukwu/quick-pickup/utils"
)

// CreateOrder places a guest order against one company's catalog.
func CreateOrder(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	type createOrderInput struct {
		CompanyID  uint                     `json:"company_id"`
		RoomNumber string                   `json:"room_number"`
		Items      []services.LineItemInput `json:"items"`
	}
	input := new(createOrderInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	order, err := orderService.CreateOrder(c.Context(), principal, input.CompanyID, input.RoomNumber, input.Items)
	if err != nil {
		var linkErr *services.PaymentLinkError
		if errors.As(err, &linkErr) && order != nil {
			// The order is durable; only the link is missing. Hand
			// the caller the order so they can retry link generation.
			return c.Status(fiber.StatusCreated).JSON(fiber.Map{
				"order":   order,
				"warning": "Payment link could not be generated yet, retry via /orders/:id/payment-link",
			})
		}
		return serviceError(c, err)
	}

	if order.PaymentURL != nil {
		go func(email, room, total, link string) {
			if err := utils.SendPaymentLinkEmail(email, room, total, link); err != nil {
				log.Printf("Failed to send payment link email: %v", err)
			}
		}(principal.Email, order.RoomNumber, order.TotalAmount.StringFixed(2), *order.PaymentURL)
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

// GetOrders lists orders for the caller: guests see their own, staff and
// owners see their company's.
func GetOrders(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	var orders []models.Order
	query := db.DB.Preload("Items").Preload("Splits").Order("created_at DESC")
	if principal.Role == models.RoleGuest {
		query = query.Where("guest_id = ?", principal.ID)
	} else {
		query = query.Where("company_id = ?", principal.TenantID())
	}
	if err := query.Find(&orders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get orders",
		})
	}
	return c.JSON(orders)
}

// GetOrder returns one order, scoped to the caller's tenant or guest id.
func GetOrder(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid order id",
		})
	}

	var order models.Order
	query := db.DB.Preload("Items").Preload("Splits")
	if principal.Role == models.RoleGuest {
		query = query.Where("guest_id = ?", principal.ID)
	} else {
		query = query.Where("company_id = ?", principal.TenantID())
	}
	if query.First(&order, id).RowsAffected == 0 {
		return serviceError(c, services.ErrNotFound)
	}
	return c.JSON(order)
}

// RetryPaymentLink regenerates the checkout link for a pending order the
// caller can see.
func RetryPaymentLink(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid order id",
		})
	}

	order, err := orderService.RetryPaymentLinkFor(c.Context(), principal, uint(id))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(order)
}

// SplitBill appends bill fragments, each with its own payment link.
func SplitBill(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid order id",
		})
	}

	type splitBillInput struct {
		Splits []services.SplitInput `json:"splits"`
	}
	input := new(splitBillInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if len(input.Splits) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "At least one split is required",
		})
	}

	splits, err := orderService.SplitBill(c.Context(), principal, uint(id), input.Splits)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(splits)
}

// UpdateOrderStatus transitions the fulfilment axis (delivered/canceled).
func UpdateOrderStatus(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid order id",
		})
	}

	type statusInput struct {
		Status models.OrderStatus `json:"status"`
	}
	input := new(statusInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Status != models.OrderDelivered && input.Status != models.OrderCanceled {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Status must be delivered or canceled",
		})
	}

	order, err := orderService.SetOrderStatus(c.Context(), principal, uint(id), input.Status)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(order)
}

// PaymentCallback receives the provider redirect and resolves the payment
// status of the order or split named by the transaction reference. The
// redirect's own status parameter is never trusted; the service re-checks
// the transaction against the provider's verify endpoint.
func PaymentCallback(c *fiber.Ctx) error {
	txRef := c.Query("tx_ref")
	if txRef == "" {
		txRef = c.Query("reference") // Paystack
	}

	kind, id, err := utils.ParseTxRef(txRef)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Malformed transaction reference",
		})
	}

	switch kind {
	case "order":
		order, err := orderService.ConfirmOrderPayment(c.Context(), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"status": string(order.PaymentStatus)})
	case "split":
		split, err := orderService.ConfirmSplitPayment(c.Context(), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"status": string(split.PaymentStatus)})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown transaction reference",
		})
	}
}
