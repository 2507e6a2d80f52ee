package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/kelechukwu/quick-pickup/services"
	"github.com/kelechukwu/quick-pickup/utils"
)

// serviceError translates a service-layer error into the user-facing
// response. This is the single recovery point; everything below the
// controllers lets errors propagate unmodified.
func serviceError(c *fiber.Ctx, err error) error {
	var credentialErr *services.CredentialError
	var linkErr *services.PaymentLinkError

	switch {
	case errors.Is(err, services.ErrPermissionDenied):
		return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
			Message: "You don't have permission to perform this action",
			Error:   err.Error(),
		})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Record not found",
			Error:   err.Error(),
		})
	case errors.Is(err, services.ErrInvalidPaymentConfig):
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Configure a payment provider first",
			Error:   err.Error(),
		})
	case errors.Is(err, services.ErrUnsupportedProvider):
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Unsupported payment provider",
			Error:   err.Error(),
		})
	case errors.Is(err, services.ErrOrderClosed):
		return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{
			Message: "Order is closed",
			Error:   err.Error(),
		})
	case errors.Is(err, services.ErrTerminalState):
		return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{
			Message: "Status can no longer change",
			Error:   err.Error(),
		})
	case errors.As(err, &credentialErr):
		// Configuration fault for the tenant; the response never carries
		// the stored secret or its ciphertext.
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Payment configuration could not be read",
			Error:   "credential vault failure",
		})
	case errors.As(err, &linkErr):
		return c.Status(fiber.StatusBadGateway).JSON(utils.ErrorResponse{
			Message: "Payment provider is unavailable, retry link generation",
			Error:   err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Something went wrong",
			Error:   err.Error(),
		})
	}
}
