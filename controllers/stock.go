package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kelechukwu/quick-pickup/db"
	"github.com/kelechukwu/quick-pickup/middleware"
	"github.com/kelechukwu/quick-pickup/models"
)

// GetInventory lists the catalog with running quantities for the company.
func GetInventory(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	var items []models.Item
	err := db.DB.Where("company_id = ?", principal.TenantID()).
		Order("name").
		Find(&items).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get inventory",
		})
	}
	return c.JSON(items)
}

// AddStock appends a signed movement to an item's ledger.
func AddStock(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	itemID, err := c.ParamsInt("itemID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid item id",
		})
	}

	type addStockInput struct {
		Quantity int    `json:"quantity"`
		Notes    string `json:"notes"`
	}
	input := new(addStockInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Quantity == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Quantity must be non-zero",
		})
	}

	movement, err := stockService.AddStock(c.Context(), principal, uint(itemID), input.Quantity, input.Notes)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movement)
}

// UpdateStock overwrites one movement's quantity; the item total absorbs
// the delta.
func UpdateStock(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	stockID, err := c.ParamsInt("stockID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid stock id",
		})
	}

	type updateStockInput struct {
		Quantity int `json:"quantity"`
	}
	input := new(updateStockInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	movement, err := stockService.UpdateStock(c.Context(), principal, uint(stockID), input.Quantity)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(movement)
}
