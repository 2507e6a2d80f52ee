package controllers

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/kelechukwu/quick-pickup/db"
	"github.com/kelechukwu/quick-pickup/middleware"
	"github.com/kelechukwu/quick-pickup/models"
	"github.com/kelechukwu/quick-pickup/redis"
	"github.com/kelechukwu/quick-pickup/services"
	"github.com/kelechukwu/quick-pickup/utils"
)

const catalogCacheTTL = 5 * time.Minute

func catalogCacheKey(companyID uint) string {
	return fmt.Sprintf("items:company:%d", companyID)
}

func invalidateCatalogCache(companyID uint) {
	if redis.Client == nil {
		return
	}
	if err := redis.Client.Del(redis.Ctx, catalogCacheKey(companyID)).Err(); err != nil {
		log.Printf("Failed to invalidate catalog cache: %v", err)
	}
}

type itemInput struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Unit         string          `json:"unit"`
	Category     string          `json:"category"`
	ReorderPoint int             `json:"reorder_point"`
}

// CreateItem adds a catalog entry for the caller's company.
func CreateItem(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	input := new(itemInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Name == "" || input.Price.LessThanOrEqual(decimal.Zero) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and a positive price are required",
		})
	}

	item := models.Item{
		CompanyID:    principal.TenantID(),
		Name:         input.Name,
		Description:  input.Description,
		Price:        input.Price,
		Unit:         input.Unit,
		Category:     input.Category,
		ReorderPoint: input.ReorderPoint,
	}
	if err := db.DB.Create(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create item",
		})
	}

	invalidateCatalogCache(item.CompanyID)
	return c.Status(fiber.StatusCreated).JSON(item)
}

// GetItems lists a company's catalog, cache-aside through redis.
func GetItems(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	companyID := principal.TenantID()
	if id, err := c.ParamsInt("companyID"); err == nil && id > 0 {
		// Guests browse a company's menu by id from the QR link.
		companyID = uint(id)
	}

	key := catalogCacheKey(companyID)
	if redis.Client != nil {
		if cached, err := redis.Client.Get(redis.Ctx, key).Result(); err == nil {
			var items []models.Item
			if json.Unmarshal([]byte(cached), &items) == nil {
				return c.JSON(items)
			}
		}
	}

	var items []models.Item
	if err := db.DB.Where("company_id = ?", companyID).Find(&items).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get items",
		})
	}

	if redis.Client != nil {
		if encoded, err := json.Marshal(items); err == nil {
			if err := redis.Client.Set(redis.Ctx, key, encoded, catalogCacheTTL).Err(); err != nil {
				log.Printf("Failed to cache catalog: %v", err)
			}
		}
	}
	return c.JSON(items)
}

// GetItem returns one catalog entry with its stock ledger.
func GetItem(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid item id",
		})
	}

	var item models.Item
	if db.DB.Preload("Stocks").
		Where("company_id = ?", principal.TenantID()).
		First(&item, id).RowsAffected == 0 {
		return serviceError(c, services.ErrNotFound)
	}
	return c.JSON(item)
}

// UpdateItem edits a catalog entry. Changing the price never touches
// existing orders: their line items carry the frozen unit price.
func UpdateItem(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid item id",
		})
	}

	var item models.Item
	if db.DB.Where("company_id = ?", principal.TenantID()).First(&item, id).RowsAffected == 0 {
		return serviceError(c, services.ErrNotFound)
	}

	input := new(itemInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	item.Name = input.Name
	item.Description = input.Description
	item.Price = input.Price
	item.Unit = input.Unit
	item.Category = input.Category
	item.ReorderPoint = input.ReorderPoint
	if err := db.DB.Save(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update item",
		})
	}

	invalidateCatalogCache(item.CompanyID)
	return c.JSON(item)
}

// DeleteItem removes a catalog entry and its ledger.
func DeleteItem(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid item id",
		})
	}

	var item models.Item
	if db.DB.Where("company_id = ?", principal.TenantID()).First(&item, id).RowsAffected == 0 {
		return serviceError(c, services.ErrNotFound)
	}
	if err := db.DB.Delete(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete item",
		})
	}

	invalidateCatalogCache(item.CompanyID)
	return c.SendStatus(fiber.StatusNoContent)
}

// UploadItemImage attaches a catalog image via Cloudinary.
func UploadItemImage(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid item id",
		})
	}

	var item models.Item
	if db.DB.Where("company_id = ?", principal.TenantID()).First(&item, id).RowsAffected == 0 {
		return serviceError(c, services.ErrNotFound)
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image file is required",
		})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot read image file",
		})
	}
	defer file.Close()

	url, err := utils.UploadItemImage(file, fmt.Sprintf("item-%d", item.ID))
	if err != nil {
		log.Printf("Cloudinary upload failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload image",
		})
	}

	item.ImageURL = &url
	if err := db.DB.Model(&item).Update("image_url", url).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save image URL",
		})
	}

	invalidateCatalogCache(item.CompanyID)
	return c.JSON(item)
}
