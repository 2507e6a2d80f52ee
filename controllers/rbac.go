package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kelechukwu/quick-pickup/db"
	"github.com/kelechukwu/quick-pickup/middleware"
	"github.com/kelechukwu/quick-pickup/models"
	"github.com/kelechukwu/quick-pickup/services"
)

type grantInput struct {
	Resource   models.Resource   `json:"resource"`
	Permission models.Permission `json:"permission"`
}

// CreatePermissionGroup creates a company-owned grant bundle.
func CreatePermissionGroup(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	type groupInput struct {
		Name        string       `json:"name"`
		Description string       `json:"description"`
		Grants      []grantInput `json:"grants"`
	}
	input := new(groupInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Group name is required",
		})
	}

	group := models.PermissionGroup{
		Name:        input.Name,
		Description: input.Description,
		CompanyID:   principal.TenantID(),
	}
	for _, grant := range input.Grants {
		group.Grants = append(group.Grants, models.GroupGrant{
			Resource:   grant.Resource,
			Permission: grant.Permission,
		})
	}

	if err := db.DB.Create(&group).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create permission group",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

// GetPermissionGroups lists the company's groups.
func GetPermissionGroups(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	var groups []models.PermissionGroup
	err := db.DB.Preload("Grants").
		Where("company_id = ?", principal.TenantID()).
		Find(&groups).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get permission groups",
		})
	}
	return c.JSON(groups)
}

// AssignUserToGroup adds a staff member to a group. The group keeps its own
// life; removing the member later never deletes it.
func AssignUserToGroup(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	type assignInput struct {
		UserID  uint `json:"user_id"`
		GroupID uint `json:"group_id"`
	}
	input := new(assignInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var group models.PermissionGroup
	if db.DB.Where("company_id = ?", principal.TenantID()).
		First(&group, input.GroupID).RowsAffected == 0 {
		return serviceError(c, services.ErrNotFound)
	}

	var user models.User
	if db.DB.Where("company_id = ?", principal.TenantID()).
		First(&user, input.UserID).RowsAffected == 0 {
		return serviceError(c, services.ErrNotFound)
	}

	if err := db.DB.Model(&user).Association("PermissionGroups").Append(&group); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to assign user to group",
		})
	}
	return c.JSON(fiber.Map{"message": "User assigned to group"})
}

// RemoveUserFromGroup detaches a member; the group survives.
func RemoveUserFromGroup(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	type removeInput struct {
		UserID  uint `json:"user_id"`
		GroupID uint `json:"group_id"`
	}
	input := new(removeInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var group models.PermissionGroup
	if db.DB.Where("company_id = ?", principal.TenantID()).
		First(&group, input.GroupID).RowsAffected == 0 {
		return serviceError(c, services.ErrNotFound)
	}

	var user models.User
	if db.DB.Where("company_id = ?", principal.TenantID()).
		First(&user, input.UserID).RowsAffected == 0 {
		return serviceError(c, services.ErrNotFound)
	}

	if err := db.DB.Model(&user).Association("PermissionGroups").Delete(&group); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to remove user from group",
		})
	}
	return c.JSON(fiber.Map{"message": "User removed from group"})
}

// GrantPermission adds an individual (resource, permission) pair to a staff
// member of the caller's company.
func GrantPermission(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	type grantUserInput struct {
		UserID     uint              `json:"user_id"`
		Resource   models.Resource   `json:"resource"`
		Permission models.Permission `json:"permission"`
	}
	input := new(grantUserInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var user models.User
	if db.DB.Where("company_id = ?", principal.TenantID()).
		First(&user, input.UserID).RowsAffected == 0 {
		return serviceError(c, services.ErrNotFound)
	}

	grant := models.Grant{
		UserID:     user.ID,
		Resource:   input.Resource,
		Permission: input.Permission,
	}
	if err := db.DB.Create(&grant).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Grant already exists or could not be created",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(grant)
}

// GetEffectivePermissions returns the caller's deduplicated permission set.
// Needs only authentication, not any particular permission.
func GetEffectivePermissions(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "No authenticated user",
		})
	}

	var user models.User
	err := db.DB.Preload("Grants").Preload("PermissionGroups.Grants").
		First(&user, userID).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load permissions",
		})
	}
	return c.JSON(services.EffectivePermissions(&user))
}

// UpdatePaymentGateway stores the tenant's provider tag and secrets. Both
// secrets go through the vault before they touch the database.
func UpdatePaymentGateway(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	type gatewayInput struct {
		Provider models.PaymentProvider `json:"provider"`
		Key      string                 `json:"key"`
		Secret   string                 `json:"secret"`
	}
	input := new(gatewayInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Provider != models.ProviderFlutterwave && input.Provider != models.ProviderPaystack {
		return serviceError(c, services.ErrUnsupportedProvider)
	}
	if input.Secret == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Provider secret is required",
		})
	}

	encryptedKey, err := vault.Encrypt(input.Key)
	if err != nil {
		return serviceError(c, err)
	}
	encryptedSecret, err := vault.Encrypt(input.Secret)
	if err != nil {
		return serviceError(c, err)
	}

	err = db.DB.Model(&models.User{}).
		Where("id = ?", principal.TenantID()).
		Updates(map[string]any{
			"payment_gateway_provider":         input.Provider,
			"payment_gateway_encrypted_key":    encryptedKey,
			"payment_gateway_encrypted_secret": encryptedSecret,
		}).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save payment gateway",
		})
	}
	return c.JSON(fiber.Map{"message": "Payment gateway updated"})
}
