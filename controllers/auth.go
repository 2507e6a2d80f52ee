package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/kelechukwu/quick-pickup/db"
	"github.com/kelechukwu/quick-pickup/middleware"
	"github.com/kelechukwu/quick-pickup/models"
	"github.com/kelechukwu/quick-pickup/services"
)

type registerInput struct {
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	FullName    string      `json:"full_name"`
	CompanyName string      `json:"company_name"`
	Role        models.Role `json:"role"`
}

// RegisterCompany creates a hotel-owner principal. The owner row is the
// company; staff point at it through company_id.
func RegisterCompany(c *fiber.Ctx) error {
	input := new(registerInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Email == "" || input.Password == "" || input.CompanyName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	user := models.User{
		Email:       input.Email,
		FullName:    input.FullName,
		CompanyName: &input.CompanyName,
		Role:        models.RoleHotelOwner,
	}
	return createUser(c, &user, input.Password)
}

// RegisterGuest creates a guest principal with the guest default grants.
func RegisterGuest(c *fiber.Ctx) error {
	input := new(registerInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Email == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	user := models.User{
		Email:    input.Email,
		FullName: input.FullName,
		Role:     models.RoleGuest,
	}
	return createUser(c, &user, input.Password)
}

// RegisterStaff lets an owner create a staff principal inside their company.
// Requires (user, create); the staff row always carries the company ref.
func RegisterStaff(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	input := new(registerInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Email == "" || input.Password == "" || input.Role == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}
	switch input.Role {
	case models.RoleManager, models.RoleChef, models.RoleWaiter, models.RoleLaundryAttendant:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid staff role",
		})
	}

	companyID := principal.TenantID()
	user := models.User{
		Email:     input.Email,
		FullName:  input.FullName,
		Role:      input.Role,
		CompanyID: &companyID,
	}
	return createUser(c, &user, input.Password)
}

func createUser(c *fiber.Ctx, user *models.User, password string) error {
	var existingUser models.User
	if db.DB.Where("email = ?", user.Email).First(&existingUser).RowsAffected > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "User with this email already exists",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to hash password",
		})
	}
	user.Password = string(hashedPassword)

	// Default grants are applied exactly once, at creation.
	services.ApplyDefaultGrants(user)

	if err := db.DB.Create(user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create user: " + err.Error(),
		})
	}

	user.Password = ""
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login handles user authentication
func Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var user models.User
	if db.DB.Where("email = ?", input.Email).First(&user).RowsAffected == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	claims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(time.Hour * 24).Unix(),
	}
	if user.CompanyID != nil {
		claims["company_id"] = *user.CompanyID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(middleware.JWTSecret()))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to sign token",
		})
	}

	user.Password = ""
	return c.JSON(fiber.Map{
		"token": signed,
		"user":  user,
	})
}
