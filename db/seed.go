package db

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/kelechukwu/quick-pickup/models"
	"github.com/kelechukwu/quick-pickup/services"
)

// SeedSuperAdmin creates the platform administrator on first boot. Staff,
// owners and guests get their default grants the same way at registration.
func SeedSuperAdmin() {
	email := os.Getenv("SUPER_ADMIN_EMAIL")
	password := os.Getenv("SUPER_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("SUPER_ADMIN_EMAIL/PASSWORD not set, skipping seed")
		return
	}

	var existing models.User
	if DB.Where("email = ?", email).First(&existing).RowsAffected > 0 {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash super admin password: %v", err)
		return
	}

	admin := models.User{
		Email:    email,
		Password: string(hashed),
		FullName: "Platform Admin",
		Role:     models.RoleSuperAdmin,
	}
	services.ApplyDefaultGrants(&admin)

	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("Failed to seed super admin: %v", err)
		return
	}
	log.Println("✅ Super admin seeded")
}
