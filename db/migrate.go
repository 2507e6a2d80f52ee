package db

import (
	"fmt"
	"log"

	"github.com/kelechukwu/quick-pickup/models"
)

func Migrate() {
	// Initialize DB connection
	Init()

	// Run AutoMigrate only when explicitly called
	err := DB.AutoMigrate(
		&models.User{},
		&models.Grant{},
		&models.PermissionGroup{},
		&models.GroupGrant{},
		&models.Item{},
		&models.Stock{},
		&models.Order{},
		&models.OrderItem{},
		&models.Split{},
	)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	fmt.Println("✅ Migrations applied successfully!")
}
