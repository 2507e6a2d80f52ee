package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/kelechukwu/quick-pickup/controllers"
	"github.com/kelechukwu/quick-pickup/cron"
	"github.com/kelechukwu/quick-pickup/db"
	"github.com/kelechukwu/quick-pickup/redis"
	"github.com/kelechukwu/quick-pickup/routes"
	"github.com/kelechukwu/quick-pickup/services"
)

func main() {
	app := fiber.New()
	db.Init()
	db.SeedSuperAdmin()

	if os.Getenv("REDIS_ADDR") != "" {
		redis.InitRedis()
	}

	vault, err := services.NewVaultFromEnv()
	if err != nil {
		log.Fatal("Failed to initialize credential vault: ", err)
	}
	controllers.InitServices(vault)

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Quick Pickup API")
	})
	routes.SetupAuthRoutes(app)
	routes.SetupRBACRoutes(app)
	routes.SetupItemRoutes(app)
	routes.SetupInventoryRoutes(app)
	routes.SetupOrderRoutes(app)

	cron.StartCronJobs(controllers.OrderService())

	app.Listen(":8000")
}
