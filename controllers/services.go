package controllers

import (
	"github.com/kelechukwu/quick-pickup/db"
	"github.com/kelechukwu/quick-pickup/services"
)

var (
	orderService *services.OrderService
	stockService *services.StockService
	vault        *services.Vault
)

// InitServices wires the service layer over the shared DB handle. Called
// once from main after db.Init.
func InitServices(v *services.Vault) {
	vault = v
	orderService = services.NewOrderService(
		&services.GormOrderStore{DB: db.DB},
		services.NewGateway(),
		v,
	)
	stockService = services.NewStockService(
		&services.GormStockStore{DB: db.DB},
	)
}

// OrderService exposes the wired order service (the cron sweep reuses it).
func OrderService() *services.OrderService {
	return orderService
}
