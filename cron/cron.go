package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kelechukwu/quick-pickup/services"
)

// StartCronJobs initializes and starts the scheduler for payment link retries
func StartCronJobs(orderService *services.OrderService) {
	fmt.Println("Starting cron job scheduler...")
	c := cron.New()
	// Orders persist even when the provider call fails; sweep them up and
	// retry link generation every five minutes.
	_, err := c.AddFunc("*/5 * * * *", func() { retryPendingPaymentLinks(orderService) })
	if err != nil {
		log.Fatalf("Failed to add cron job: %v", err)
	}
	c.Start()
	log.Println("Cron job scheduler started for payment link retries")
}

// retryPendingPaymentLinks finds pending orders with no payment URL and
// regenerates their checkout links. A retry failure just leaves the order
// for the next sweep.
func retryPendingPaymentLinks(orderService *services.OrderService) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	orders, err := orderService.Store.PendingWithoutLink(ctx, 50)
	if err != nil {
		log.Printf("Error fetching orders for link retry: %v", err)
		return
	}
	if len(orders) == 0 {
		return
	}

	fmt.Printf("Found %d orders awaiting payment links\n", len(orders))

	for _, order := range orders {
		if _, err := orderService.RetryPaymentLink(ctx, order.ID); err != nil {
			log.Printf("Failed to retry payment link for order %d: %v", order.ID, err)
			continue
		}
		log.Printf("Generated payment link for order %d", order.ID)
	}
}
