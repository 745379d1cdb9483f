package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/config"
	"github.com/oudaybenrhouma/ghalinino-api/internal/repository/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)

	orders, err := repos.Order.List(context.Background(), 100, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list orders: %v\n", err)
		os.Exit(1)
	}

	if len(orders) == 0 {
		fmt.Println("No orders found in database.")
		return
	}

	for i, order := range orders {
		fmt.Printf("Order #%d:\n", i+1)
		fmt.Printf("  Order Number: %s\n", order.OrderNumber)
		fmt.Printf("  Status: %s\n", order.Status)
		fmt.Printf("  Payment: %s (%s)\n", order.PaymentStatus, order.PaymentMethod)
		fmt.Printf("  Customer: %s\n", order.CustomerName)
		fmt.Printf("  Wholesale: %v\n", order.IsWholesale)
		fmt.Printf("  Total: %.3f DT\n", float64(order.Totals.Total)/1000)
		fmt.Printf("  Governorate: %s\n", order.ShippingAddress.Governorate)
		fmt.Printf("  Created: %s\n", order.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}

	fmt.Printf("Found %d order(s)\n", len(orders))
}
