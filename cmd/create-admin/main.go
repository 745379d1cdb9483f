package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/oudaybenrhouma/ghalinino-api/internal/config"
	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/internal/repository/postgres"
)

// Creates a back-office admin account:
//
//	go run cmd/create-admin/main.go admin@shop.tn "Admin Name" password
func main() {
	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "Usage: create-admin <email> <full name> <password>")
		os.Exit(1)
	}
	email, fullName, password := os.Args[1], os.Args[2], os.Args[3]

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

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
		os.Exit(1)
	}

	admin := &domain.Customer{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		IsAdmin:      true,
		Wholesale:    domain.WholesaleProfile{Status: domain.WholesaleStatusNone},
	}
	if err := repos.Customer.Create(context.Background(), admin); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create admin: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Admin account created: %s (%s)\n", email, admin.ID)
}
