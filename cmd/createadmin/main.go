package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bukudev/catalog-api/internal/domain/account"
	"github.com/bukudev/catalog-api/internal/domain/apikey"
	"github.com/bukudev/catalog-api/internal/storage/postgres"
	"github.com/bukudev/catalog-api/internal/util"
)

// Admin accounts are provisioned offline on purpose: no HTTP endpoint can
// create or promote one.
func main() {
	name := flag.String("name", "Administrator", "Display name for the admin account")
	email := flag.String("email", "", "Email of the admin account (required)")
	password := flag.String("password", "", "Password of the admin account (required)")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	keyValue, err := util.GenerateAPIKey()
	if err != nil {
		log.Fatalf("Failed to generate API key: %v", err)
	}

	logger, _ := zap.NewDevelopment()
	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()

	repo := postgres.NewAccountRepository(pool, logger)

	acct := &account.Account{
		Name:         *name,
		Email:        *email,
		PasswordHash: string(hash),
		Role:         account.RoleAdmin,
	}

	accountID, keyID, err := repo.CreateWithKey(context.Background(), acct, keyValue, apikey.LabelDefault)
	if err != nil {
		log.Fatalf("Failed to create admin account: %v", err)
	}

	fmt.Printf("Admin account created.\n")
	fmt.Printf("Account ID: %s\n", accountID)
	fmt.Printf("Key ID:     %s\n", keyID)
	fmt.Printf("API Key (SAVE THIS securely!):\n%s\n", keyValue)
}
