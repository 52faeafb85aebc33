package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/forgo/huddle/api/internal/config"
	"github.com/forgo/huddle/api/internal/database"
	"github.com/forgo/huddle/api/internal/repository"
	"github.com/forgo/huddle/api/pkg/jwt"
)

// dev-token prints a bearer token for an existing account, read from the
// database named by the usual environment variables.
func main() {
	username := flag.String("user", "bob", "Username to issue the token for")
	expMins := flag.Int("exp", 60*24*7, "Token expiration in minutes (default: 7 days)")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Open(database.Config{
		Driver: cfg.Database.Driver,
		URL:    cfg.Database.URL,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close(db) }()

	user, err := repository.NewUserRepository(db).GetByUsername(context.Background(), *username)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading user %q: %v\n", *username, err)
		fmt.Fprintf(os.Stderr, "\nStart the server once with SEED_DATA=true to create demo accounts\n")
		os.Exit(1)
	}

	// Create JWT service with just the private key
	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: *expMins,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating JWT service: %v\n", err)
		fmt.Fprintf(os.Stderr, "\nMake sure you have generated keys with: make keys-generate\n")
		os.Exit(1)
	}

	token, err := jwtService.Sign(jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: user.ID},
		Email:            user.Email,
		Username:         user.UserName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
		os.Exit(1)
	}

	if *outputJSON {
		output := map[string]any{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   *expMins * 60,
			"user_id":      user.ID,
			"username":     user.UserName,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(output)
		return
	}

	expTime := time.Now().Add(time.Duration(*expMins) * time.Minute)
	fmt.Println("Dev Token Generated")
	fmt.Println("===================")
	fmt.Printf("User ID:  %s\n", user.ID)
	fmt.Printf("Username: %s\n", user.UserName)
	fmt.Printf("Expires:  %s\n", expTime.Format(time.RFC3339))
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  curl -H 'Authorization: Bearer %s' http://localhost:8080/account\n", token[:50]+"...")
}
