package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"dynamocards-backend/utils"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Issues a bearer token for the analysis API signed with API_JWT_SECRET.
func main() {
	name := flag.String("name", "", "name recorded in the token")
	ttl := flag.Duration("ttl", 30*24*time.Hour, "token lifetime")
	flag.Parse()

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Error loading .env file: %v", err)
		}
	}

	secret := os.Getenv("API_JWT_SECRET")
	if secret == "" {
		log.Fatal("API_JWT_SECRET is not set; the API is open and needs no token")
	}

	subject := uuid.NewString()
	token, err := utils.GenerateJWT(subject, *name, secret, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Fprintf(os.Stderr, "Subject: %s\nExpires: %s\n", subject, time.Now().Add(*ttl).Format(time.RFC3339))
	fmt.Println(token)
}
