package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// Generates the bcrypt hash the server expects in OPS_TOKEN_HASH. The plain
// token is what operators send in the X-Ops-Token header.
func main() {
	token := os.Getenv("OPS_TOKEN")
	if len(os.Args) > 1 {
		token = os.Args[1]
	}
	if token == "" {
		log.Fatal("Usage: ops-token <plain-token>  (or set OPS_TOKEN)")
	}
	if len(token) < 12 {
		log.Println("WARNING: ops token is short. Use at least 12 characters in production!")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash token: %v", err)
	}

	fmt.Println("Add this to the server environment:")
	fmt.Printf("OPS_TOKEN_HASH=%s\n", string(hash))
}
