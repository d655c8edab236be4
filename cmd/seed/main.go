// Command main seeds the database with demo content for development.
package main

import (
	"log"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
}
