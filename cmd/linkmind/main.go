package main

import (
	"log"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file

	"github.com/linkmind/linkmind/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ linkmind failed to start: %v", err)
	}
}
