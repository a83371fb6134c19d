package main

import (
	"context"
	"log"

	"github.com/aussiebroadwan/webtemplate/internal/auth/app"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the environment is authoritative.
	_ = godotenv.Load()

	cfg := app.LoadConfig()

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
