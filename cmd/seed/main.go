// Command seed loads sample accounts into the configured database.
//
//	seed -file sample_data.json
//
// The file holds {"users": [{"username": ..., "password": ..., "role": ...}]}.
// Existing usernames are skipped, so it is safe to run repeatedly.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/aussiebroadwan/webtemplate/internal/auth/app"
	"github.com/joho/godotenv"
)

func main() {
	file := flag.String("file", "sample_data.json", "path to the sample data file")
	flag.Parse()

	_ = godotenv.Load()

	if err := run(context.Background(), *file); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open sample data: %w", err)
	}
	defer f.Close()

	application, err := app.New(ctx, app.LoadConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}()

	created, err := application.AuthService().LoadSampleUsers(ctx, f)
	if err != nil {
		return fmt.Errorf("load sample users: %w", err)
	}
	log.Printf("created %d users from %s", created, path)
	return nil
}
