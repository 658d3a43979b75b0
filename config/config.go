package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv pulls a local .env into the process environment when present.
// Deployed environments set real env vars and ship no .env file.
func LoadEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Printf("load .env: %v", err)
	}
}
