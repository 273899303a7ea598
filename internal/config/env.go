package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads environment variables from the first readable .env/.env.local file.
// Existing process environment variables are not overwritten.
func loadEnvFile() (string, error) {
	for _, envPath := range envFiles {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			return "", fmt.Errorf("load %s: %w", envPath, err)
		}
		return envPath, nil
	}
	return "", nil
}
