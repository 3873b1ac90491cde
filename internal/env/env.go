// Package env loads project configuration from the environment.
package env

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnvironmentVariables loads the .env file or crashes the program with an error
func LoadEnvironmentVariables() {
	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, ".env error: %s\n", err)
		os.Exit(1)
	}
}

// Get reads an environment variable, falling back to a default when unset.
func Get(name string, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}

	return fallback
}

// Require reads an environment variable or crashes the program with an error.
func Require(name string) string {
	value := os.Getenv(name)

	if value == "" {
		fmt.Fprintf(os.Stderr, "No %s variable set!\n", name)
		os.Exit(1)
	}

	return value
}
