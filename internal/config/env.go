package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads .env and .env.local when present. Variables already set
// in the process environment win.
func loadEnvFiles() error {
	var errs []error
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", name)
	}
	return errors.Join(errs...)
}
