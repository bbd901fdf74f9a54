package utils

import "os"

// Getenv reads an environment variable, falling back when it is unset
// or empty.
func Getenv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}
