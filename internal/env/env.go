package env

import "os"

// Get returns the environment variable for key or defaultValue when unset or empty.
func Get(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Require returns the environment variable for key and reports whether it was set.
func Require(key string) (string, bool) {
	value := os.Getenv(key)
	return value, value != ""
}
