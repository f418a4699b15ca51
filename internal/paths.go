package internal

import (
	"fmt"
	"os"
	"path/filepath"
)

// DatabaseFile is the store's file name inside the warren home directory.
const DatabaseFile = "warren.db"

// ResolveDatabasePath decides where the store lives. Priority: an explicit
// --db flag value, then the WARREN_HOME environment variable, then
// ~/.warren/warren.db. The directory is created if missing.
func ResolveDatabasePath(custom string) (string, error) {
	if custom != "" {
		dir := filepath.Dir(custom)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create database directory: %w", err)
		}
		return custom, nil
	}

	home := os.Getenv("WARREN_HOME")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		home = filepath.Join(userHome, ".warren")
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("failed to create warren home: %w", err)
	}
	return filepath.Join(home, DatabaseFile), nil
}
