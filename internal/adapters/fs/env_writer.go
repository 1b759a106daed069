package fs

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

// EnvWriterAdapter writes dotenv files with godotenv
type EnvWriterAdapter struct{}

// NewEnvWriterAdapter creates a new EnvWriterAdapter
func NewEnvWriterAdapter() *EnvWriterAdapter {
	return &EnvWriterAdapter{}
}

// WriteEnv merges env into the dotenv file at path; entries already in the
// file that env doesn't mention are kept
func (w *EnvWriterAdapter) WriteEnv(path string, env map[string]string) error {
	merged := map[string]string{}
	if _, err := os.Stat(path); err == nil {
		existing, err := godotenv.Read(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		merged = existing
	}
	for k, v := range env {
		merged[k] = v
	}

	if err := godotenv.Write(merged, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	// godotenv.Write creates the file world-readable; it holds a private key
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	return nil
}

// Ensure EnvWriterAdapter implements EnvWriter
var _ usecase.EnvWriter = (*EnvWriterAdapter)(nil)
