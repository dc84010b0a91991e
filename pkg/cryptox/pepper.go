package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// pepperLength is the number of random bytes in a generated pepper.
const pepperLength = 32

var (
	pepperMu   sync.Mutex
	pepper     string
	pepperFile = "pepper"
)

// SetPepperPath points the pepper at file and drops any cached value.
func SetPepperPath(file string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepperFile = file
	pepper = ""
}

// LoadPepper reads the pepper file, creating it on first start. Call it at
// startup so an unwritable path is reported before the first hash.
func LoadPepper() error {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	if pepper != "" {
		return nil
	}
	p, err := loadOrGeneratePepper(pepperFile)
	if err != nil {
		return err
	}
	pepper = p
	return nil
}

// GetPepper returns the pepper, loading it if needed. The process exits if
// it cannot be loaded, since no password could be hashed or checked.
func GetPepper() string {
	if err := LoadPepper(); err != nil {
		slog.Error("failed to load or generate pepper", slog.Any("err", err))
		os.Exit(1)
	}

	pepperMu.Lock()
	defer pepperMu.Unlock()
	return pepper
}

func loadOrGeneratePepper(file string) (string, error) {
	path := filepath.Clean(file)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(data) == 0 {
			return "", fmt.Errorf("cryptox: pepper file %s is empty", path)
		}
		return string(data), nil
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("cryptox: read pepper: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", fmt.Errorf("cryptox: create pepper dir: %w", err)
	}

	raw := make([]byte, pepperLength)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	generated := base64.RawURLEncoding.EncodeToString(raw)

	if err := os.WriteFile(path, []byte(generated), 0600); err != nil {
		return "", fmt.Errorf("cryptox: write pepper: %w", err)
	}
	return generated, nil
}
