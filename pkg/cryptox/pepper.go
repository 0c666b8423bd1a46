package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	pepperMu   sync.Mutex
	pepper     string
	pepperFile string
)

// SetPepperPath configures where the password pepper is stored. Must be
// called before any hashing happens.
func SetPepperPath(file string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepperFile = file
	pepper = ""
}

// GetPepper returns the pepper, loading it from the configured file or
// generating and persisting a fresh one on first use.
func GetPepper() string {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	if pepper != "" {
		return pepper
	}

	loaded, err := loadOrGeneratePepper()
	if err != nil {
		slog.Error("failed to load or generate pepper", slog.Any("err", err))
		os.Exit(1)
	}

	pepper = loaded
	return pepper
}

func loadOrGeneratePepper() (string, error) {
	file := filepath.Clean(pepperFile)
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return "", err
	}

	if data, err := os.ReadFile(file); err == nil {
		return string(data), nil
	} else if !os.IsNotExist(err) {
		return "", err
	}

	buf := make([]byte, argonKeyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	fresh := base64.RawURLEncoding.EncodeToString(buf)

	if err := os.WriteFile(file, []byte(fresh), 0600); err != nil {
		return "", err
	}
	return fresh, nil
}
