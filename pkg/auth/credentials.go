// Package auth stores the Riot API key in the system keychain, with an
// environment variable override and an encrypted-file fallback for headless
// machines and CI.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "riotscrape"
	keyringUser    = "riot_api_key"
)

// Environment variables consulted before the keychain, in order.
var envVars = []string{"RIOTSCRAPE_API_KEY", "RIOT_API_KEY"}

var (
	// ErrNoAPIKey indicates no API key is stored anywhere.
	ErrNoAPIKey = errors.New("no Riot API key stored")
	// ErrInvalidAPIKey indicates an empty or malformed key was given.
	ErrInvalidAPIKey = errors.New("invalid Riot API key")
	// ErrKeyringUnavailable indicates the system keychain could not be
	// reached, typically on a headless machine without a secret service.
	ErrKeyringUnavailable = errors.New("system keychain unavailable")
)

// Seams for tests to simulate an unavailable keychain.
var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
)

// Manager resolves and manages the stored Riot API key. The keychain is the
// primary store; when it cannot be reached the key lives in an encrypted
// file instead.
type Manager struct {
	fallbackPath string
}

// NewManager creates a credential manager
func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) fallback() (*EncryptedFileStore, error) {
	path := m.fallbackPath
	if path == "" {
		path = defaultCredentialsPath()
	}
	return NewEncryptedFileStore(path)
}

func defaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "riotscrape", "credentials.enc")
}

// Store saves the API key, to the system keychain when it is reachable and
// to the encrypted file otherwise.
func (m *Manager) Store(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ErrInvalidAPIKey
	}
	if err := keyringSet(keyringService, keyringUser, apiKey); err != nil {
		store, ferr := m.fallback()
		if ferr != nil {
			return fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
		}
		if ferr := store.Store(apiKey); ferr != nil {
			return fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
		}
	}
	return nil
}

// Retrieve returns the API key, preferring the environment over the keychain
// and the keychain over the encrypted file.
func (m *Manager) Retrieve() (string, error) {
	for _, name := range envVars {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			return key, nil
		}
	}

	key, err := keyringGet(keyringService, keyringUser)
	if err == nil {
		return key, nil
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return m.retrieveFallback(ErrNoAPIKey)
	}
	return m.retrieveFallback(fmt.Errorf("%w: %v", ErrKeyringUnavailable, err))
}

// retrieveFallback tries the encrypted file and surfaces cause when it holds
// no key either.
func (m *Manager) retrieveFallback(cause error) (string, error) {
	store, err := m.fallback()
	if err != nil {
		return "", cause
	}
	key, err := store.Retrieve()
	if err != nil {
		return "", cause
	}
	return key, nil
}

// Source reports where Retrieve would find the key: "environment",
// "keychain", "encrypted file" or "none".
func (m *Manager) Source() string {
	for _, name := range envVars {
		if strings.TrimSpace(os.Getenv(name)) != "" {
			return "environment"
		}
	}
	if _, err := keyringGet(keyringService, keyringUser); err == nil {
		return "keychain"
	}
	if store, err := m.fallback(); err == nil && store.Exists() {
		return "encrypted file"
	}
	return "none"
}

// Delete removes the API key from the keychain and the encrypted file
func (m *Manager) Delete() error {
	found := false
	err := keyringDelete(keyringService, keyringUser)
	if err == nil {
		found = true
	} else if !errors.Is(err, keyring.ErrNotFound) {
		err = fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	} else {
		err = nil
	}

	if store, ferr := m.fallback(); ferr == nil {
		if ferr := store.Delete(); ferr == nil {
			found = true
		}
	}

	if err != nil && !found {
		return err
	}
	if !found {
		return ErrNoAPIKey
	}
	return nil
}

// Mask returns a redacted form of an API key suitable for display
func Mask(apiKey string) string {
	if len(apiKey) <= 8 {
		return strings.Repeat("*", len(apiKey))
	}
	return apiKey[:4] + strings.Repeat("*", len(apiKey)-8) + apiKey[len(apiKey)-4:]
}
