package auth

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

// brokenKeyring simulates a machine without a secret service.
func brokenKeyring(t *testing.T) {
	t.Helper()
	origSet, origGet, origDelete := keyringSet, keyringGet, keyringDelete
	t.Cleanup(func() {
		keyringSet, keyringGet, keyringDelete = origSet, origGet, origDelete
	})

	unavailable := errors.New("no dbus session")
	keyringSet = func(service, user, password string) error { return unavailable }
	keyringGet = func(service, user string) (string, error) { return "", unavailable }
	keyringDelete = func(service, user string) error { return unavailable }
}

func newFallbackManager(t *testing.T) *Manager {
	t.Helper()
	t.Setenv("RIOTSCRAPE_API_KEY", "")
	t.Setenv("RIOT_API_KEY", "")
	t.Setenv("RIOTSCRAPE_PASSPHRASE", "test-passphrase")
	brokenKeyring(t)
	return &Manager{fallbackPath: filepath.Join(t.TempDir(), "credentials.enc")}
}

func TestRetrievePrefersEnvironment(t *testing.T) {
	t.Setenv("RIOTSCRAPE_API_KEY", "RGAPI-from-env")

	manager := NewManager()
	key, err := manager.Retrieve()
	require.NoError(t, err)
	assert.Equal(t, "RGAPI-from-env", key)
	assert.Equal(t, "environment", manager.Source())
}

func TestRetrieveFallbackEnvVar(t *testing.T) {
	t.Setenv("RIOTSCRAPE_API_KEY", "")
	t.Setenv("RIOT_API_KEY", "RGAPI-fallback")

	key, err := NewManager().Retrieve()
	require.NoError(t, err)
	assert.Equal(t, "RGAPI-fallback", key)
}

func TestStoreRejectsEmptyKey(t *testing.T) {
	err := NewManager().Store("   ")
	assert.ErrorIs(t, err, ErrInvalidAPIKey)
}

func TestStoreFallsBackWhenKeychainUnavailable(t *testing.T) {
	manager := newFallbackManager(t)

	require.NoError(t, manager.Store("RGAPI-stored-key"))

	key, err := manager.Retrieve()
	require.NoError(t, err)
	assert.Equal(t, "RGAPI-stored-key", key)
	assert.Equal(t, "encrypted file", manager.Source())
}

func TestRetrieveReportsKeyringUnavailable(t *testing.T) {
	manager := newFallbackManager(t)

	_, err := manager.Retrieve()
	assert.ErrorIs(t, err, ErrKeyringUnavailable)
}

func TestRetrieveNotFoundChecksEncryptedFile(t *testing.T) {
	manager := newFallbackManager(t)
	keyringGet = func(service, user string) (string, error) { return "", keyring.ErrNotFound }

	_, err := manager.Retrieve()
	assert.ErrorIs(t, err, ErrNoAPIKey)

	store, err := NewEncryptedFileStore(manager.fallbackPath)
	require.NoError(t, err)
	require.NoError(t, store.Store("RGAPI-file-key"))

	key, err := manager.Retrieve()
	require.NoError(t, err)
	assert.Equal(t, "RGAPI-file-key", key)
}

func TestDeleteRemovesEncryptedFile(t *testing.T) {
	manager := newFallbackManager(t)
	require.NoError(t, manager.Store("RGAPI-stored-key"))

	require.NoError(t, manager.Delete())

	_, err := manager.Retrieve()
	assert.ErrorIs(t, err, ErrKeyringUnavailable)
	assert.ErrorIs(t, manager.Delete(), ErrKeyringUnavailable)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "********", Mask("12345678"))
	assert.Equal(t, "RGAP**********6789", Mask("RGAPI-12345-6789"))
	assert.Equal(t, "", Mask(""))
}
