package auth

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestManagerLifecycle(t *testing.T) {
	manager, store := NewMockManager()

	backend, err := manager.Store(&Credentials{Account: "13800000000", Password: "secret-password"})
	require.NoError(t, err)
	assert.Equal(t, "mock", backend)

	creds, err := manager.Retrieve("13800000000")
	require.NoError(t, err)
	assert.Equal(t, "secret-password", creds.Password)
	assert.False(t, creds.LastModified.IsZero())

	list, err := manager.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, manager.Delete("13800000000"))
	assert.Equal(t, 0, store.Count())

	_, err = manager.Retrieve("13800000000")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	err = manager.Delete("13800000000")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestManagerStoreValidation(t *testing.T) {
	manager, _ := NewMockManager()

	_, err := manager.Store(&Credentials{Password: "x"})
	assert.Error(t, err)
	_, err = manager.Store(&Credentials{Account: "a"})
	assert.Error(t, err)
}

func TestManagerFallsBackToNextStore(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("keyring locked")
	working := NewMockStore()
	manager := NewManagerWithStores(broken, working)

	_, err := manager.Store(&Credentials{Account: "a", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, 0, broken.Count())
	assert.Equal(t, 1, working.Count())
	assert.Equal(t, []string{"mock", "mock"}, manager.Backends())
}

func TestManagerListPrefersNewest(t *testing.T) {
	older := NewMockStore()
	newer := NewMockStore()
	now := time.Now()
	require.NoError(t, older.Store(&Credentials{Account: "a", Password: "old", LastModified: now.Add(-time.Hour)}))
	require.NoError(t, newer.Store(&Credentials{Account: "a", Password: "new", LastModified: now}))
	require.NoError(t, newer.Store(&Credentials{Account: "b", Password: "b", LastModified: now.Add(-2 * time.Hour)}))

	manager := NewManagerWithStores(older, newer)
	list, err := manager.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Account)
	assert.Equal(t, "new", list[0].Password)

	def, err := manager.RetrieveDefault()
	require.NoError(t, err)
	assert.Equal(t, "a", def.Account)
}

func TestSanitize(t *testing.T) {
	creds := &Credentials{Account: "13800000000", Password: "a-long-password"}
	masked := Sanitize(creds)

	assert.Equal(t, "13800000000", masked.Account)
	assert.NotEqual(t, creds.Password, masked.Password)
	assert.Equal(t, "********", Sanitize(&Credentials{Password: "short"}).Password)
	assert.Nil(t, Sanitize(nil))
}

func TestEncryptedFileStore(t *testing.T) {
	t.Setenv(PassphraseEnv, "test-passphrase")
	path := filepath.Join(t.TempDir(), "credentials.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	_, err = store.Retrieve("a")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	require.NoError(t, store.Store(&Credentials{Account: "a", Password: "pa"}))
	require.NoError(t, store.Store(&Credentials{Account: "b", Password: "pb"}))

	reopened, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	creds, err := reopened.Retrieve("b")
	require.NoError(t, err)
	assert.Equal(t, "pb", creds.Password)

	list, err := reopened.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, reopened.Delete("a"))
	require.NoError(t, reopened.Delete("b"))
	assert.NoFileExists(t, path)
	assert.False(t, reopened.Exists("a"))
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")

	t.Setenv(PassphraseEnv, "first")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(&Credentials{Account: "a", Password: "p"}))

	t.Setenv(PassphraseEnv, "second")
	other, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	_, err = other.Retrieve("a")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEncryptedFileStoreGeneratesPassphrase(t *testing.T) {
	t.Setenv(PassphraseEnv, "")
	dir := t.TempDir()

	store, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	require.NoError(t, err)
	require.NoError(t, store.Store(&Credentials{Account: "a", Password: "p"}))
	assert.FileExists(t, filepath.Join(dir, ".passphrase"))

	reopened, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	require.NoError(t, err)
	assert.True(t, reopened.Exists("a"))
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore()
	require.NoError(t, err)

	require.NoError(t, store.Store(&Credentials{Account: "a", Password: "pa"}))
	require.NoError(t, store.Store(&Credentials{Account: "b", Password: "pb"}))
	require.NoError(t, store.Store(&Credentials{Account: "a", Password: "pa2"}))

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 2)

	creds, err := store.Retrieve("a")
	require.NoError(t, err)
	assert.Equal(t, "pa2", creds.Password)

	require.NoError(t, store.Delete("a"))
	assert.False(t, store.Exists("a"))
	assert.ErrorIs(t, store.Delete("a"), ErrCredentialsNotFound)

	list, err = store.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Account)
}

func TestEnvironmentStore(t *testing.T) {
	store := NewEnvironmentStore()

	t.Setenv(AccountEnv, "")
	t.Setenv(PasswordEnv, "")
	_, err := store.Retrieve("")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	t.Setenv(AccountEnv, "env-user")
	t.Setenv(PasswordEnv, "env-pass")

	creds, err := store.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, "env-user", creds.Account)
	assert.True(t, store.Exists("env-user"))
	assert.False(t, store.Exists("someone-else"))
	assert.ErrorIs(t, store.Store(creds), ErrStoreUnavailable)
}

func TestShowCredentialGuide(t *testing.T) {
	var buf bytes.Buffer
	ShowCredentialGuide(&buf, []string{"system keyring", "encrypted file"})
	assert.Contains(t, buf.String(), "system keyring, encrypted file")
}
