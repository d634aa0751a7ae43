package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"
)

// Credentials are the afdian login of one account. Account is the phone
// number or e-mail used on the login form.
type Credentials struct {
	Account      string    `json:"account"`
	Password     string    `json:"password"`
	LastModified time.Time `json:"last_modified"`
}

// Complete reports whether both account and password are set
func (c *Credentials) Complete() bool {
	return c != nil && c.Account != "" && c.Password != ""
}

// CredentialStore is the interface for storing and retrieving credentials
type CredentialStore interface {
	// Name identifies the backend in user-facing output
	Name() string

	// Store saves credentials for their account
	Store(creds *Credentials) error

	// Retrieve gets credentials for a specific account
	Retrieve(account string) (*Credentials, error)

	// List returns all stored credentials
	List() ([]*Credentials, error)

	// Delete removes credentials for a specific account
	Delete(account string) error

	// Exists checks if credentials exist for an account
	Exists(account string) bool
}

// Manager handles credential storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a credential manager that tries the system keyring,
// then an encrypted file in the config directory, then the environment.
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a Manager over the given stores, tried in order
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Backends returns the names of the configured stores in lookup order
func (m *Manager) Backends() []string {
	names := make([]string, 0, len(m.stores))
	for _, store := range m.stores {
		names = append(names, store.Name())
	}
	return names
}

// Store saves credentials in the first store that accepts them and returns
// that store's name.
func (m *Manager) Store(creds *Credentials) (string, error) {
	if creds == nil || creds.Account == "" {
		return "", errors.New("account is required")
	}
	if creds.Password == "" {
		return "", errors.New("password is required")
	}

	creds.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(creds)
		if err == nil {
			return store.Name(), nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return "", fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return "", ErrStoreUnavailable
}

// Retrieve gets credentials from the first store that has them
func (m *Manager) Retrieve(account string) (*Credentials, error) {
	for _, store := range m.stores {
		if creds, err := store.Retrieve(account); err == nil && creds != nil {
			return creds, nil
		}
	}
	return nil, fmt.Errorf("%w for account: %s", ErrCredentialsNotFound, account)
}

// RetrieveDefault gets the most recently modified stored credentials
func (m *Manager) RetrieveDefault() (*Credentials, error) {
	all, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ErrCredentialsNotFound
	}
	return all[0], nil
}

// List returns credentials from all stores, newest first. When several stores
// hold the same account the most recently modified copy wins.
func (m *Manager) List() ([]*Credentials, error) {
	byAccount := make(map[string]*Credentials)

	for _, store := range m.stores {
		list, err := store.List()
		if err != nil {
			continue
		}
		for _, creds := range list {
			if existing, ok := byAccount[creds.Account]; !ok || creds.LastModified.After(existing.LastModified) {
				byAccount[creds.Account] = creds
			}
		}
	}

	result := make([]*Credentials, 0, len(byAccount))
	for _, creds := range byAccount {
		result = append(result, creds)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].LastModified.Equal(result[j].LastModified) {
			return result[i].Account < result[j].Account
		}
		return result[i].LastModified.After(result[j].LastModified)
	})

	return result, nil
}

// Delete removes credentials from all stores
func (m *Manager) Delete(account string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		err := store.Delete(account)
		switch {
		case err == nil:
			deleted = true
		case errors.Is(err, ErrCredentialsNotFound), errors.Is(err, ErrStoreUnavailable):
		default:
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("%w for account: %s", ErrCredentialsNotFound, account)
	}
	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "afdscraper")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "afdscraper")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "afdscraper")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "afdscraper")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// Sanitize returns a copy of creds with the password masked
func Sanitize(creds *Credentials) *Credentials {
	if creds == nil {
		return nil
	}
	return &Credentials{
		Account:      creds.Account,
		Password:     maskString(creds.Password),
		LastModified: creds.LastModified,
	}
}

// maskString masks all but the first 2 and last 2 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:2] + "..." + s[len(s)-2:]
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
