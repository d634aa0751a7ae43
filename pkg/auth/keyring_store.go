package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "afdscraper"
	keyringPrefix  = "afdian_"
	// keyringIndex holds the list of stored accounts, since the keyring
	// backends cannot enumerate their entries.
	keyringIndex = "index"
)

// KeyringStore implements CredentialStore using the system keychain
type KeyringStore struct{}

// NewKeyringStore creates a keyring-backed store after checking that the
// keyring accepts writes.
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Name implements CredentialStore
func (k *KeyringStore) Name() string {
	return "system keyring"
}

// Store saves credentials to the system keychain
func (k *KeyringStore) Store(creds *Credentials) error {
	if creds == nil || creds.Account == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := keyring.Set(keyringService, keyringPrefix+creds.Account, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	return k.updateIndex(func(accounts []string) []string {
		for _, a := range accounts {
			if a == creds.Account {
				return accounts
			}
		}
		return append(accounts, creds.Account)
	})
}

// Retrieve gets credentials from the system keychain
func (k *KeyringStore) Retrieve(account string) (*Credentials, error) {
	if account == "" {
		return nil, ErrInvalidCredentials
	}

	data, err := keyring.Get(keyringService, keyringPrefix+account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(data), &creds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}
	return &creds, nil
}

// List returns the credentials of every account in the index. Entries that
// disappeared from the keyring are skipped.
func (k *KeyringStore) List() ([]*Credentials, error) {
	accounts, err := k.readIndex()
	if err != nil {
		return nil, err
	}

	list := make([]*Credentials, 0, len(accounts))
	for _, account := range accounts {
		creds, err := k.Retrieve(account)
		if err != nil {
			continue
		}
		list = append(list, creds)
	}
	return list, nil
}

// Delete removes credentials from the system keychain
func (k *KeyringStore) Delete(account string) error {
	if account == "" {
		return ErrInvalidCredentials
	}

	if err := keyring.Delete(keyringService, keyringPrefix+account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	return k.updateIndex(func(accounts []string) []string {
		kept := accounts[:0]
		for _, a := range accounts {
			if a != account {
				kept = append(kept, a)
			}
		}
		return kept
	})
}

// Exists checks if credentials exist in the keychain
func (k *KeyringStore) Exists(account string) bool {
	if account == "" {
		return false
	}
	_, err := keyring.Get(keyringService, keyringPrefix+account)
	return err == nil
}

func (k *KeyringStore) readIndex() ([]string, error) {
	data, err := keyring.Get(keyringService, keyringIndex)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read keyring index: %w", err)
	}

	var accounts []string
	if err := json.Unmarshal([]byte(data), &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse keyring index: %w", err)
	}
	return accounts, nil
}

func (k *KeyringStore) updateIndex(update func([]string) []string) error {
	accounts, err := k.readIndex()
	if err != nil {
		return err
	}
	accounts = update(accounts)

	if len(accounts) == 0 {
		if err := keyring.Delete(keyringService, keyringIndex); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to update keyring index: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("failed to marshal keyring index: %w", err)
	}
	if err := keyring.Set(keyringService, keyringIndex, string(data)); err != nil {
		return fmt.Errorf("failed to update keyring index: %w", err)
	}
	return nil
}
