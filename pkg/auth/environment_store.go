package auth

import (
	"os"
	"time"
)

const (
	// AccountEnv and PasswordEnv hold read-only credentials
	AccountEnv  = "AFDSCRAPER_ACCOUNT"
	PasswordEnv = "AFDSCRAPER_PASSWORD"
)

// EnvironmentStore implements CredentialStore on top of environment
// variables. It is read-only.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Name implements CredentialStore
func (e *EnvironmentStore) Name() string {
	return "environment"
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(creds *Credentials) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment credentials when account is empty or
// matches AFDSCRAPER_ACCOUNT.
func (e *EnvironmentStore) Retrieve(account string) (*Credentials, error) {
	envAccount := os.Getenv(AccountEnv)
	password := os.Getenv(PasswordEnv)

	if envAccount == "" || password == "" {
		return nil, ErrCredentialsNotFound
	}
	if account != "" && account != envAccount {
		return nil, ErrCredentialsNotFound
	}

	return &Credentials{
		Account:      envAccount,
		Password:     password,
		LastModified: time.Time{},
	}, nil
}

// List returns a single entry if the environment variables are set
func (e *EnvironmentStore) List() ([]*Credentials, error) {
	creds, err := e.Retrieve("")
	if err != nil {
		return []*Credentials{}, nil
	}
	return []*Credentials{creds}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(account string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist for account
func (e *EnvironmentStore) Exists(account string) bool {
	_, err := e.Retrieve(account)
	return err == nil
}
