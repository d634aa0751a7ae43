package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Provider supplies missing credential fields. Fill leaves fields that are
// already set untouched and returns ErrCredentialsNotFound when it has
// nothing to offer.
type Provider interface {
	Fill(creds *Credentials) error
}

// StaticProvider fills credentials from fixed values, typically the loaded
// configuration.
type StaticProvider struct {
	Account  string
	Password string
}

// Fill implements Provider
func (p StaticProvider) Fill(creds *Credentials) error {
	if p.Account == "" && p.Password == "" {
		return ErrCredentialsNotFound
	}
	if creds.Account == "" {
		creds.Account = p.Account
	}
	// A configured password only belongs to the configured account.
	if creds.Password == "" && (p.Account == "" || creds.Account == p.Account) {
		creds.Password = p.Password
	}
	return nil
}

// Retriever is the part of Manager used by StoreProvider
type Retriever interface {
	Retrieve(account string) (*Credentials, error)
	RetrieveDefault() (*Credentials, error)
}

// StoreProvider fills credentials from stored accounts
type StoreProvider struct {
	Store Retriever
}

// Fill implements Provider. With an account already chosen it looks that
// account up; otherwise it takes the most recently stored one.
func (p StoreProvider) Fill(creds *Credentials) error {
	var (
		stored *Credentials
		err    error
	)
	if creds.Account != "" {
		stored, err = p.Store.Retrieve(creds.Account)
	} else {
		stored, err = p.Store.RetrieveDefault()
	}
	if err != nil {
		return err
	}

	if creds.Account == "" {
		creds.Account = stored.Account
	}
	if creds.Password == "" {
		creds.Password = stored.Password
	}
	return nil
}

// PromptProvider asks for missing fields interactively. The password is
// read without echo when input is a terminal.
type PromptProvider struct {
	In  io.Reader
	Out io.Writer
	// ReadPassword reads a password without echo. When nil the password is
	// read as a plain line from In.
	ReadPassword func() (string, error)
}

// NewPromptProvider creates a prompt on stdin and stdout
func NewPromptProvider() *PromptProvider {
	p := &PromptProvider{In: os.Stdin, Out: os.Stdout}
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		p.ReadPassword = func() (string, error) {
			b, err := term.ReadPassword(fd)
			return string(b), err
		}
	}
	return p
}

// Fill implements Provider
func (p *PromptProvider) Fill(creds *Credentials) error {
	reader := bufio.NewReader(p.In)

	if creds.Account == "" {
		fmt.Fprint(p.Out, "Account (phone number or e-mail): ")
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return fmt.Errorf("failed to read account: %w", err)
		}
		creds.Account = strings.TrimSpace(line)
	}

	if creds.Password == "" {
		fmt.Fprint(p.Out, "Password: ")
		if p.ReadPassword != nil {
			password, err := p.ReadPassword()
			fmt.Fprintln(p.Out)
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			creds.Password = password
		} else {
			line, err := reader.ReadString('\n')
			if err != nil && !(errors.Is(err, io.EOF) && line != "") {
				return fmt.Errorf("failed to read password: %w", err)
			}
			creds.Password = strings.TrimRight(line, "\r\n")
		}
	}
	return nil
}

// Chain runs providers in order until the credentials are complete
type Chain []Provider

// Fill implements Provider. A provider reporting ErrCredentialsNotFound is
// skipped; any other error stops the chain.
func (c Chain) Fill(creds *Credentials) error {
	for _, p := range c {
		if creds.Complete() {
			return nil
		}
		if err := p.Fill(creds); err != nil && !errors.Is(err, ErrCredentialsNotFound) {
			return err
		}
	}
	if !creds.Complete() {
		return fmt.Errorf("%w: account and password are required", ErrCredentialsNotFound)
	}
	return nil
}

// Resolve returns complete credentials from provider
func Resolve(provider Provider) (*Credentials, error) {
	creds := &Credentials{}
	if err := provider.Fill(creds); err != nil {
		return nil, err
	}
	if !creds.Complete() {
		return nil, fmt.Errorf("%w: account and password are required", ErrCredentialsNotFound)
	}
	return creds, nil
}
