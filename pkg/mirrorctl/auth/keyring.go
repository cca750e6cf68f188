package auth

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "mirrorctl"
	keyringUser    = "github-token"
)

// KeyringStore keeps the credential in the OS keychain.
type KeyringStore struct {
	Service string
	User    string
}

func (s *KeyringStore) Credential() (string, bool, error) {
	token, err := keyring.Get(s.Service, s.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return token, token != "", nil
}

func (s *KeyringStore) Store(token string) error {
	if token == "" {
		return errors.New("token is empty")
	}
	return keyring.Set(s.Service, s.User, token)
}

func (s *KeyringStore) Clear() error {
	err := keyring.Delete(s.Service, s.User)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
