package auth

import (
	"fmt"
)

const (
	StorageFile     = "file"
	StorageKeychain = "keychain"
)

// TokenStore persists the bearer credential between invocations. The
// credential has no expiry tracked locally; invalidity is discovered on the
// first failed authenticated call.
type TokenStore interface {
	// Credential returns the stored token and whether one exists.
	Credential() (string, bool, error)
	Store(token string) error
	Clear() error
}

// NewStore selects a storage backend. An empty backend defaults to the
// file store.
func NewStore(backend, path string) (TokenStore, error) {
	switch backend {
	case "", StorageFile:
		return &FileStore{Path: path}, nil
	case StorageKeychain:
		return &KeyringStore{Service: keyringService, User: keyringUser}, nil
	default:
		return nil, fmt.Errorf("unknown token storage backend: %s", backend)
	}
}
