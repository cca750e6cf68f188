package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// StoredCredential is the on-disk token record for the file backend.
type StoredCredential struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type,omitempty"`
	ObtainedAt  time.Time `json:"obtained_at,omitempty"`
}

// FileStore keeps the credential in a mode-0600 JSON file under the user
// config directory.
type FileStore struct {
	Path string
}

func (s *FileStore) Credential() (string, bool, error) {
	content, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	var cred StoredCredential
	if err := json.Unmarshal(content, &cred); err != nil {
		return "", false, fmt.Errorf("failed to parse token file: %w", err)
	}
	if cred.AccessToken == "" {
		return "", false, nil
	}
	return cred.AccessToken, true, nil
}

func (s *FileStore) Store(token string) error {
	if token == "" {
		return errors.New("token is empty")
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}
	cred := StoredCredential{AccessToken: token, TokenType: "bearer", ObtainedAt: time.Now().UTC()}
	content, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	return os.WriteFile(s.Path, content, 0o600)
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.Path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
