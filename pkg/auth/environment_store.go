package auth

import (
	"os"
	"strconv"
	"time"
)

// EnvironmentStore implements CredentialStore using environment
// variables. It is read-only and ignores the label: the same exported
// credential backs whichever section asks for it.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve gets credentials from environment variables
func (e *EnvironmentStore) Retrieve(label string) (*Account, error) {
	sessdata := os.Getenv("BILIFOLLOW_SESSDATA")
	biliJct := os.Getenv("BILIFOLLOW_BILI_JCT")

	if sessdata == "" || biliJct == "" {
		return nil, ErrCredentialsNotFound
	}

	var uid int64
	if raw := os.Getenv("BILIFOLLOW_UID"); raw != "" {
		uid, _ = strconv.ParseInt(raw, 10, 64)
	}

	if label == "" {
		label = "default"
	}

	return &Account{
		Label:        label,
		Sessdata:     sessdata,
		BiliJct:      biliJct,
		UID:          uid,
		Buvid3:       os.Getenv("BILIFOLLOW_BUVID3"),
		LastModified: time.Now(),
	}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(label string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(label string) bool {
	return os.Getenv("BILIFOLLOW_SESSDATA") != "" && os.Getenv("BILIFOLLOW_BILI_JCT") != ""
}
