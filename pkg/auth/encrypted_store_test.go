package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *EncryptedFileStore {
	t.Helper()
	t.Setenv("BILIFOLLOW_PASSPHRASE", "test-passphrase")

	store, err := NewEncryptedFileStore(filepath.Join(t.TempDir(), "credentials.enc"))
	require.NoError(t, err)
	return store
}

func testAccount() *Account {
	return &Account{
		Label:    "auto_follow_credential",
		Sessdata: "secret-sessdata",
		BiliJct:  "secret-jct",
		UID:      42,
		Buvid3:   "device",
	}
}

func TestEncryptedStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Store(testAccount()))

	account, err := store.Retrieve("auto_follow_credential")
	require.NoError(t, err)
	assert.Equal(t, "secret-sessdata", account.Sessdata)
	assert.Equal(t, "secret-jct", account.BiliJct)
	assert.Equal(t, int64(42), account.UID)
	assert.Equal(t, "device", account.Buvid3)
}

func TestEncryptedStoreCiphertextOnDisk(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Store(testAccount()))

	content, err := os.ReadFile(store.filepath)
	require.NoError(t, err)
	// Secrets never hit the disk in the clear
	assert.NotContains(t, string(content), "secret-sessdata")
	assert.NotContains(t, string(content), "secret-jct")
}

func TestEncryptedStoreMultipleLabels(t *testing.T) {
	store := newTestStore(t)

	first := testAccount()
	second := testAccount()
	second.Label = "download_credential"
	second.UID = 7

	require.NoError(t, store.Store(first))
	require.NoError(t, store.Store(second))

	got, err := store.Retrieve("download_credential")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UID)

	got, err = store.Retrieve("auto_follow_credential")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.UID)
}

func TestEncryptedStoreMissingLabel(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Retrieve("nothing_here")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
	assert.False(t, store.Exists("nothing_here"))
}

func TestEncryptedStoreDelete(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Store(testAccount()))
	require.True(t, store.Exists("auto_follow_credential"))

	require.NoError(t, store.Delete("auto_follow_credential"))
	assert.False(t, store.Exists("auto_follow_credential"))

	err := store.Delete("auto_follow_credential")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEncryptedStoreRejectsInvalidInput(t *testing.T) {
	store := newTestStore(t)

	assert.ErrorIs(t, store.Store(nil), ErrInvalidCredentials)
	assert.ErrorIs(t, store.Store(&Account{}), ErrInvalidCredentials)

	_, err := store.Retrieve("")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSanitizeAccount(t *testing.T) {
	sanitized := SanitizeAccount(&Account{
		Label:    "auto_follow_credential",
		Sessdata: "0123456789abcdef",
		BiliJct:  "short",
		UID:      42,
	})

	assert.Equal(t, "0123...cdef", sanitized.Sessdata)
	assert.Equal(t, "********", sanitized.BiliJct)
	assert.Equal(t, int64(42), sanitized.UID)

	assert.Nil(t, SanitizeAccount(nil))
}
