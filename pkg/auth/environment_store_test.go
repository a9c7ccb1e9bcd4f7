package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentStoreRetrieve(t *testing.T) {
	t.Setenv("BILIFOLLOW_SESSDATA", "env-sessdata")
	t.Setenv("BILIFOLLOW_BILI_JCT", "env-jct")
	t.Setenv("BILIFOLLOW_UID", "99")
	t.Setenv("BILIFOLLOW_BUVID3", "env-device")

	store := NewEnvironmentStore()
	require.True(t, store.Exists("anything"))

	// The same exported credential backs any label
	account, err := store.Retrieve("download_credential")
	require.NoError(t, err)
	assert.Equal(t, "env-sessdata", account.Sessdata)
	assert.Equal(t, "env-jct", account.BiliJct)
	assert.Equal(t, int64(99), account.UID)
	assert.Equal(t, "env-device", account.Buvid3)
	assert.Equal(t, "download_credential", account.Label)
}

func TestEnvironmentStoreMissing(t *testing.T) {
	t.Setenv("BILIFOLLOW_SESSDATA", "")
	t.Setenv("BILIFOLLOW_BILI_JCT", "")

	store := NewEnvironmentStore()
	assert.False(t, store.Exists("any"))

	_, err := store.Retrieve("any")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEnvironmentStoreReadOnly(t *testing.T) {
	store := NewEnvironmentStore()
	assert.ErrorIs(t, store.Store(testAccount()), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("any"), ErrStoreUnavailable)
}
