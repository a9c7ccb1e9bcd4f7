package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	manager, err := NewManager(42)
	require.NoError(t, err)
	return manager
}

func TestCreateAndLoad(t *testing.T) {
	manager := newTestManager(t)

	cp, err := manager.Create(42, "followings.json")
	require.NoError(t, err)
	assert.Equal(t, int64(42), cp.UID)
	assert.Equal(t, "followings.json", cp.SourceFile)
	assert.True(t, manager.Exists())

	loaded, err := manager.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, int64(42), loaded.UID)
	assert.Equal(t, "followings.json", loaded.SourceFile)
	assert.NotNil(t, loaded.Processed)
}

func TestLoadMissingCheckpoint(t *testing.T) {
	manager := newTestManager(t)

	cp, err := manager.Load()
	require.NoError(t, err)
	assert.Nil(t, cp)
	assert.False(t, manager.Exists())
}

func TestSaveProgress(t *testing.T) {
	manager := newTestManager(t)

	cp, err := manager.Create(42, "followings.json")
	require.NoError(t, err)

	cp.MarkProcessed(111, "followed")
	cp.MarkProcessed(222, "already_following")
	cp.Successful = 2
	cp.Failed = 0
	require.NoError(t, manager.Save(cp))

	loaded, err := manager.Load()
	require.NoError(t, err)
	assert.True(t, loaded.IsProcessed(111))
	assert.True(t, loaded.IsProcessed(222))
	assert.False(t, loaded.IsProcessed(333))
	assert.Equal(t, 2, loaded.Successful)
	assert.Equal(t, "followed", loaded.Processed["111"])
}

func TestDelete(t *testing.T) {
	manager := newTestManager(t)

	_, err := manager.Create(42, "followings.json")
	require.NoError(t, err)
	require.True(t, manager.Exists())

	require.NoError(t, manager.Delete())
	assert.False(t, manager.Exists())

	// Deleting twice is not an error
	assert.NoError(t, manager.Delete())
}

func TestIsProcessedNilSafe(t *testing.T) {
	var cp *Checkpoint
	assert.False(t, cp.IsProcessed(1))

	cp = &Checkpoint{}
	assert.False(t, cp.IsProcessed(1))

	cp.MarkProcessed(1, "followed")
	assert.True(t, cp.IsProcessed(1))
}
