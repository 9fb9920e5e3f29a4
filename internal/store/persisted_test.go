package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dense-analysis/skinwarp/internal/storage"
)

func openTestStorage(t *testing.T) *storage.Store {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func TestSetSurvivesLoad(t *testing.T) {
	store := openTestStorage(t)
	persisted := NewPersisted(store, []string{"token"}, []string{"token"}, nil)

	require.NoError(t, persisted.Set("token", "abc123"))

	// A fresh store over the same storage simulates a reload.
	reloaded := NewPersisted(store, []string{"token"}, []string{"token"}, nil)
	require.NoError(t, reloaded.Load())

	assert.Equal(t, "abc123", reloaded.GetString("token"))
}

func TestLoadIgnoresKeysOutsideLoadKeys(t *testing.T) {
	store := openTestStorage(t)
	defaults := Values{"currency": "USD"}
	persisted := NewPersisted(store, nil, nil, defaults)

	// The value reaches storage, but currency is not a load key, so a
	// reload yields the default regardless.
	require.NoError(t, persisted.Set("currency", "EUR"))

	reloaded := NewPersisted(store, nil, nil, defaults)
	require.NoError(t, reloaded.Load())

	assert.Equal(t, "USD", reloaded.GetString("currency"))
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	store := openTestStorage(t)
	persisted := NewPersisted(
		store,
		[]string{"currency"},
		[]string{"currency"},
		Values{"currency": "USD", "volume": float64(5)},
	)

	require.NoError(t, persisted.Load())

	assert.Equal(t, "USD", persisted.GetString("currency"))
	assert.Equal(t, float64(5), persisted.Get("volume"))
}

func TestLoadIsIdempotent(t *testing.T) {
	store := openTestStorage(t)
	persisted := NewPersisted(
		store,
		[]string{"currency"},
		[]string{"currency"},
		Values{"currency": "USD"},
	)

	require.NoError(t, persisted.Set("currency", "JPY"))
	require.NoError(t, persisted.Load())
	first := persisted.GetString("currency")
	require.NoError(t, persisted.Load())

	assert.Equal(t, first, persisted.GetString("currency"))
	assert.Equal(t, "JPY", first)
}

func TestUpdateDoesNotPersist(t *testing.T) {
	store := openTestStorage(t)
	persisted := NewPersisted(store, []string{"token"}, []string{"token"}, nil)

	persisted.Update("token", "ephemeral")
	assert.Equal(t, "ephemeral", persisted.GetString("token"))

	require.NoError(t, persisted.Load())
	assert.Equal(t, "", persisted.GetString("token"))
}

func TestRemoveClearsMemoryAndStorage(t *testing.T) {
	store := openTestStorage(t)
	persisted := NewPersisted(store, []string{"token"}, []string{"token"}, nil)

	require.NoError(t, persisted.Set("token", "abc123"))
	require.NoError(t, persisted.Remove("token"))

	assert.Nil(t, persisted.Get("token"))

	require.NoError(t, persisted.Load())
	assert.Equal(t, "", persisted.GetString("token"))
}

func TestResetRestoresDefaults(t *testing.T) {
	store := openTestStorage(t)
	defaults := Values{"currency": "USD"}
	persisted := NewPersisted(store, []string{"currency"}, []string{"currency"}, defaults)

	require.NoError(t, persisted.Set("currency", "EUR"))
	require.NoError(t, persisted.Reset())

	assert.Equal(t, "USD", persisted.GetString("currency"))

	// The stored value is gone too.
	reloaded := NewPersisted(store, []string{"currency"}, []string{"currency"}, defaults)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, "USD", reloaded.GetString("currency"))
}

func TestNonStringDefaultsRoundTripThroughJSON(t *testing.T) {
	store := openTestStorage(t)
	defaults := Values{"filters": map[string]any{"category": "rifle"}}
	persisted := NewPersisted(store, []string{"filters"}, []string{"filters"}, defaults)

	require.NoError(t, persisted.Set("filters", map[string]any{"category": "knife"}))

	reloaded := NewPersisted(store, []string{"filters"}, []string{"filters"}, defaults)
	require.NoError(t, reloaded.Load())

	assert.Equal(t, map[string]any{"category": "knife"}, reloaded.Get("filters"))
}

func TestUndecodableStoredValueFallsBackToDefault(t *testing.T) {
	store := openTestStorage(t)
	defaults := Values{"filters": map[string]any{"category": "rifle"}}

	// Corrupt the stored value behind the store's back.
	require.NoError(t, store.Set("filters", "{not json"))

	persisted := NewPersisted(store, []string{"filters"}, []string{"filters"}, defaults)
	require.NoError(t, persisted.Load())

	assert.Equal(t, map[string]any{"category": "rifle"}, persisted.Get("filters"))
}

func TestSubscribersSeeEveryChange(t *testing.T) {
	store := openTestStorage(t)
	persisted := NewPersisted(store, []string{"token"}, []string{"token"}, nil)

	var changed []string

	persisted.Subscribe(func(key string) {
		changed = append(changed, key)
	})

	require.NoError(t, persisted.Set("token", "abc123"))
	persisted.Update("token", "def456")
	require.NoError(t, persisted.Remove("token"))

	assert.Equal(t, []string{"token", "token", "token"}, changed)
}
