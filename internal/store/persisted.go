// Package store implements the client-side state stores, with selected
// keys persisted to durable storage.
package store

import (
	"encoding/json"
	"sync"

	"github.com/dense-analysis/skinwarp/internal/storage"
)

// Values maps store keys to their values.
type Values map[string]any

// Persisted is a key-value state container with a configurable subset of
// keys backed by durable storage, and synchronous change notification
// for observers.
//
// Domain stores embed one by composition and expose typed accessors over
// it. Writes are last-write-wins with no cross-key atomicity: if the
// process dies between the memory update and the durable write, the next
// Load heals the difference from storage.
type Persisted struct {
	storage   *storage.Store
	loadKeys  []string
	resetKeys []string
	defaults  Values
	// jsonKeys marks keys whose values need JSON encoding in storage.
	// Derived from the defaults: string defaults and keys without a
	// default are stored raw, everything else is encoded.
	jsonKeys map[string]bool

	mutex       sync.RWMutex
	values      Values
	subscribers []func(key string)
}

// NewPersisted creates a store that hydrates loadKeys from storage on
// Load, clears resetKeys from storage on Reset, and falls back to the
// given defaults.
func NewPersisted(
	store *storage.Store,
	loadKeys []string,
	resetKeys []string,
	defaults Values,
) *Persisted {
	if defaults == nil {
		defaults = Values{}
	}

	jsonKeys := map[string]bool{}

	for key, value := range defaults {
		if _, isString := value.(string); !isString {
			jsonKeys[key] = true
		}
	}

	return &Persisted{
		storage:   store,
		loadKeys:  loadKeys,
		resetKeys: resetKeys,
		defaults:  defaults,
		jsonKeys:  jsonKeys,
		values:    Values{},
	}
}

// Subscribe registers an observer notified with the key of every change.
// Notification is synchronous, so observers run before the next read.
func (persisted *Persisted) Subscribe(observer func(key string)) {
	persisted.mutex.Lock()
	defer persisted.mutex.Unlock()

	persisted.subscribers = append(persisted.subscribers, observer)
}

func (persisted *Persisted) notify(key string) {
	persisted.mutex.RLock()
	subscribers := make([]func(string), len(persisted.subscribers))
	copy(subscribers, persisted.subscribers)
	persisted.mutex.RUnlock()

	for _, observer := range subscribers {
		observer(key)
	}
}

// Get returns the in-memory value for a key.
func (persisted *Persisted) Get(key string) any {
	persisted.mutex.RLock()
	defer persisted.mutex.RUnlock()

	return persisted.values[key]
}

// GetString returns the in-memory value for a key as a string, or "" when
// the key is unset or not a string.
func (persisted *Persisted) GetString(key string) string {
	value, _ := persisted.Get(key).(string)

	return value
}

// Update sets a key in memory only and notifies observers.
func (persisted *Persisted) Update(key string, value any) {
	persisted.mutex.Lock()
	persisted.values[key] = value
	persisted.mutex.Unlock()

	persisted.notify(key)
}

// Set updates a key in memory and writes it through to durable storage.
func (persisted *Persisted) Set(key string, value any) error {
	persisted.Update(key, value)

	encoded, err := persisted.encode(key, value)

	if err != nil {
		return err
	}

	return persisted.storage.Set(key, encoded)
}

// Remove unsets a key in memory and deletes it from durable storage.
func (persisted *Persisted) Remove(key string) error {
	persisted.Update(key, nil)

	return persisted.storage.Remove(key)
}

// Load hydrates configured keys from durable storage, falling back to
// defaults for missing or undecodable values, and applies defaults
// directly for every remaining default key. Load is idempotent while
// storage is unchanged.
func (persisted *Persisted) Load() error {
	remaining := make(Values, len(persisted.defaults))

	for key, value := range persisted.defaults {
		remaining[key] = value
	}

	for _, key := range persisted.loadKeys {
		stored, found, err := persisted.storage.Get(key)

		if err != nil {
			return err
		}

		if found {
			persisted.Update(key, persisted.decode(key, stored))
		} else {
			persisted.Update(key, persisted.defaults[key])
		}

		delete(remaining, key)
	}

	for key, value := range remaining {
		persisted.Update(key, value)
	}

	return nil
}

// Reset deletes configured keys from durable storage and restores every
// key to its default.
func (persisted *Persisted) Reset() error {
	remaining := make(Values, len(persisted.defaults))

	for key, value := range persisted.defaults {
		remaining[key] = value
	}

	for _, key := range persisted.resetKeys {
		if err := persisted.storage.Remove(key); err != nil {
			return err
		}

		persisted.Update(key, persisted.defaults[key])
		delete(remaining, key)
	}

	for key, value := range remaining {
		persisted.Update(key, value)
	}

	return nil
}

func (persisted *Persisted) encode(key string, value any) (string, error) {
	if persisted.jsonKeys[key] {
		encoded, err := json.Marshal(value)

		if err != nil {
			return "", err
		}

		return string(encoded), nil
	}

	text, _ := value.(string)

	return text, nil
}

// decode turns a stored value back into a store value. A value that
// fails to decode is treated as absent, never as fatal.
func (persisted *Persisted) decode(key string, stored string) any {
	if !persisted.jsonKeys[key] {
		return stored
	}

	var value any

	if err := json.Unmarshal([]byte(stored), &value); err != nil {
		return persisted.defaults[key]
	}

	return value
}
