// Package storage wraps the durable key-value store used for persisted
// client state.
package storage

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// Store is a string key-value store backed by a local SQLite file.
type Store struct {
	db *sql.DB
	// sqlite does not support concurrent writes
	writeLock sync.Mutex
}

// Open opens or creates the store at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)

	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()

			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	_, err = db.Exec(`
		create table if not exists kv (
			key text primary key,
			value text not null
		)
	`)

	if err != nil {
		db.Close()

		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the store.
func (store *Store) Close() error {
	return store.db.Close()
}

// Get reads the value for a key, reporting whether the key was present.
func (store *Store) Get(key string) (string, bool, error) {
	row := store.db.QueryRow("select value from kv where key = $1", key)

	var value string

	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}

		return "", false, fmt.Errorf("read key %q: %w", key, err)
	}

	return value, true, nil
}

// Set writes the value for a key, replacing any previous value.
func (store *Store) Set(key string, value string) error {
	store.writeLock.Lock()
	defer store.writeLock.Unlock()

	_, err := store.db.Exec(
		`insert into kv (key, value) values ($1, $2)
		on conflict (key) do update set value = excluded.value`,
		key,
		value,
	)

	if err != nil {
		return fmt.Errorf("write key %q: %w", key, err)
	}

	return nil
}

// Remove deletes a key. Removing a missing key is not an error.
func (store *Store) Remove(key string) error {
	store.writeLock.Lock()
	defer store.writeLock.Unlock()

	if _, err := store.db.Exec("delete from kv where key = $1", key); err != nil {
		return fmt.Errorf("remove key %q: %w", key, err)
	}

	return nil
}

// Clear deletes every key.
func (store *Store) Clear() error {
	store.writeLock.Lock()
	defer store.writeLock.Unlock()

	if _, err := store.db.Exec("delete from kv"); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}

	return nil
}
