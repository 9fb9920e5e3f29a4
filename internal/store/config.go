package store

import (
	"github.com/dense-analysis/skinwarp/internal/currency"
	"github.com/dense-analysis/skinwarp/internal/storage"
)

const currencyKey = "currency"

// Config holds user preferences, currently just the display currency.
//
// The currency key is bound to the converter's target through a
// subscription, so a change reaches every value formatted afterwards
// before anything else runs.
type Config struct {
	persisted *Persisted
	converter *currency.Converter
}

// NewConfig creates the config store bound to a converter.
func NewConfig(store *storage.Store, converter *currency.Converter) *Config {
	persisted := NewPersisted(
		store,
		[]string{currencyKey},
		[]string{currencyKey},
		Values{currencyKey: currency.DefaultCurrency},
	)

	config := &Config{persisted: persisted, converter: converter}

	persisted.Subscribe(func(key string) {
		if key == currencyKey {
			converter.SetTarget(config.Currency())
		}
	})

	return config
}

// Load hydrates the store from durable storage. The converter's target
// currency is synced as part of loading.
func (config *Config) Load() error {
	return config.persisted.Load()
}

// Reset restores defaults and clears durable storage.
func (config *Config) Reset() error {
	return config.persisted.Reset()
}

// Currency returns the selected display currency.
func (config *Config) Currency() string {
	return config.persisted.GetString(currencyKey)
}

// SetCurrency selects the display currency and persists the choice.
// Currencies missing from the converter's rate table are rejected.
func (config *Config) SetCurrency(code string) error {
	if !config.converter.Known(code) {
		return &currency.UnknownCurrencyError{Unit: code}
	}

	return config.persisted.Set(currencyKey, code)
}
