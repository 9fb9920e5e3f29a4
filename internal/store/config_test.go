package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dense-analysis/skinwarp/internal/currency"
)

func TestConfigDefaultsToDefaultCurrency(t *testing.T) {
	store := openTestStorage(t)
	converter := currency.NewConverter(nil, currency.DefaultCurrency)
	config := NewConfig(store, converter)

	require.NoError(t, config.Load())

	assert.Equal(t, currency.DefaultCurrency, config.Currency())
	assert.Equal(t, currency.DefaultCurrency, converter.Target())
}

func TestSetCurrencyDrivesConverterTarget(t *testing.T) {
	store := openTestStorage(t)
	converter := currency.NewConverter(nil, currency.DefaultCurrency)
	config := NewConfig(store, converter)
	require.NoError(t, config.Load())

	require.NoError(t, config.SetCurrency("EUR"))

	// The binding is synchronous.
	assert.Equal(t, "EUR", converter.Target())
}

func TestCurrencySurvivesReload(t *testing.T) {
	store := openTestStorage(t)
	converter := currency.NewConverter(nil, currency.DefaultCurrency)
	config := NewConfig(store, converter)
	require.NoError(t, config.Load())
	require.NoError(t, config.SetCurrency("JPY"))

	reloadedConverter := currency.NewConverter(nil, currency.DefaultCurrency)
	reloaded := NewConfig(store, reloadedConverter)
	require.NoError(t, reloaded.Load())

	assert.Equal(t, "JPY", reloaded.Currency())
	assert.Equal(t, "JPY", reloadedConverter.Target())
}

func TestSetCurrencyRejectsUnknownCodes(t *testing.T) {
	store := openTestStorage(t)
	converter := currency.NewConverter(nil, currency.DefaultCurrency)
	config := NewConfig(store, converter)
	require.NoError(t, config.Load())

	err := config.SetCurrency("GBP")

	var unknownErr *currency.UnknownCurrencyError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, currency.DefaultCurrency, config.Currency())
	assert.Equal(t, currency.DefaultCurrency, converter.Target())
}

func TestConfigReset(t *testing.T) {
	store := openTestStorage(t)
	converter := currency.NewConverter(nil, currency.DefaultCurrency)
	config := NewConfig(store, converter)
	require.NoError(t, config.Load())
	require.NoError(t, config.SetCurrency("EUR"))

	require.NoError(t, config.Reset())

	assert.Equal(t, currency.DefaultCurrency, config.Currency())
	assert.Equal(t, currency.DefaultCurrency, converter.Target())
}
