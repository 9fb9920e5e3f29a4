package currency

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	converter := NewConverter(nil, "USD")

	converted, err := converter.Convert(New(decimal.RequireFromString("72.50"), "CNY"), "USD")
	require.NoError(t, err)

	assert.Equal(t, "USD", converted.Unit)
	assert.True(t, converted.Amount.Equal(decimal.NewFromInt(10)), "got %s", converted.Amount)
}

func TestConvertLeavesInputUntouched(t *testing.T) {
	converter := NewConverter(nil, "USD")
	original := New(decimal.NewFromInt(100), "CNY")

	_, err := converter.Convert(original, "EUR")
	require.NoError(t, err)

	assert.Equal(t, "CNY", original.Unit)
	assert.True(t, original.Amount.Equal(decimal.NewFromInt(100)))
}

func TestConvertRoundTrip(t *testing.T) {
	converter := NewConverter(nil, "USD")
	original := New(decimal.RequireFromString("123.45"), "CNY")

	converted, err := converter.Convert(original, "EUR")
	require.NoError(t, err)

	back, err := converter.Convert(converted, "CNY")
	require.NoError(t, err)

	difference := back.Amount.Sub(original.Amount).Abs()
	tolerance := decimal.New(1, -10)
	assert.True(t, difference.LessThan(tolerance), "difference %s", difference)
}

func TestConvertUnknownCurrency(t *testing.T) {
	converter := NewConverter(nil, "USD")

	_, err := converter.Convert(New(decimal.NewFromInt(1), "GBP"), "USD")

	var unknownErr *UnknownCurrencyError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "GBP", unknownErr.Unit)

	_, err = converter.Convert(New(decimal.NewFromInt(1), "USD"), "GBP")
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "GBP", unknownErr.Unit)
}

func TestFormat(t *testing.T) {
	converter := NewConverter(nil, "USD")

	formatted, err := converter.Format(New(decimal.RequireFromString("72.50"), "CNY"))
	require.NoError(t, err)
	assert.Equal(t, "$10.00", formatted)

	converter.SetTarget("EUR")

	formatted, err = converter.Format(New(decimal.NewFromInt(10), "USD"))
	require.NoError(t, err)
	assert.Equal(t, "€9.30", formatted)
}

func TestCompareConvertsBothSides(t *testing.T) {
	converter := NewConverter(nil, "USD")

	// 7.25 CNY and 1 USD are the same value at the default rates.
	result, err := converter.Compare(
		New(decimal.RequireFromString("7.25"), "CNY"),
		New(decimal.NewFromInt(1), "USD"),
	)
	require.NoError(t, err)
	assert.Equal(t, 0, result)

	less, err := converter.Less(
		New(decimal.NewFromInt(7), "CNY"),
		New(decimal.NewFromInt(1), "USD"),
	)
	require.NoError(t, err)
	assert.True(t, less)
}

func TestSetTargetIsIndependentPerConverter(t *testing.T) {
	first := NewConverter(nil, "USD")
	second := NewConverter(nil, "JPY")

	first.SetTarget("EUR")

	assert.Equal(t, "EUR", first.Target())
	assert.Equal(t, "JPY", second.Target())
}

func TestParse(t *testing.T) {
	money, err := Parse("199.99")
	require.NoError(t, err)

	assert.Equal(t, ListPriceCurrency, money.Unit)
	assert.True(t, money.Amount.Equal(decimal.RequireFromString("199.99")))

	_, err = Parse("not a price")
	assert.Error(t, err)
}
