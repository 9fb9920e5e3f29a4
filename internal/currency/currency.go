// Package currency implements currency-tagged money values and conversion
// between display currencies.
package currency

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the display currency used before a user picks one.
const DefaultCurrency = "USD"

// ListPriceCurrency is the currency marketplace prices arrive in.
const ListPriceCurrency = "CNY"

// DefaultRates holds exchange rates relative to USD as base 1.
var DefaultRates = map[string]decimal.Decimal{
	"USD": decimal.NewFromInt(1),
	"CNY": decimal.RequireFromString("7.25"),
	"EUR": decimal.RequireFromString("0.93"),
	"JPY": decimal.RequireFromString("158.3"),
}

// Symbols maps a currency code to the symbol used when formatting values.
var Symbols = map[string]string{
	"USD": "$",
	"CNY": "¥",
	"EUR": "€",
	"JPY": "¥",
}

// UnknownCurrencyError is returned when a conversion refers to a currency
// missing from the rate table.
type UnknownCurrencyError struct {
	Unit string
}

func (err *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("unknown currency: %s", err.Unit)
}

// Money is an amount tagged with the currency it is denominated in.
type Money struct {
	Amount decimal.Decimal
	Unit   string
}

// New creates a Money value in the given currency.
func New(amount decimal.Decimal, unit string) Money {
	return Money{Amount: amount, Unit: unit}
}

// Parse creates a Money value from a decimal string in the list price
// currency, the currency marketplace prices are quoted in.
func Parse(value string) (Money, error) {
	amount, err := decimal.NewFromString(value)

	if err != nil {
		return Money{}, fmt.Errorf("parse money: %w", err)
	}

	return Money{Amount: amount, Unit: ListPriceCurrency}, nil
}

// Converter converts Money values between currencies.
//
// The rate table and the target currency are shared mutable state so a
// currency switch reaches every value rendered afterwards, but they hang
// off an injected Converter instead of package globals so tests can run
// with independent targets.
type Converter struct {
	mutex  sync.RWMutex
	rates  map[string]decimal.Decimal
	target string
}

// NewConverter creates a Converter with the given rate table and target
// display currency. A nil rate table selects DefaultRates.
func NewConverter(rates map[string]decimal.Decimal, target string) *Converter {
	if rates == nil {
		rates = DefaultRates
	}

	copied := make(map[string]decimal.Decimal, len(rates))

	for unit, rate := range rates {
		copied[unit] = rate
	}

	return &Converter{rates: copied, target: target}
}

// SetRates replaces the exchange rate table.
func (converter *Converter) SetRates(rates map[string]decimal.Decimal) {
	converter.mutex.Lock()
	defer converter.mutex.Unlock()

	converter.rates = make(map[string]decimal.Decimal, len(rates))

	for unit, rate := range rates {
		converter.rates[unit] = rate
	}
}

// SetTarget sets the currency values are rendered and compared in.
func (converter *Converter) SetTarget(target string) {
	converter.mutex.Lock()
	defer converter.mutex.Unlock()

	converter.target = target
}

// Target returns the current display currency.
func (converter *Converter) Target() string {
	converter.mutex.RLock()
	defer converter.mutex.RUnlock()

	return converter.target
}

// Currencies returns the currency codes present in the rate table.
func (converter *Converter) Currencies() []string {
	converter.mutex.RLock()
	defer converter.mutex.RUnlock()

	currencies := make([]string, 0, len(converter.rates))

	for unit := range converter.rates {
		currencies = append(currencies, unit)
	}

	return currencies
}

// Known reports whether the rate table has an entry for a currency.
func (converter *Converter) Known(unit string) bool {
	converter.mutex.RLock()
	defer converter.mutex.RUnlock()

	_, ok := converter.rates[unit]

	return ok
}

// Convert returns money converted into the target currency.
//
// The input value is left untouched. Conversion divides by the rate of
// the source currency and multiplies by the rate of the target, with USD
// as the base.
func (converter *Converter) Convert(money Money, target string) (Money, error) {
	if money.Unit == target {
		return money, nil
	}

	converter.mutex.RLock()
	defer converter.mutex.RUnlock()

	fromRate, ok := converter.rates[money.Unit]

	if !ok {
		return Money{}, &UnknownCurrencyError{Unit: money.Unit}
	}

	toRate, ok := converter.rates[target]

	if !ok {
		return Money{}, &UnknownCurrencyError{Unit: target}
	}

	return Money{
		Amount: money.Amount.Div(fromRate).Mul(toRate),
		Unit:   target,
	}, nil
}

// ToTarget converts money into the current display currency.
func (converter *Converter) ToTarget(money Money) (Money, error) {
	return converter.Convert(money, converter.Target())
}

// Format renders money in the display currency as "<symbol><amount>",
// rounded to two decimal places.
func (converter *Converter) Format(money Money) (string, error) {
	converted, err := converter.ToTarget(money)

	if err != nil {
		return "", err
	}

	return Symbols[converted.Unit] + converted.Amount.StringFixed(2), nil
}

// Compare converts both values into the display currency and returns -1,
// 0, or 1 in the manner of decimal.Decimal.Cmp.
//
// Values are only ever compared in a common currency.
func (converter *Converter) Compare(left Money, right Money) (int, error) {
	leftConverted, err := converter.ToTarget(left)

	if err != nil {
		return 0, err
	}

	rightConverted, err := converter.ToTarget(right)

	if err != nil {
		return 0, err
	}

	return leftConverted.Amount.Cmp(rightConverted.Amount), nil
}

// Less reports whether left converts to strictly less than right in the
// display currency.
func (converter *Converter) Less(left Money, right Money) (bool, error) {
	result, err := converter.Compare(left, right)

	if err != nil {
		return false, err
	}

	return result < 0, nil
}
