package model

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dense-analysis/skinwarp/internal/currency"
)

// MarketKeys lists the marketplaces prices are read from, in the order
// used to break lowest-price ties.
var MarketKeys = []string{"igxe", "buff", "uu", "steam"}

// BigDecimalNull is the raw wire value the API uses for a missing price.
// It is matched as a string so a real zero price is not confused with it.
const BigDecimalNull = "0E-6176"

// PriceMax is the bound above which a price is treated as garbage.
var PriceMax = decimal.RequireFromString("99999998")

// PriceInfo is one marketplace's price for an item.
type PriceInfo struct {
	Market    string
	Price     currency.Money
	UpdatedAt time.Time
}

// Item is the UI-ready form of an item.
type Item struct {
	ID       string
	FullName string
	Name     string
	Skin     string
	Exterior string
	IconURL  string

	// Prices maps marketplace key to that marketplace's price.
	Prices map[string]PriceInfo
	// LowestPrice is the cheapest marketplace price after conversion,
	// nil when no marketplace has a valid price.
	LowestPrice *PriceInfo
}

// Name is the structured decomposition of an item display name.
type Name struct {
	Name     string
	Skin     string
	Exterior string
}

// Display names normally read "<name> | <skin> (<exterior>)" with single
// spaces around the delimiters. When the segments carry extra padding the
// spaced pattern cannot apply, and the bare delimiters are used so the
// padded segments come through verbatim.
var (
	itemNamePattern       = regexp.MustCompile(`(.*?[^ ]) \| (.*?[^ ]) \((.*?)\)`)
	itemNamePaddedPattern = regexp.MustCompile(`(.*?)\|(.*?)\((.*?)\)`)
)

// DecodeItemName splits an item display name into name, skin, and
// exterior. ok is false when the name has no structured decomposition.
//
// Whitespace inside the decoded segments is preserved, not trimmed.
func DecodeItemName(fullName string) (Name, bool) {
	match := itemNamePattern.FindStringSubmatch(fullName)

	if match == nil {
		match = itemNamePaddedPattern.FindStringSubmatch(fullName)
	}

	if match == nil {
		return Name{}, false
	}

	return Name{Name: match[1], Skin: match[2], Exterior: match[3]}, true
}

// validPrice reports whether a raw marketplace price should appear in the
// price map.
func validPrice(raw string) (decimal.Decimal, bool) {
	if raw == "" || raw == BigDecimalNull {
		return decimal.Decimal{}, false
	}

	value, err := decimal.NewFromString(raw)

	if err != nil {
		return decimal.Decimal{}, false
	}

	if value.GreaterThan(PriceMax) {
		return decimal.Decimal{}, false
	}

	return value, true
}

// ItemFromDTO converts a wire item into its UI-ready form.
//
// Marketplace prices equal to the null sentinel or above PriceMax are
// excluded from both the price map and the lowest price. The lowest price
// is a strict minimum over converted values, so the first marketplace in
// MarketKeys order wins ties.
func ItemFromDTO(converter *currency.Converter, dto *ItemDTO) (Item, error) {
	prices := map[string]PriceInfo{}

	var lowestPrice *PriceInfo

	for _, market := range MarketKeys {
		marketPrice := dto.marketPrice(market)

		if marketPrice == nil {
			continue
		}

		value, ok := validPrice(marketPrice.Price)

		if !ok {
			continue
		}

		info := PriceInfo{
			Market:    market,
			Price:     currency.New(value, currency.ListPriceCurrency),
			UpdatedAt: marketPrice.UpdatedAt,
		}
		prices[market] = info

		if lowestPrice == nil {
			cheapest := info
			lowestPrice = &cheapest

			continue
		}

		less, err := converter.Less(info.Price, lowestPrice.Price)

		if err != nil {
			return Item{}, err
		}

		if less {
			cheapest := info
			lowestPrice = &cheapest
		}
	}

	item := Item{
		ID:          dto.ID,
		FullName:    dto.Name,
		IconURL:     dto.IconURL,
		Prices:      prices,
		LowestPrice: lowestPrice,
	}

	if decoded, ok := DecodeItemName(dto.Name); ok {
		item.Name = decoded.Name
		item.Skin = decoded.Skin
		item.Exterior = decoded.Exterior
	} else {
		// Items always render a name, so an undecodable display name
		// stands in whole.
		item.Name = dto.Name
	}

	return item, nil
}

// ItemsFromDTO converts a page of wire items.
func ItemsFromDTO(converter *currency.Converter, dtos []ItemDTO) ([]Item, error) {
	items := make([]Item, 0, len(dtos))

	for i := range dtos {
		item, err := ItemFromDTO(converter, &dtos[i])

		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return items, nil
}
