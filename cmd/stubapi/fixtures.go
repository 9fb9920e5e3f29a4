package main

import (
	"fmt"
	"time"

	"github.com/dense-analysis/skinwarp/internal/model"
)

const day = 24 * time.Hour

func priceDTO(price string, age time.Duration) *model.MarketPriceDTO {
	return &model.MarketPriceDTO{
		Price:     price,
		UpdatedAt: time.Now().Add(-age).UTC(),
	}
}

// fixtureItems seeds the item list. One item carries a null-sentinel
// price and one an over-bound price, so clients exercise their
// exclusion paths against the stub.
func fixtureItems() []model.ItemDTO {
	return []model.ItemDTO{
		{
			ID:         "item-1",
			Name:       "AK-47 | Redline (Field-Tested)",
			Category:   "rifle",
			Skin:       "Redline",
			Exterior:   "Field-Tested",
			IconURL:    "/images/previews/item-1.png",
			IgxePrice:  priceDTO("120.50", time.Hour),
			BuffPrice:  priceDTO("118.00", 2*time.Hour),
			UUPrice:    priceDTO("119.90", time.Hour),
			SteamPrice: priceDTO("130.00", 30*time.Minute),
		},
		{
			ID:         "item-2",
			Name:       "AWP | Asiimov (Battle-Scarred)",
			Category:   "rifle",
			Skin:       "Asiimov",
			Exterior:   "Battle-Scarred",
			IconURL:    "/images/previews/item-2.png",
			IgxePrice:  priceDTO("0E-6176", time.Hour),
			BuffPrice:  priceDTO("305.00", time.Hour),
			UUPrice:    priceDTO("99999999", time.Hour),
			SteamPrice: priceDTO("320.00", time.Hour),
		},
		{
			ID:        "item-3",
			Name:      "Glock-18 | Water Elemental (Minimal Wear)",
			Category:  "pistol",
			Skin:      "Water Elemental",
			Exterior:  "Minimal Wear",
			IconURL:   "/images/previews/item-3.png",
			BuffPrice: priceDTO("25.40", 3*time.Hour),
			UUPrice:   priceDTO("25.40", time.Hour),
		},
		{
			ID:         "item-4",
			Name:       "Karambit | Doppler (Factory New)",
			Category:   "knife",
			Skin:       "Doppler",
			Exterior:   "Factory New",
			IconURL:    "/images/previews/item-4.png",
			BuffPrice:  priceDTO("8300.00", time.Hour),
			SteamPrice: priceDTO("8999.99", time.Hour),
		},
		{
			ID:       "item-5",
			Name:     "Operation Broken Fang Case",
			Category: "case",
			IconURL:  "/images/previews/item-5.png",
			UUPrice:  priceDTO("4.20", time.Hour),
		},
	}
}

func fixtureTransactions() []model.Transaction {
	transactions := []model.Transaction{}
	names := []string{
		"AK-47 | Redline (Field-Tested)",
		"AK-47 | Redline (Field-Tested)",
		"AWP | Asiimov (Battle-Scarred)",
		"Glock-18 | Water Elemental (Minimal Wear)",
	}
	prices := []string{"117.50", "119.00", "301.00", "24.90"}
	ages := []time.Duration{
		12 * time.Hour,
		5 * day,
		10 * day,
		40 * day,
	}

	for i, name := range names {
		transactions = append(transactions, model.Transaction{
			ID:        fmt.Sprintf("transaction-%d", i+1),
			Name:      name,
			CreatedAt: time.Now().Add(-ages[i]).UTC().Format(time.RFC3339),
			Price:     prices[i],
			Metadata: model.TransactionMetadata{
				Market:  "buff",
				AssetID: fmt.Sprintf("asset-%d", i+1),
			},
			Rarity:    "Classified",
			PaintSeed: 100 + i,
		})
	}

	return transactions
}

func fixtureListings() []model.Listing {
	listings := []model.Listing{}
	wears := []string{"0.18", "0.21", "0.35"}

	for i, wear := range wears {
		listings = append(listings, model.Listing{
			ID:        fmt.Sprintf("listing-%d", i+1),
			Name:      "AK-47 | Redline (Field-Tested)",
			Market:    "buff",
			Price:     "121.00",
			CreatedAt: time.Now().Add(-time.Duration(i) * time.Hour).UTC().Format(time.RFC3339),
			UpdatedAt: time.Now().UTC().Format(time.RFC3339),
			PaintWear: wear,
			PaintSeed: 400 + i,
			Rarity:    "Classified",
		})
	}

	return listings
}
