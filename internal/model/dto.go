package model

import (
	"time"
)

// MarketPriceDTO is the wire form of a single marketplace price.
type MarketPriceDTO struct {
	Price     string    `json:"price"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ItemDTO is the wire form of an item as the API returns it.
type ItemDTO struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Skin     string `json:"skin,omitempty"`
	Exterior string `json:"exterior,omitempty"`
	IconURL  string `json:"iconUrl"`

	IgxePrice  *MarketPriceDTO `json:"igxePrice,omitempty"`
	BuffPrice  *MarketPriceDTO `json:"buffPrice,omitempty"`
	UUPrice    *MarketPriceDTO `json:"uuPrice,omitempty"`
	SteamPrice *MarketPriceDTO `json:"steamPrice,omitempty"`
}

// marketPrice returns the price record for a marketplace key, or nil when
// the item has no price on that marketplace.
func (dto *ItemDTO) marketPrice(market string) *MarketPriceDTO {
	switch market {
	case "igxe":
		return dto.IgxePrice
	case "buff":
		return dto.BuffPrice
	case "uu":
		return dto.UUPrice
	case "steam":
		return dto.SteamPrice
	}

	return nil
}

// User represents a marketplace user account.
type User struct {
	ID              string   `json:"_id"`
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	Role            string   `json:"role"`
	SubscriptionIDs []string `json:"subscriptionIds"`
	FavItemIDs      []string `json:"favItemIds"`
	FavListingIDs   []string `json:"favListingIds"`
}

// Subscription represents a price alert subscription for an item name.
type Subscription struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Rarity     string `json:"rarity,omitempty"`
	MaxPremium string `json:"maxPremium,omitempty"`
	NotiType   string `json:"notiType"`
	NotiID     string `json:"notiId"`
	OwnerID    string `json:"ownerId"`
}

// Listing represents a marketplace listing for sale.
type Listing struct {
	ID               string `json:"_id"`
	CreatedAt        string `json:"createdAt"`
	UpdatedAt        string `json:"updatedAt"`
	Name             string `json:"name"`
	Market           string `json:"market"`
	Price            string `json:"price"`
	PreviewURL       string `json:"previewUrl"`
	GoodsID          int    `json:"goodsId"`
	ClassID          string `json:"classId"`
	AssetID          string `json:"assetId"`
	TradableCooldown string `json:"tradableCooldown"`
	PaintWear        string `json:"paintWear"`
	PaintIndex       int    `json:"paintIndex"`
	PaintSeed        int    `json:"paintSeed"`
	Rarity           string `json:"rarity"`
	InstanceID       string `json:"instanceId"`
}

// TransactionMetadata identifies the marketplace asset a transaction
// settled against.
type TransactionMetadata struct {
	Market  string `json:"market"`
	AssetID string `json:"assetId"`
}

// Transaction represents a settled sale of an item.
type Transaction struct {
	ID               string              `json:"_id"`
	Metadata         TransactionMetadata `json:"metadata"`
	Name             string              `json:"name"`
	CreatedAt        string              `json:"createdAt"`
	Price            string              `json:"price"`
	PreviewURL       string              `json:"previewUrl"`
	GoodsID          int                 `json:"goodsId"`
	ClassID          string              `json:"classId"`
	TradableCooldown string              `json:"tradableCooldown"`
	PaintWear        string              `json:"paintWear"`
	PaintIndex       int                 `json:"paintIndex"`
	PaintSeed        int                 `json:"paintSeed"`
	Rarity           string              `json:"rarity"`
	InstanceID       string              `json:"instanceId"`
}
