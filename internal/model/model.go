package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote represents the price of one cryptocurrency asset at a point in time
type Quote struct {
	AssetID string          `json:"asset_id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price_usd"`
}

// Catalog represents a snapshot of every known quote
type Catalog struct {
	Quotes    []Quote   `json:"quotes"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Position represents an open investment in one asset
type Position struct {
	AssetID   string          `json:"asset_id"`
	Name      string          `json:"name"`
	Purchased decimal.Decimal `json:"purchased"`
	Amount    decimal.Decimal `json:"amount"`
}

// Sale represents a finished investment and its realized profit
type Sale struct {
	AssetID      string          `json:"asset_id"`
	Name         string          `json:"name"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Profit       decimal.Decimal `json:"profit"`
}

// User represents a registered wallet user
type User struct {
	Username     string              `json:"username"`
	PasswordHash string              `json:"password"`
	Money        decimal.Decimal     `json:"money"`
	Positions    map[string]Position `json:"positions"`
	Sales        []Sale              `json:"sales"`
}

// NewUser creates a user with no money and no investments.
func NewUser(username string, passwordHash string) *User {
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		Money:        decimal.Zero,
		Positions:    map[string]Position{},
	}
}
