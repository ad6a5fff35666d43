package entity

import "time"

// WTBMetadata is what we remember about a buy order we placed: the analysis
// numbers the market itself does not keep.
type WTBMetadata struct {
	ItemID          string
	ItemName        string
	BuyPrice        int
	SellPrice       *int
	NetProfit       *int
	TotalInvestment *int
	Quantity        int
}

// NewOrder is a request to place an order on the market.
type NewOrder struct {
	ItemID   string
	Type     OrderType
	Platinum int
	Quantity int
}

// WTBOrder is a live buy order merged with stored metadata.
type WTBOrder struct {
	ID              string
	ItemID          string
	ItemName        string
	BuyPrice        int
	SellPrice       *int
	NetProfit       *int
	TotalInvestment *int
	Quantity        int
	Platinum        int
	CreatedAt       time.Time
}

// BulkDeleteResult counts the outcome of deleting many orders.
type BulkDeleteResult struct {
	Deleted int
	Failed  int
}
