package entity

// Constraints bound what the analyzer accepts as an opportunity.
// MaxInvestment 0 means uncapped.
type Constraints struct {
	MinProfit       int
	MaxInvestment   int
	MaxOrderAgeDays float64
}

var DefaultConstraints = Constraints{ //nolint:gochecknoglobals
	MinProfit:       10,
	MaxInvestment:   0,
	MaxOrderAgeDays: 30,
}

type Opportunity struct {
	ItemName        string
	ItemID          string
	URLName         string
	BuyPrice        int
	SellPrice       int
	NetProfit       int
	Quantity        int
	TotalInvestment int
	ROI             float64
	SourceWTBOrder  Order
}
