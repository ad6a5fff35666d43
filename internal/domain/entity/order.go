package entity

import "time"

type OrderType string

const (
	OrderTypeBuy  OrderType = "buy"
	OrderTypeSell OrderType = "sell"
)

const UserStatusIngame = "ingame"

// Order is a snapshot of a market order as returned by the upstream API.
type Order struct {
	ID         string
	Type       OrderType
	Platinum   int
	Quantity   int
	ItemID     string
	Visible    bool
	UserName   string
	UserStatus string
	// CreatedAt is zero when the upstream date was missing or unparseable.
	CreatedAt  time.Time
	LastUpdate time.Time
}

func (o Order) IsBuy() bool {
	return o.Type == OrderTypeBuy
}

func (o Order) IsSell() bool {
	return o.Type == OrderTypeSell
}

func (o Order) IsIngame() bool {
	return o.UserStatus == UserStatusIngame
}
