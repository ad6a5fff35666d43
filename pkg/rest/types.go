// Package rest holds the JSON shapes of the HTTP facade.
package rest

import "time"

// Error Error model
type Error struct {
	// Code Error code
	Code ErrorCode `json:"code"`

	// Message Human readable message
	Message string `json:"message"`

	// SupportID Trace id of the failed request
	SupportID string `json:"supportId,omitempty"`
}

// ErrorCode Error code
type ErrorCode string

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Item struct {
	ID       string `json:"id"`
	ItemName string `json:"item_name"`
	URLName  string `json:"url_name"`
}

type TradingCalcRequest struct {
	Items           []Item   `json:"items" validate:"omitempty,dive"`
	MinProfit       *int     `json:"minProfit" validate:"omitempty,gte=0"`
	MaxInvestment   *int     `json:"maxInvestment" validate:"omitempty,gte=0"`
	MaxOrderAgeDays *float64 `json:"maxOrderAgeDays" validate:"omitempty,gt=0"`
	BatchSize       int      `json:"batchSize" validate:"gte=0"`
}

// TradingCalcResponse LegacyJobID repeats JobID under the key older frontends read
type TradingCalcResponse struct {
	JobID       string `json:"jobId"`
	LegacyJobID string `json:"job_id"`
	Total       int    `json:"total"`
}

type OrderUser struct {
	IngameName string `json:"ingame_name"`
	Status     string `json:"status"`
}

type Order struct {
	ID           string     `json:"id"`
	OrderType    string     `json:"order_type"`
	Platinum     int        `json:"platinum"`
	Quantity     int        `json:"quantity"`
	CreationDate *time.Time `json:"creation_date"`
	LastUpdate   *time.Time `json:"last_update"`
	User         OrderUser  `json:"user"`
}

type Opportunity struct {
	ItemName        string  `json:"itemName"`
	ItemID          string  `json:"itemId"`
	URLName         string  `json:"urlName"`
	BuyPrice        int     `json:"buyPrice"`
	SellPrice       int     `json:"sellPrice"`
	NetProfit       int     `json:"netProfit"`
	Quantity        int     `json:"quantity"`
	TotalInvestment int     `json:"totalInvestment"`
	ROI             float64 `json:"roi"`
	SourceWTBOrder  Order   `json:"sourceWtbOrder"`
}

type Progress struct {
	JobID       string        `json:"jobId"`
	Status      string        `json:"status"`
	Progress    int           `json:"progress"`
	Total       int           `json:"total"`
	Results     []Opportunity `json:"results"`
	Cancelled   bool          `json:"cancelled"`
	FailedItems int           `json:"failedItems"`
	Error       string        `json:"error,omitempty"`
}

type CancelRequest struct {
	JobID string `json:"jobId"`
}

type CancelResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Cancelled int    `json:"cancelled"`
}

// RateLimitStatus Durations are in milliseconds, 0 when not applicable
type RateLimitStatus struct {
	ActiveRequests     int   `json:"activeRequests"`
	MaxConcurrent      int   `json:"maxConcurrent"`
	RequestsInWindow   int   `json:"requestsInWindow"`
	RequestsPerSecond  int   `json:"requestsPerSecond"`
	RateLimitDetected  bool  `json:"rateLimitDetected"`
	TimeSinceRateLimit int64 `json:"timeSinceRateLimit"`
	CooldownRemaining  int64 `json:"cooldownRemaining"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Token    string `json:"token,omitempty"`
	Username string `json:"username,omitempty"`
}

type SessionStatus struct {
	LoggedIn  bool       `json:"loggedIn"`
	Username  string     `json:"username"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

type CreateWTBRequest struct {
	ItemID          string `json:"item_id" validate:"required"`
	ItemName        string `json:"item_name"`
	Price           int    `json:"price" validate:"gt=0"`
	Quantity        int    `json:"quantity" validate:"gte=0"`
	SellPrice       *int   `json:"sell_price"`
	NetProfit       *int   `json:"net_profit"`
	TotalInvestment *int   `json:"total_investment"`
}

type CreateWTSRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Price    int    `json:"price" validate:"gt=0"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

type CreateOrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id"`
	Message string `json:"message"`
}

type DeleteOrderRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}

type WTBOrder struct {
	ID              string     `json:"id"`
	ItemID          string     `json:"item_id"`
	ItemName        string     `json:"itemName"`
	BuyPrice        int        `json:"buyPrice"`
	SellPrice       *int       `json:"sellPrice"`
	NetProfit       *int       `json:"netProfit"`
	TotalInvestment *int       `json:"totalInvestment"`
	Quantity        int        `json:"quantity"`
	CreationDate    *time.Time `json:"creation_date"`
	Platinum        int        `json:"platinum"`
}

type WTBOrders struct {
	Success bool       `json:"success"`
	Orders  []WTBOrder `json:"orders"`
}
