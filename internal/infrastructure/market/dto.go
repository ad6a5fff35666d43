package market

import (
	"math"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"

	"wfm_flipper/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

type userSchema struct {
	IngameName string `json:"ingame_name"`
	Slug       string `json:"slug"`
	Status     string `json:"status"`
}

type orderItemSchema struct {
	ID string `json:"id"`
}

type orderSchema struct {
	ID           string           `json:"id"`
	OrderType    string           `json:"order_type"`
	Platinum     float64          `json:"platinum"`
	Quantity     int              `json:"quantity"`
	Visible      bool             `json:"visible"`
	CreationDate string           `json:"creation_date"`
	LastUpdate   string           `json:"last_update"`
	User         userSchema       `json:"user"`
	Item         *orderItemSchema `json:"item"`
}

func (o orderSchema) toDomain() entity.Order {
	order := entity.Order{
		ID:         o.ID,
		Type:       entity.OrderType(o.OrderType),
		Platinum:   int(math.Round(o.Platinum)),
		Quantity:   o.Quantity,
		Visible:    o.Visible,
		UserName:   o.User.IngameName,
		UserStatus: o.User.Status,
		CreatedAt:  parseTime(o.CreationDate),
		LastUpdate: parseTime(o.LastUpdate),
	}

	if o.Item != nil {
		order.ItemID = o.Item.ID
	}

	return order
}

func ordersToDomain(orders []orderSchema) []entity.Order {
	return lo.Map(orders, func(o orderSchema, _ int) entity.Order { return o.toDomain() })
}

// parseTime returns the zero time for empty or malformed dates.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}

	return t
}

type itemOrdersResponse struct {
	Payload struct {
		Orders []orderSchema `json:"orders"`
	} `json:"payload"`
}

type itemSchema struct {
	ID       string `json:"id"`
	URLName  string `json:"url_name"`
	ItemName string `json:"item_name"`
}

func (i itemSchema) toDomain() entity.Item {
	return entity.Item{
		ID:      i.ID,
		Name:    i.ItemName,
		URLName: i.URLName,
	}
}

type itemsResponse struct {
	Payload struct {
		Items []itemSchema `json:"items"`
	} `json:"payload"`
}

type profileOrdersResponse struct {
	Payload struct {
		BuyOrders  []orderSchema `json:"buy_orders"`
		SellOrders []orderSchema `json:"sell_orders"`
	} `json:"payload"`
}

type createOrderRequest struct {
	Item      string `json:"item"`
	OrderType string `json:"order_type"`
	Platinum  int    `json:"platinum"`
	Quantity  int    `json:"quantity"`
	Visible   bool   `json:"visible"`
}

type createOrderResponse struct {
	Payload struct {
		Order struct {
			ID string `json:"id"`
		} `json:"order"`
	} `json:"payload"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	Payload struct {
		User userSchema `json:"user"`
	} `json:"payload"`
}

type errorEnvelope struct {
	Error jsoniter.RawMessage `json:"error"`
}

// errorMessage digs the upstream error text out of an error body. The API
// answers with {"error": {"message": ...}}, {"error": "..."} or
// {"error": {"field": ["app.code"]}}.
func errorMessage(body []byte) string {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Error, &text); err == nil {
		return text
	}

	var withMessage struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &withMessage); err == nil && withMessage.Message != "" {
		return withMessage.Message
	}

	return string(envelope.Error)
}
