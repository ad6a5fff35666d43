package server

import (
	"time"

	"github.com/samber/lo"

	"wfm_flipper/internal/domain/entity"
	"wfm_flipper/internal/infrastructure/ratelimit"
	"wfm_flipper/pkg/lox"
	"wfm_flipper/pkg/rest"
)

func newDomainItems(items []rest.Item) []entity.Item {
	return lo.Map(items, func(item rest.Item, _ int) entity.Item {
		return entity.Item{
			ID:      item.ID,
			Name:    item.ItemName,
			URLName: item.URLName,
		}
	})
}

// newDomainConstraints fills the fields the request left out with defaults.
func newDomainConstraints(request rest.TradingCalcRequest) entity.Constraints {
	constraints := entity.DefaultConstraints

	if request.MinProfit != nil {
		constraints.MinProfit = *request.MinProfit
	}

	if request.MaxInvestment != nil {
		constraints.MaxInvestment = *request.MaxInvestment
	}

	if request.MaxOrderAgeDays != nil {
		constraints.MaxOrderAgeDays = *request.MaxOrderAgeDays
	}

	return constraints
}

func newRESTProgress(job entity.Job) rest.Progress {
	return rest.Progress{
		JobID:       job.ID,
		Status:      string(job.Status),
		Progress:    job.Progress,
		Total:       job.Total,
		Results:     lox.Map(job.Results, newRESTOpportunity),
		Cancelled:   job.Cancelled,
		FailedItems: job.FailedItems,
		Error:       job.Error,
	}
}

func newRESTOpportunity(o entity.Opportunity) rest.Opportunity {
	return rest.Opportunity{
		ItemName:        o.ItemName,
		ItemID:          o.ItemID,
		URLName:         o.URLName,
		BuyPrice:        o.BuyPrice,
		SellPrice:       o.SellPrice,
		NetProfit:       o.NetProfit,
		Quantity:        o.Quantity,
		TotalInvestment: o.TotalInvestment,
		ROI:             o.ROI,
		SourceWTBOrder:  newRESTOrder(o.SourceWTBOrder),
	}
}

func newRESTOrder(o entity.Order) rest.Order {
	return rest.Order{
		ID:           o.ID,
		OrderType:    string(o.Type),
		Platinum:     o.Platinum,
		Quantity:     o.Quantity,
		CreationDate: timePtr(o.CreatedAt),
		LastUpdate:   timePtr(o.LastUpdate),
		User: rest.OrderUser{
			IngameName: o.UserName,
			Status:     o.UserStatus,
		},
	}
}

func newRESTWTBOrder(o entity.WTBOrder) rest.WTBOrder {
	return rest.WTBOrder{
		ID:              o.ID,
		ItemID:          o.ItemID,
		ItemName:        o.ItemName,
		BuyPrice:        o.BuyPrice,
		SellPrice:       o.SellPrice,
		NetProfit:       o.NetProfit,
		TotalInvestment: o.TotalInvestment,
		Quantity:        o.Quantity,
		CreationDate:    timePtr(o.CreatedAt),
		Platinum:        o.Platinum,
	}
}

func newRESTSessionStatus(status entity.SessionStatus) rest.SessionStatus {
	return rest.SessionStatus{
		LoggedIn:  status.LoggedIn,
		Username:  status.Username,
		ExpiresAt: timePtr(status.ExpiresAt),
	}
}

func newRESTRateLimitStatus(status ratelimit.Status) rest.RateLimitStatus {
	return rest.RateLimitStatus{
		ActiveRequests:     status.ActiveRequests,
		MaxConcurrent:      status.MaxConcurrent,
		RequestsInWindow:   status.RequestsInWindow,
		RequestsPerSecond:  status.RequestsPerSecond,
		RateLimitDetected:  status.RateLimitDetected,
		TimeSinceRateLimit: status.TimeSinceRateLimit.Milliseconds(),
		CooldownRemaining:  status.CooldownRemaining.Milliseconds(),
	}
}

// timePtr maps the zero time to nil so it encodes as null.
func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}
