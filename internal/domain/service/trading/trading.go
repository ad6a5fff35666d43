// Package trading places and removes the logged-in user's market orders and
// keeps the analysis numbers of buy orders alongside them.
package trading

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"wfm_flipper/internal/domain"
	"wfm_flipper/internal/domain/entity"
	"wfm_flipper/pkg/contextx"
	"wfm_flipper/pkg/errcodes"
	"wfm_flipper/pkg/logx"
)

const unknownItemName = "Unknown Item"

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type MarketClient interface {
	CreateOrder(ctx context.Context, order entity.NewOrder) (string, error)
	DeleteOrder(ctx context.Context, orderID string) error
	ProfileOrders(ctx context.Context, username string) ([]entity.Order, []entity.Order, error)
}

type MetadataStore interface {
	Set(username, orderID string, meta entity.WTBMetadata)
	GetAll(username string) map[string]entity.WTBMetadata
	Delete(username, orderID string)
	DeleteAll(username string)
}

type Service struct {
	market   MarketClient
	metadata MetadataStore
}

func NewService(market MarketClient, metadata MetadataStore) *Service {
	return &Service{
		market:   market,
		metadata: metadata,
	}
}

// CreateWTB places a buy order and remembers meta for it.
func (s *Service) CreateWTB(ctx context.Context, meta entity.WTBMetadata) (string, error) {
	username, err := currentUser(ctx)
	if err != nil {
		return "", err
	}

	orderID, err := s.market.CreateOrder(ctx, entity.NewOrder{
		ItemID:   meta.ItemID,
		Type:     entity.OrderTypeBuy,
		Platinum: meta.BuyPrice,
		Quantity: max(meta.Quantity, 1),
	})
	if err != nil {
		return "", fmt.Errorf("market.CreateOrder: %w", err)
	}

	if orderID != "" {
		s.metadata.Set(username, orderID, meta)
	}

	logger(ctx).Info("wtb order created",
		slog.String(logx.FieldOrderID, orderID),
		slog.String(logx.FieldItem, meta.ItemName),
	)

	return orderID, nil
}

func (s *Service) CreateWTS(ctx context.Context, itemID string, price, quantity int) (string, error) {
	if _, err := currentUser(ctx); err != nil {
		return "", err
	}

	orderID, err := s.market.CreateOrder(ctx, entity.NewOrder{
		ItemID:   itemID,
		Type:     entity.OrderTypeSell,
		Platinum: price,
		Quantity: max(quantity, 1),
	})
	if err != nil {
		return "", fmt.Errorf("market.CreateOrder: %w", err)
	}

	logger(ctx).Info("wts order created", slog.String(logx.FieldOrderID, orderID))

	return orderID, nil
}

func (s *Service) DeleteOrder(ctx context.Context, orderID string) error {
	username, err := currentUser(ctx)
	if err != nil {
		return err
	}

	if err = s.market.DeleteOrder(ctx, orderID); err != nil {
		return fmt.Errorf("market.DeleteOrder: %w", err)
	}

	s.metadata.Delete(username, orderID)

	return nil
}

// MyWTBOrders lists the user's live buy orders. Orders placed elsewhere have
// no metadata and fall back to what the market reports.
func (s *Service) MyWTBOrders(ctx context.Context) ([]entity.WTBOrder, error) {
	username, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	buys, _, err := s.market.ProfileOrders(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("market.ProfileOrders: %w", err)
	}

	metadata := s.metadata.GetAll(username)

	return lo.Map(buys, func(order entity.Order, _ int) entity.WTBOrder {
		return mergeMetadata(order, metadata[order.ID])
	}), nil
}

// DeleteAllWTB removes every buy order of the user. Failures are counted,
// not returned; the user's metadata is cleared either way.
func (s *Service) DeleteAllWTB(ctx context.Context) (entity.BulkDeleteResult, error) {
	username, err := currentUser(ctx)
	if err != nil {
		return entity.BulkDeleteResult{}, err
	}

	buys, _, err := s.market.ProfileOrders(ctx, username)
	if err != nil {
		return entity.BulkDeleteResult{}, fmt.Errorf("market.ProfileOrders: %w", err)
	}

	var result entity.BulkDeleteResult

	for _, order := range buys {
		if err = s.market.DeleteOrder(ctx, order.ID); err != nil {
			logger(ctx).Warn("delete wtb order failed",
				slog.String(logx.FieldOrderID, order.ID),
				logx.Error(err),
			)

			result.Failed++

			continue
		}

		result.Deleted++
	}

	s.metadata.DeleteAll(username)

	return result, nil
}

func mergeMetadata(order entity.Order, meta entity.WTBMetadata) entity.WTBOrder {
	return entity.WTBOrder{
		ID:              order.ID,
		ItemID:          lo.CoalesceOrEmpty(meta.ItemID, order.ItemID),
		ItemName:        lo.CoalesceOrEmpty(meta.ItemName, unknownItemName),
		BuyPrice:        lo.CoalesceOrEmpty(meta.BuyPrice, order.Platinum),
		SellPrice:       meta.SellPrice,
		NetProfit:       meta.NetProfit,
		TotalInvestment: meta.TotalInvestment,
		Quantity:        lo.CoalesceOrEmpty(meta.Quantity, order.Quantity),
		Platinum:        order.Platinum,
		CreatedAt:       order.CreatedAt,
	}
}

func currentUser(ctx context.Context) (string, error) {
	username, err := contextx.UsernameFromContext(ctx)
	if err != nil {
		return "", domain.NewError(errcodes.AuthRequired, "Not logged in")
	}

	return username.String(), nil
}
