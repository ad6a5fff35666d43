package server

import (
	"context"
	"fmt"
	"net/http"

	"wfm_flipper/internal/domain/entity"
	"wfm_flipper/pkg/httpx/reply"
	"wfm_flipper/pkg/httpx/req"
	"wfm_flipper/pkg/lox"
	"wfm_flipper/pkg/rest"
)

type tradingService interface {
	CreateWTB(ctx context.Context, meta entity.WTBMetadata) (string, error)
	CreateWTS(ctx context.Context, itemID string, price, quantity int) (string, error)
	DeleteOrder(ctx context.Context, orderID string) error
	MyWTBOrders(ctx context.Context) ([]entity.WTBOrder, error)
	DeleteAllWTB(ctx context.Context) (entity.BulkDeleteResult, error)
}

type TradingServer struct {
	trading tradingService
}

func NewTradingServer(trading tradingService) TradingServer {
	return TradingServer{
		trading: trading,
	}
}

func (s TradingServer) postCreateWTB(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.CreateWTBRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	orderID, err := s.trading.CreateWTB(ctx, entity.WTBMetadata{
		ItemID:          request.ItemID,
		ItemName:        request.ItemName,
		BuyPrice:        request.Price,
		SellPrice:       request.SellPrice,
		NetProfit:       request.NetProfit,
		TotalInvestment: request.TotalInvestment,
		Quantity:        max(request.Quantity, 1),
	})
	if err != nil {
		return fmt.Errorf("trading.CreateWTB: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.CreateOrderResponse{
		Success: true,
		OrderID: orderID,
		Message: "Order created successfully",
	})

	return nil
}

func (s TradingServer) postCreateWTS(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.CreateWTSRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	orderID, err := s.trading.CreateWTS(ctx, request.ItemID, request.Price, request.Quantity)
	if err != nil {
		return fmt.Errorf("trading.CreateWTS: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.CreateOrderResponse{
		Success: true,
		OrderID: orderID,
		Message: "Order created successfully",
	})

	return nil
}

func (s TradingServer) postDeleteOrder(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.DeleteOrderRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	if err := s.trading.DeleteOrder(ctx, request.OrderID); err != nil {
		return fmt.Errorf("trading.DeleteOrder: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.Result{
		Success: true,
		Message: "Order deleted successfully",
	})

	return nil
}

func (s TradingServer) getMyWTBOrders(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	orders, err := s.trading.MyWTBOrders(ctx)
	if err != nil {
		return fmt.Errorf("trading.MyWTBOrders: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.WTBOrders{
		Success: true,
		Orders:  lox.Map(orders, newRESTWTBOrder),
	})

	return nil
}

func (s TradingServer) postDeleteAllWTBOrders(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	result, err := s.trading.DeleteAllWTB(ctx)
	if err != nil {
		return fmt.Errorf("trading.DeleteAllWTB: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.Result{
		Success: true,
		Message: bulkDeleteMessage(result),
	})

	return nil
}

func bulkDeleteMessage(result entity.BulkDeleteResult) string {
	switch {
	case result.Deleted == 0 && result.Failed == 0:
		return "No WTB orders found to delete"
	case result.Failed == 0:
		return fmt.Sprintf("Successfully deleted %d WTB orders", result.Deleted)
	default:
		return fmt.Sprintf("Deleted %d WTB orders, %d failed", result.Deleted, result.Failed)
	}
}
