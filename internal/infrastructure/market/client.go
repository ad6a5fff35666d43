// Package market talks to the Warframe Market REST API.
package market

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"wfm_flipper/internal/config"
	"wfm_flipper/internal/domain"
	"wfm_flipper/internal/domain/entity"
	"wfm_flipper/internal/infrastructure/ratelimit"
	"wfm_flipper/pkg/contextx"
	"wfm_flipper/pkg/errcodes"
	"wfm_flipper/pkg/httpx"
	"wfm_flipper/pkg/logx"
)

const (
	maxBodySize     = 10 << 20
	catalogCacheKey = "catalog"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type limiter interface {
	Acquire(ctx context.Context) error
	Release()
	Observe(statusCode int)
}

type authHeaderSource interface {
	AuthHeaders() (http.Header, bool)
}

type observer interface {
	ObserveUpstream(operation string, code int, seconds float64)
}

// Client performs every call through the rate limiter and feeds upstream
// status codes back into it. Session headers are attached by the transport.
type Client struct {
	baseURL   string
	platform  string
	language  string
	userAgent string
	http      *http.Client
	limiter   limiter
	metrics   observer

	orders       *cache.Cache
	catalog      *cache.Cache
	ordersTTL    time.Duration
	ordersFlight singleflight.Group
}

// Response is an upstream answer passed through as is.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func NewClient(
	cfg config.Market,
	limiter limiter,
	session authHeaderSource,
	metrics observer,
	transport http.RoundTripper,
) *Client {
	if transport == nil {
		transport = http.DefaultTransport
	}

	if session == nil {
		session = noSession{}
	}

	if metrics == nil {
		metrics = noMetrics{}
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		platform:  cfg.Platform,
		language:  cfg.Language,
		userAgent: cfg.UserAgent,
		http: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: httpx.NewAuthHeadersRoundTripper(transport, session),
		},
		limiter:   limiter,
		metrics:   metrics,
		orders:    cache.New(cfg.OrdersCacheTTL, time.Minute),
		catalog:   cache.New(cfg.CatalogCacheTTL, time.Hour),
		ordersTTL: cfg.OrdersCacheTTL,
	}
}

// Items returns the tradable item catalog, cached for the catalog TTL.
func (c *Client) Items(ctx context.Context) ([]entity.Item, error) {
	if v, ok := c.catalog.Get(catalogCacheKey); ok {
		return v.([]entity.Item), nil //nolint:forcetypeassert
	}

	var resp itemsResponse
	if err := c.getJSON(ctx, "items", "/items", nil, &resp); err != nil {
		return nil, fmt.Errorf("getJSON: %w", err)
	}

	items := make([]entity.Item, 0, len(resp.Payload.Items))
	for _, it := range resp.Payload.Items {
		items = append(items, it.toDomain())
	}

	c.catalog.SetDefault(catalogCacheKey, items)

	return items, nil
}

// ItemOrders returns the current order book of one item. Concurrent calls
// for the same item share one upstream request.
func (c *Client) ItemOrders(ctx context.Context, urlName string) ([]entity.Order, error) {
	if urlName == "" {
		return nil, nil
	}

	if v, ok := c.orders.Get(urlName); ok {
		return v.([]entity.Order), nil //nolint:forcetypeassert
	}

	v, err, _ := c.ordersFlight.Do(urlName, func() (any, error) {
		var resp itemOrdersResponse

		path := "/items/" + url.PathEscape(urlName) + "/orders"
		if err := c.getJSON(ctx, "item_orders", path, url.Values{"include": {"item"}}, &resp); err != nil {
			return nil, err
		}

		orders := ordersToDomain(resp.Payload.Orders)

		if c.ordersTTL > 0 {
			c.orders.SetDefault(urlName, orders)
		}

		return orders, nil
	})
	if err != nil {
		return nil, fmt.Errorf("item orders %q: %w", urlName, err)
	}

	return v.([]entity.Order), nil //nolint:forcetypeassert
}

// ProfileOrders returns the buy and sell orders of a market user.
func (c *Client) ProfileOrders(ctx context.Context, username string) ([]entity.Order, []entity.Order, error) {
	var resp profileOrdersResponse

	path := "/profile/" + url.PathEscape(username) + "/orders"
	if err := c.getJSON(ctx, "profile_orders", path, nil, &resp); err != nil {
		return nil, nil, fmt.Errorf("getJSON: %w", err)
	}

	return ordersToDomain(resp.Payload.BuyOrders), ordersToDomain(resp.Payload.SellOrders), nil
}

// CreateOrder places a visible order and returns its id.
func (c *Client) CreateOrder(ctx context.Context, order entity.NewOrder) (string, error) {
	body, err := json.Marshal(createOrderRequest{
		Item:      order.ItemID,
		OrderType: string(order.Type),
		Platinum:  order.Platinum,
		Quantity:  order.Quantity,
		Visible:   true,
	})
	if err != nil {
		return "", fmt.Errorf("json.Marshal: %w", err)
	}

	resp, err := c.do(ctx, "create_order", http.MethodPost, "/profile/orders", nil, body)
	if err != nil {
		return "", err
	}

	if err = expectOK(resp); err != nil {
		return "", err
	}

	var created createOrderResponse
	if err = json.Unmarshal(resp.Body, &created); err != nil {
		return "", domain.WrapError(err, errcodes.UpstreamHTTPError, "malformed create order response")
	}

	return created.Payload.Order.ID, nil
}

func (c *Client) DeleteOrder(ctx context.Context, orderID string) error {
	resp, err := c.do(ctx, "delete_order", http.MethodDelete, "/profile/orders/"+url.PathEscape(orderID), nil, nil)
	if err != nil {
		return err
	}

	return expectOK(resp)
}

// Forward relays an arbitrary call to the API. Non-2xx answers are returned,
// not turned into errors.
func (c *Client) Forward(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	body []byte,
) (Response, error) {
	return c.do(ctx, "proxy", method, "/"+strings.TrimLeft(path, "/"), query, body)
}

func (c *Client) getJSON(ctx context.Context, operation, path string, query url.Values, dest any) error {
	resp, err := c.do(ctx, operation, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}

	if err = expectOK(resp); err != nil {
		return err
	}

	if err = json.Unmarshal(resp.Body, dest); err != nil {
		return domain.WrapError(err, errcodes.UpstreamHTTPError, "malformed "+operation+" response")
	}

	return nil
}

func (c *Client) do(
	ctx context.Context,
	operation string,
	method string,
	path string,
	query url.Values,
	body []byte,
) (Response, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return Response{}, fmt.Errorf("limiter.Acquire: %w", err)
	}
	defer c.limiter.Release()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return Response{}, domain.WrapError(err, errcodes.InternalServerError, "build market request")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Platform", c.platform)
	req.Header.Set("Language", c.language)
	req.Header.Set("User-Agent", c.userAgent)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(operation, 0, time.Since(start).Seconds())

		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return Response{}, fmt.Errorf("http.Do: %w", ctxErr)
		}

		return Response{}, domain.WrapError(err, errcodes.NetworkError, "market request failed")
	}
	defer resp.Body.Close()

	c.limiter.Observe(resp.StatusCode)
	c.metrics.ObserveUpstream(operation, resp.StatusCode, time.Since(start).Seconds())

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Response{}, domain.WrapError(err, errcodes.NetworkError, "read market response")
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		logger(ctx).Warn("market answered 429", slog.String("operation", operation), slog.String(logx.FieldURL, path))
	}

	return Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

func expectOK(resp Response) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ratelimit.ErrRateLimited
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		return nil
	}

	message := errorMessage(resp.Body)
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return domain.NewUpstreamError(resp.StatusCode, fmt.Sprintf("market %d: %s", resp.StatusCode, message))
}

type noSession struct{}

func (noSession) AuthHeaders() (http.Header, bool) { return nil, false }

type noMetrics struct{}

func (noMetrics) ObserveUpstream(string, int, float64) {}
