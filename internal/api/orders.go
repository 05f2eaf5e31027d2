package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"gasapp/internal/domain/model"
)

// 注文作成の事前チェックに失敗した（ネットワークに出る前に弾く）。
var (
	ErrMissingCustomerID = errors.New("customer id is required")
	ErrEmptyOrderItems   = errors.New("order must contain at least one item")
	ErrMissingAddress    = errors.New("delivery address is required")
)

type OrderItemInput struct {
	GasCylinderID string `json:"gasCylinderId"`
	Quantity      int64  `json:"quantity"`
}

type CreateOrderInput struct {
	CustomerID          string           `json:"customerId"`
	Items               []OrderItemInput `json:"items"`
	DeliveryAddress     string           `json:"deliveryAddress"`
	DeliveryLatitude    float64          `json:"deliveryLatitude"`
	DeliveryLongitude   float64          `json:"deliveryLongitude"`
	SpecialInstructions string           `json:"specialInstructions,omitempty"`
}

// 注文更新ボディ（部分更新）。
type UpdateOrderInput struct {
	DeliveryAddress     string   `json:"deliveryAddress,omitempty"`
	DeliveryLatitude    *float64 `json:"deliveryLatitude,omitempty"`
	DeliveryLongitude   *float64 `json:"deliveryLongitude,omitempty"`
	SpecialInstructions string   `json:"specialInstructions,omitempty"`
}

// 一覧の絞り込み。空のフィールドはクエリに乗らない。
type OrderListQuery struct {
	Page       int
	Limit      int
	CustomerID string
	DriverID   string
	Status     model.OrderStatus
	StartDate  string
	EndDate    string
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type OrderPage struct {
	Data       []model.Order `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// 注文の集計（管理画面用）。
type OrderStats struct {
	TotalOrders     int64 `json:"totalOrders"`
	PendingOrders   int64 `json:"pendingOrders"`
	DeliveredOrders int64 `json:"deliveredOrders"`
	CancelledOrders int64 `json:"cancelledOrders"`
	TotalRevenue    int64 `json:"totalRevenue"`
}

// CreateOrder は注文を作る。
// 無駄なネットワーク往復を避けるため、足りない入力はここで落とす。
func (c *Client) CreateOrder(ctx context.Context, token string, in CreateOrderInput) (model.Order, error) {
	var out model.Order

	if strings.TrimSpace(in.CustomerID) == "" {
		return out, ErrMissingCustomerID
	}
	if len(in.Items) == 0 {
		return out, ErrEmptyOrderItems
	}
	if strings.TrimSpace(in.DeliveryAddress) == "" {
		return out, ErrMissingAddress
	}

	err := c.do(ctx, http.MethodPost, "/orders", nil, in, bearer(token), &out)
	return out, err
}

func (c *Client) ListOrders(ctx context.Context, token string, q OrderListQuery) (OrderPage, error) {
	var out OrderPage
	err := c.do(ctx, http.MethodGet, "/orders", q.values(), nil, bearer(token), &out)
	return out, err
}

func (c *Client) GetOrder(ctx context.Context, token string, id string) (model.Order, error) {
	var out model.Order
	err := c.do(ctx, http.MethodGet, "/orders/"+id, nil, nil, bearer(token), &out)
	return out, err
}

func (c *Client) GetOrderByNumber(ctx context.Context, token string, orderNumber string) (model.Order, error) {
	var out model.Order
	err := c.do(ctx, http.MethodGet, "/orders/number/"+orderNumber, nil, nil, bearer(token), &out)
	return out, err
}

func (c *Client) UpdateOrder(ctx context.Context, token string, id string, in UpdateOrderInput) (model.Order, error) {
	var out model.Order
	err := c.do(ctx, http.MethodPut, "/orders/"+id, nil, in, bearer(token), &out)
	return out, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, token string, id string, status model.OrderStatus) (model.Order, error) {
	var out model.Order
	body := map[string]string{"status": string(status)}
	err := c.do(ctx, http.MethodPatch, "/orders/"+id+"/status", nil, body, bearer(token), &out)
	return out, err
}

func (c *Client) UpdatePaymentStatus(ctx context.Context, token string, id string, status model.PaymentStatus) (model.Order, error) {
	var out model.Order
	body := map[string]string{"paymentStatus": string(status)}
	err := c.do(ctx, http.MethodPatch, "/orders/"+id+"/payment-status", nil, body, bearer(token), &out)
	return out, err
}

func (c *Client) AssignDriver(ctx context.Context, token string, id string, driverID string) (model.Order, error) {
	var out model.Order
	body := map[string]string{"driverId": driverID}
	err := c.do(ctx, http.MethodPatch, "/orders/"+id+"/assign", nil, body, bearer(token), &out)
	return out, err
}

func (c *Client) CancelOrder(ctx context.Context, token string, id string) (model.Order, error) {
	var out model.Order
	err := c.do(ctx, http.MethodPost, "/orders/"+id+"/cancel", nil, nil, bearer(token), &out)
	return out, err
}

func (c *Client) DeleteOrder(ctx context.Context, token string, id string) error {
	return c.do(ctx, http.MethodDelete, "/orders/"+id, nil, nil, bearer(token), nil)
}

func (c *Client) ListCustomerOrders(ctx context.Context, token string, customerID string, page int, limit int) (OrderPage, error) {
	var out OrderPage
	q := query(map[string]string{
		"page":  itoaPositive(page),
		"limit": itoaPositive(limit),
	})
	err := c.do(ctx, http.MethodGet, "/orders/customer/"+customerID, q, nil, bearer(token), &out)
	return out, err
}

func (c *Client) ListDriverOrders(ctx context.Context, token string, driverID string, page int, limit int) (OrderPage, error) {
	var out OrderPage
	q := query(map[string]string{
		"page":  itoaPositive(page),
		"limit": itoaPositive(limit),
	})
	err := c.do(ctx, http.MethodGet, "/orders/driver/"+driverID, q, nil, bearer(token), &out)
	return out, err
}

func (c *Client) GetOrderStats(ctx context.Context, token string) (OrderStats, error) {
	var out OrderStats
	err := c.do(ctx, http.MethodGet, "/orders/stats", nil, nil, bearer(token), &out)
	return out, err
}

func (q OrderListQuery) values() url.Values {
	return query(map[string]string{
		"page":       itoaPositive(q.Page),
		"limit":      itoaPositive(q.Limit),
		"customerId": q.CustomerID,
		"driverId":   q.DriverID,
		"status":     string(q.Status),
		"startDate":  q.StartDate,
		"endDate":    q.EndDate,
	})
}

// 0以下は「未指定」としてクエリから落とす。
func itoaPositive(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
