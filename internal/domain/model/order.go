package model

import "time"

// 注文ステータス。サーバーが決める値で、クライアントは表示とキャンセル可否にだけ使う。
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusAssigned  OrderStatus = "assigned"
	OrderStatusInTransit OrderStatus = "in_transit"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type Order struct {
	ID                    string        `json:"id"`
	OrderNumber           string        `json:"orderNumber"`
	Customer              User          `json:"customer"`
	Driver                *User         `json:"driver,omitempty"`
	Status                OrderStatus   `json:"status"`
	PaymentStatus         PaymentStatus `json:"paymentStatus"`
	TotalAmount           int64         `json:"totalAmount"`
	DeliveryFee           int64         `json:"deliveryFee"`
	DeliveryAddress       string        `json:"deliveryAddress"`
	DeliveryLatitude      float64       `json:"deliveryLatitude"`
	DeliveryLongitude     float64       `json:"deliveryLongitude"`
	SpecialInstructions   string        `json:"specialInstructions,omitempty"`
	EstimatedDeliveryTime *time.Time    `json:"estimatedDeliveryTime,omitempty"`
	ActualDeliveryTime    *time.Time    `json:"actualDeliveryTime,omitempty"`
	Items                 []OrderItem   `json:"items"`
	CreatedAt             time.Time     `json:"createdAt"`
	UpdatedAt             time.Time     `json:"updatedAt"`
}

// キャンセルできるのは pending / confirmed のときだけ。
func (o Order) CanCancel() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// 画面ラベル。未知の値はそのまま返す（サーバー都合で増えても壊さない）。
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPending:
		return "受付中"
	case OrderStatusConfirmed:
		return "確定"
	case OrderStatusAssigned:
		return "配達員決定"
	case OrderStatusInTransit:
		return "配達中"
	case OrderStatusDelivered:
		return "配達完了"
	case OrderStatusCancelled:
		return "キャンセル"
	default:
		return string(s)
	}
}

func (s PaymentStatus) Label() string {
	switch s {
	case PaymentStatusPending:
		return "未払い"
	case PaymentStatusPaid:
		return "支払済み"
	case PaymentStatusFailed:
		return "支払失敗"
	case PaymentStatusRefunded:
		return "返金済み"
	default:
		return string(s)
	}
}
