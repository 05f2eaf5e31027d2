package model

// 注文の明細。金額はサーバー計算値をそのまま持つ。
type OrderItem struct {
	ID          string      `json:"id"`
	Quantity    int64       `json:"quantity"`
	UnitPrice   int64       `json:"unitPrice"`
	TotalPrice  int64       `json:"totalPrice"`
	GasCylinder GasCylinder `json:"gasCylinder"`
}
