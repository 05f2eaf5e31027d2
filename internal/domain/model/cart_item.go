package model

// カートの明細。ローカル専用で永続化しない。
// Quantity は表示時点で常に [1, StockQuantity] に収まる。
type CartItem struct {
	Cylinder GasCylinder
	Quantity int64
}

// この明細の小計（単価×数量）。
func (it CartItem) LineTotal() int64 {
	return it.Cylinder.Price * it.Quantity
}
