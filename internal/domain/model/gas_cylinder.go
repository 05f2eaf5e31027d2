package model

import "time"

// 商品（ガスボンベ）。在庫と公開フラグはサーバーが握る。
type GasCylinder struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Weight        float64   `json:"weight"`
	Price         int64     `json:"price"`
	Description   string    `json:"description,omitempty"`
	Brand         string    `json:"brand,omitempty"`
	StockQuantity int64     `json:"stockQuantity"`
	IsAvailable   bool      `json:"isAvailable"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	Supplier      string    `json:"supplier,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// 注文できる＝公開中かつ在庫あり。
func (g GasCylinder) IsOrderable() bool {
	return g.IsAvailable && g.StockQuantity > 0
}
