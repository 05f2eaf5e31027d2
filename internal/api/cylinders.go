package api

import (
	"context"
	"net/http"

	"gasapp/internal/domain/model"
)

// ガスボンベの登録・更新ボディ（管理者用）。
type CylinderInput struct {
	Name          string  `json:"name"`
	Weight        float64 `json:"weight"`
	Price         int64   `json:"price"`
	Description   string  `json:"description,omitempty"`
	Brand         string  `json:"brand,omitempty"`
	StockQuantity int64   `json:"stockQuantity"`
	IsAvailable   bool    `json:"isAvailable"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	Supplier      string  `json:"supplier,omitempty"`
}

// 公開一覧。認証不要。
func (c *Client) ListCylinders(ctx context.Context) ([]model.GasCylinder, error) {
	var out []model.GasCylinder
	err := c.do(ctx, http.MethodGet, "/gas-cylinders", nil, nil, nil, &out)
	return out, err
}

func (c *Client) GetCylinder(ctx context.Context, id string) (model.GasCylinder, error) {
	var out model.GasCylinder
	err := c.do(ctx, http.MethodGet, "/gas-cylinders/"+id, nil, nil, nil, &out)
	return out, err
}

func (c *Client) CreateCylinder(ctx context.Context, token string, in CylinderInput) (model.GasCylinder, error) {
	var out model.GasCylinder
	err := c.do(ctx, http.MethodPost, "/gas-cylinders", nil, in, bearer(token), &out)
	return out, err
}

func (c *Client) UpdateCylinder(ctx context.Context, token string, id string, in CylinderInput) (model.GasCylinder, error) {
	var out model.GasCylinder
	err := c.do(ctx, http.MethodPut, "/gas-cylinders/"+id, nil, in, bearer(token), &out)
	return out, err
}

func (c *Client) DeleteCylinder(ctx context.Context, token string, id string) error {
	return c.do(ctx, http.MethodDelete, "/gas-cylinders/"+id, nil, nil, bearer(token), nil)
}
