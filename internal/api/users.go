package api

import (
	"context"
	"net/http"

	"gasapp/internal/domain/model"
)

// ユーザー更新のリクエストボディ。nil/空のフィールドは送らない。
type UpdateUserInput struct {
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Address   string   `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	IsActive  *bool    `json:"isActive,omitempty"`
	Role      string   `json:"role,omitempty"`
}

// ページングされたユーザー一覧。
type UserPage struct {
	Data       []model.User `json:"data"`
	Pagination Pagination   `json:"pagination"`
}

// 管理画面向けの一覧。
func (c *Client) ListUsers(ctx context.Context, token string, page int, limit int) (UserPage, error) {
	var out UserPage
	q := query(map[string]string{
		"page":  itoaPositive(page),
		"limit": itoaPositive(limit),
	})
	err := c.do(ctx, http.MethodGet, "/users", q, nil, bearer(token), &out)
	return out, err
}

func (c *Client) GetUser(ctx context.Context, token string, id string) (model.User, error) {
	var out model.User
	err := c.do(ctx, http.MethodGet, "/users/"+id, nil, nil, bearer(token), &out)
	return out, err
}

func (c *Client) CreateUser(ctx context.Context, token string, in RegisterInput) (model.User, error) {
	var out model.User
	err := c.do(ctx, http.MethodPost, "/users", nil, in, bearer(token), &out)
	return out, err
}

func (c *Client) UpdateUser(ctx context.Context, token string, id string, in UpdateUserInput) (model.User, error) {
	var out model.User
	err := c.do(ctx, http.MethodPut, "/users/"+id, nil, in, bearer(token), &out)
	return out, err
}

func (c *Client) DeleteUser(ctx context.Context, token string, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+id, nil, nil, bearer(token), nil)
}
