package api

import (
	"context"
	"net/http"

	"gasapp/internal/domain/model"
)

// POST /auth/login のリクエストボディ。
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /auth/register のリクエストボディ。
type RegisterInput struct {
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Phone     string   `json:"phone"`
	Address   string   `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// login/register/refresh が返すユーザーとトークンの組。
type AuthResult struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

func (c *Client) Login(ctx context.Context, in Credentials) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, in, nil, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/register", nil, in, nil, &out)
	return out, err
}

// Verify はトークンがまだ有効か確認して、最新のユーザーを返す。
func (c *Client) Verify(ctx context.Context, token string) (model.User, error) {
	var out struct {
		User model.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/auth/verify", nil, nil, bearer(token), &out)
	return out.User, err
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, bearer(token), nil)
}

func (c *Client) Refresh(ctx context.Context, token string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, nil, bearer(token), &out)
	return out, err
}
