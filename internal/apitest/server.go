// Package apitest はテスト用のリモートAPIの代役。
// 本物のガス配達APIと同じ形のレスポンスをインプロセスで返す。
package apitest

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"gasapp/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	user         model.User
	passwordHash string
}

// Server は偽APIの全状態を持つ。
type Server struct {
	e      *echo.Echo
	secret []byte

	mu        sync.Mutex
	accounts  map[string]*account // email -> account
	cylinders []model.GasCylinder
	orders    []model.Order
	orderSeq  int

	// テストから故障を注入するためのスイッチ
	FailLogout  bool // POST /auth/logout を500にする
	FailVerify  bool // GET /auth/verify を401にする
	FailRefresh bool // POST /auth/refresh を401にする
}

func NewServer() *Server {
	s := &Server{
		e:        echo.New(),
		secret:   []byte("apitest_secret"),
		accounts: map[string]*account{},
	}
	s.e.HideBanner = true
	s.routes()
	return s
}

// Handler は httptest.NewServer にそのまま渡せる。
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) routes() {
	s.e.GET("/health", s.health)

	s.e.POST("/auth/register", s.register)
	s.e.POST("/auth/login", s.login)
	s.e.GET("/auth/verify", s.verify)
	s.e.POST("/auth/logout", s.logout)
	s.e.POST("/auth/refresh", s.refresh)

	s.e.GET("/gas-cylinders", s.listCylinders)
	s.e.GET("/gas-cylinders/:id", s.getCylinder)

	s.e.POST("/orders", s.createOrder)
	s.e.GET("/orders/customer/:customerId", s.listCustomerOrders)
	s.e.POST("/orders/:id/cancel", s.cancelOrder)
	s.e.GET("/orders/stats", s.orderStats)
}

// ==== シードヘルパ ====

// SeedUser はbcryptでパスワードを保存してユーザーを登録する。
func (s *Server) SeedUser(email string, password string, role model.Role) model.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	u := model.User{
		ID:        uuid.NewString(),
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.accounts[email] = &account{user: u, passwordHash: string(hash)}
	s.mu.Unlock()
	return u
}

func (s *Server) SeedCylinder(cyl model.GasCylinder) model.GasCylinder {
	if cyl.ID == "" {
		cyl.ID = uuid.NewString()
	}

	s.mu.Lock()
	s.cylinders = append(s.cylinders, cyl)
	s.mu.Unlock()
	return cyl
}

// Cylinder は現在の在庫を覗く（テストの検証用）。
func (s *Server) Cylinder(id string) (model.GasCylinder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cylinders {
		if c.ID == id {
			return c, true
		}
	}
	return model.GasCylinder{}, false
}

// IssueToken は任意のユーザーのトークンを作る。
func (s *Server) IssueToken(userID string, ttl time.Duration) string {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

// ==== ハンドラ ====

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type authRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type authResponse struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

func (s *Server) register(c echo.Context) error {
	var req authRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("Invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, errorJSON("Email and password are required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[req.Email]; exists {
		return c.JSON(http.StatusConflict, errorJSON("Email already exists"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorJSON("Internal error"))
	}

	u := model.User{
		ID:        uuid.NewString(),
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      model.RoleCustomer,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	s.accounts[req.Email] = &account{user: u, passwordHash: string(hash)}

	return c.JSON(http.StatusCreated, authResponse{User: u, Token: s.IssueToken(u.ID, 15*time.Minute)})
}

func (s *Server) login(c echo.Context) error {
	var req authRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("Invalid request body"))
	}

	s.mu.Lock()
	acc, ok := s.accounts[req.Email]
	s.mu.Unlock()

	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("Invalid email or password"))
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.passwordHash), []byte(req.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, errorJSON("Invalid email or password"))
	}

	return c.JSON(http.StatusOK, authResponse{User: acc.user, Token: s.IssueToken(acc.user.ID, 15*time.Minute)})
}

func (s *Server) verify(c echo.Context) error {
	if s.FailVerify {
		return c.JSON(http.StatusUnauthorized, errorJSON("Invalid token"))
	}

	u, err := s.authenticate(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, errorJSON("Invalid token"))
	}
	return c.JSON(http.StatusOK, map[string]model.User{"user": u})
}

func (s *Server) logout(c echo.Context) error {
	if s.FailLogout {
		return c.JSON(http.StatusInternalServerError, errorJSON("Internal error"))
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) refresh(c echo.Context) error {
	if s.FailRefresh {
		return c.JSON(http.StatusUnauthorized, errorJSON("Token expired"))
	}

	u, err := s.authenticate(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, errorJSON("Invalid token"))
	}
	return c.JSON(http.StatusOK, authResponse{User: u, Token: s.IssueToken(u.ID, 15*time.Minute)})
}

func (s *Server) listCylinders(c echo.Context) error {
	s.mu.Lock()
	out := make([]model.GasCylinder, len(s.cylinders))
	copy(out, s.cylinders)
	s.mu.Unlock()
	return c.JSON(http.StatusOK, out)
}

func (s *Server) getCylinder(c echo.Context) error {
	cyl, ok := s.Cylinder(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, errorJSON("Gas cylinder not found"))
	}
	return c.JSON(http.StatusOK, cyl)
}

type createOrderRequest struct {
	CustomerID          string  `json:"customerId"`
	DeliveryAddress     string  `json:"deliveryAddress"`
	DeliveryLatitude    float64 `json:"deliveryLatitude"`
	DeliveryLongitude   float64 `json:"deliveryLongitude"`
	SpecialInstructions string  `json:"specialInstructions"`
	Items               []struct {
		GasCylinderID string `json:"gasCylinderId"`
		Quantity      int64  `json:"quantity"`
	} `json:"items"`
}

func (s *Server) createOrder(c echo.Context) error {
	u, err := s.authenticate(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, errorJSON("Invalid token"))
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("Invalid request body"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	//在庫チェック（足りなければ何も引かない）
	var items []model.OrderItem
	var total int64
	for _, in := range req.Items {
		idx := -1
		for i, cyl := range s.cylinders {
			if cyl.ID == in.GasCylinderID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return c.JSON(http.StatusBadRequest, errorJSON("Gas cylinder not found"))
		}
		cyl := s.cylinders[idx]
		if in.Quantity > cyl.StockQuantity {
			return c.JSON(http.StatusBadRequest, errorJSON(fmt.Sprintf("Insufficient stock for %s", cyl.Name)))
		}

		items = append(items, model.OrderItem{
			ID:          uuid.NewString(),
			Quantity:    in.Quantity,
			UnitPrice:   cyl.Price,
			TotalPrice:  cyl.Price * in.Quantity,
			GasCylinder: cyl,
		})
		total += cyl.Price * in.Quantity
	}

	//在庫を引く
	for _, it := range items {
		for i := range s.cylinders {
			if s.cylinders[i].ID == it.GasCylinder.ID {
				s.cylinders[i].StockQuantity -= it.Quantity
			}
		}
	}

	s.orderSeq++
	now := time.Now()
	ord := model.Order{
		ID:                  uuid.NewString(),
		OrderNumber:         fmt.Sprintf("ORD-%04d", s.orderSeq),
		Customer:            u,
		Status:              model.OrderStatusPending,
		PaymentStatus:       model.PaymentStatusPending,
		TotalAmount:         total + 5000,
		DeliveryFee:         5000,
		DeliveryAddress:     req.DeliveryAddress,
		DeliveryLatitude:    req.DeliveryLatitude,
		DeliveryLongitude:   req.DeliveryLongitude,
		SpecialInstructions: req.SpecialInstructions,
		Items:               items,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	s.orders = append(s.orders, ord)

	return c.JSON(http.StatusCreated, ord)
}

func (s *Server) listCustomerOrders(c echo.Context) error {
	if _, err := s.authenticate(c); err != nil {
		return c.JSON(http.StatusUnauthorized, errorJSON("Invalid token"))
	}

	customerID := c.Param("customerId")
	page := atoiOr(c.QueryParam("page"), 1)
	limit := atoiOr(c.QueryParam("limit"), 10)

	s.mu.Lock()
	var matched []model.Order
	for _, o := range s.orders {
		if o.Customer.ID == customerID {
			matched = append(matched, o)
		}
	}
	s.mu.Unlock()

	total := len(matched)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	totalPages := (total + limit - 1) / limit
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": matched[start:end],
		"pagination": map[string]int{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": totalPages,
		},
	})
}

func (s *Server) cancelOrder(c echo.Context) error {
	if _, err := s.authenticate(c); err != nil {
		return c.JSON(http.StatusUnauthorized, errorJSON("Invalid token"))
	}

	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		if !s.orders[i].CanCancel() {
			return c.JSON(http.StatusBadRequest, errorJSON("Order can no longer be cancelled"))
		}
		s.orders[i].Status = model.OrderStatusCancelled
		s.orders[i].UpdatedAt = time.Now()
		return c.JSON(http.StatusOK, s.orders[i])
	}

	return c.JSON(http.StatusNotFound, errorJSON("Order not found"))
}

func (s *Server) orderStats(c echo.Context) error {
	if _, err := s.authenticate(c); err != nil {
		return c.JSON(http.StatusUnauthorized, errorJSON("Invalid token"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]int64{
		"totalOrders":     int64(len(s.orders)),
		"pendingOrders":   0,
		"deliveredOrders": 0,
		"cancelledOrders": 0,
		"totalRevenue":    0,
	}
	for _, o := range s.orders {
		switch o.Status {
		case model.OrderStatusPending:
			stats["pendingOrders"]++
		case model.OrderStatusDelivered:
			stats["deliveredOrders"]++
			stats["totalRevenue"] += o.TotalAmount
		case model.OrderStatusCancelled:
			stats["cancelledOrders"]++
		}
	}
	return c.JSON(http.StatusOK, stats)
}

// ==== 認証まわり ====

// Authorizationヘッダからユーザーを引く。
func (s *Server) authenticate(c echo.Context) (model.User, error) {
	authz := c.Request().Header.Get("Authorization")
	if authz == "" {
		return model.User{}, errors.New("missing authorization header")
	}

	//Bearer形式か確認してtokenを抜く
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return model.User{}, errors.New("not a bearer token")
	}
	raw := strings.TrimSpace(parts[1])

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return model.User{}, errors.New("invalid token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.user.ID == claims.Subject {
			return acc.user, nil
		}
	}
	return model.User{}, errors.New("unknown user")
}

func errorJSON(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func atoiOr(v string, def int) int {
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 1 {
		return def
	}
	return i
}
