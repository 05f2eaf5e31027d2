package api

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"gasapp/internal/apitest"
	"gasapp/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 偽APIに対して型付きメソッドを一通り通す。
func TestClientAgainstFakeAPI(t *testing.T) {
	srv := apitest.NewServer()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	c := NewClient(ts.URL, 5*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	//登録 → 二重登録は"Email already exists"
	res, err := c.Register(ctx, RegisterInput{
		Email: "taro@example.com", Password: "secret123", FirstName: "Taro", LastName: "Yamada",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, model.RoleCustomer, res.User.Role)

	_, err = c.Register(ctx, RegisterInput{Email: "taro@example.com", Password: "x", FirstName: "a", LastName: "b"})
	require.Error(t, err)
	assert.Equal(t, "Email already exists", err.Error())

	//ログインと検証
	res, err = c.Login(ctx, Credentials{Email: "taro@example.com", Password: "secret123"})
	require.NoError(t, err)
	token := res.Token

	verified, err := c.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, verified.ID)

	//商品一覧 → 注文 → 在庫が減る
	cyl := srv.SeedCylinder(model.GasCylinder{
		Name: "LPG 8kg", Weight: 8, Price: 20000, StockQuantity: 5, IsAvailable: true,
	})

	list, err := c.ListCylinders(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	ord, err := c.CreateOrder(ctx, token, CreateOrderInput{
		CustomerID:        res.User.ID,
		Items:             []OrderItemInput{{GasCylinderID: cyl.ID, Quantity: 2}},
		DeliveryAddress:   "1-2-3 Sakura, Tokyo",
		DeliveryLatitude:  35.68,
		DeliveryLongitude: 139.76,
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, ord.Status)
	assert.Equal(t, int64(2*20000+5000), ord.TotalAmount)

	after, _ := srv.Cylinder(cyl.ID)
	assert.Equal(t, int64(3), after.StockQuantity)

	//履歴（ページングの包み）
	page, err := c.ListCustomerOrders(ctx, token, res.User.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, 1, page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.TotalPages)

	//キャンセル（pendingなので通る）
	cancelled, err := c.CancelOrder(ctx, token, ord.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	assert.False(t, cancelled.CanCancel())

	//集計
	stats, err := c.GetOrderStats(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.CancelledOrders)

	//在庫超過は在庫を引かずにエラー
	_, err = c.CreateOrder(ctx, token, CreateOrderInput{
		CustomerID:        res.User.ID,
		Items:             []OrderItemInput{{GasCylinderID: cyl.ID, Quantity: 99}},
		DeliveryAddress:   "somewhere",
		DeliveryLatitude:  35,
		DeliveryLongitude: 139,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Insufficient stock")
	after, _ = srv.Cylinder(cyl.ID)
	assert.Equal(t, int64(3), after.StockQuantity)
}
