package order

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"gasapp/internal/api"
	"gasapp/internal/apitest"
	"gasapp/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// 本物のAPI Client越しに注文→在庫反映まで通す。
func TestComposerAgainstFakeAPI(t *testing.T) {
	srv := apitest.NewServer()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client := api.NewClient(ts.URL, 5*time.Second)
	ctx := context.Background()

	u := srv.SeedUser("taro@example.com", "secret123", model.RoleCustomer)
	token := srv.IssueToken(u.ID, 15*time.Minute)
	srv.SeedCylinder(model.GasCylinder{ID: "cyl-1", Name: "LPG 8kg", Price: 20000, StockQuantity: 3, IsAvailable: true})

	c := NewComposer(client, zap.NewNop())
	cylinders, err := c.LoadCylinders(ctx)
	require.NoError(t, err)
	require.Len(t, cylinders, 1)

	require.NoError(t, c.AddToCart(cylinders[0]))
	require.NoError(t, c.UpdateQuantity("cyl-1", 1))
	c.SetAddress("1-2-3 Sakura, Tokyo")
	c.SetCoordinates(35.68, 139.76)

	ord, err := c.Submit(ctx, token, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2*20000+DeliveryFee), ord.TotalAmount)
	assert.Empty(t, c.Items())

	//refetch済みの一覧では在庫が減っている
	refreshed := c.Cylinders()
	require.Len(t, refreshed, 1)
	assert.Equal(t, int64(1), refreshed[0].StockQuantity)
}
