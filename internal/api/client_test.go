package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gasapp/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClientFor(ts *httptest.Server) *Client {
	return NewClient(ts.URL, 5*time.Second)
}

func TestNoContentResponseIsNotParsed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()
	c := newClientFor(ts)

	//outありのメソッドでも204はゼロ値のまま成功する
	ord, err := c.GetOrder(context.Background(), "tok", "o-1")
	require.NoError(t, err)
	assert.Equal(t, model.Order{}, ord)

	require.NoError(t, c.Logout(context.Background(), "tok"))
}

func TestErrorMessageComesFromErrorField(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error": "Email already exists"}`))
	}))
	defer ts.Close()
	c := newClientFor(ts)

	_, err := c.Login(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, "Email already exists", err.Error())

	ae, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, ae.Status)
}

func TestErrorMessageFallsBackToMessageField(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "Validation failed"}`))
	}))
	defer ts.Close()
	c := newClientFor(ts)

	_, err := c.ListCylinders(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Validation failed", err.Error())
}

func TestErrorMessageGenericWhenBodyUnusable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>oops</html>`))
	}))
	defer ts.Close()
	c := newClientFor(ts)

	_, err := c.ListCylinders(context.Background())
	require.Error(t, err)
	assert.Equal(t, "HTTP error! status: 500", err.Error())
}

func TestContentTypeOnlyWithBody(t *testing.T) {
	var gotContentType string
	var gotAuthz string
	var gotRequestID string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotAuthz = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()
	c := newClientFor(ts)
	ctx := context.Background()

	//ボディなし → Content-Typeなし
	_, _ = c.Verify(ctx, "tok-123")
	assert.Empty(t, gotContentType)
	assert.Equal(t, "Bearer tok-123", gotAuthz)
	assert.NotEmpty(t, gotRequestID)

	//ボディあり → application/json
	_, _ = c.Login(ctx, Credentials{Email: "a@b.c", Password: "x"})
	assert.Equal(t, "application/json", gotContentType)
}

func TestOrderListQueryDropsEmptyValues(t *testing.T) {
	var gotQuery map[string][]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"data": [], "pagination": {"page":1,"limit":10,"total":0,"totalPages":0}}`))
	}))
	defer ts.Close()
	c := newClientFor(ts)

	_, err := c.ListOrders(context.Background(), "tok", OrderListQuery{
		Page:       2,
		Limit:      10,
		CustomerID: "cust-1",
		// DriverID / Status / 日付は未指定
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"2"}, gotQuery["page"])
	assert.Equal(t, []string{"10"}, gotQuery["limit"])
	assert.Equal(t, []string{"cust-1"}, gotQuery["customerId"])
	assert.NotContains(t, gotQuery, "driverId")
	assert.NotContains(t, gotQuery, "status")
	assert.NotContains(t, gotQuery, "startDate")
	assert.NotContains(t, gotQuery, "endDate")
}

func TestCreateOrderPreconditionsFailFast(t *testing.T) {
	//事前チェックで落ちるならネットワークに出ない
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	}))
	defer ts.Close()
	c := newClientFor(ts)
	ctx := context.Background()

	items := []OrderItemInput{{GasCylinderID: "cyl-1", Quantity: 1}}

	_, err := c.CreateOrder(ctx, "tok", CreateOrderInput{Items: items, DeliveryAddress: "addr"})
	assert.ErrorIs(t, err, ErrMissingCustomerID)

	_, err = c.CreateOrder(ctx, "tok", CreateOrderInput{CustomerID: "u1", DeliveryAddress: "addr"})
	assert.ErrorIs(t, err, ErrEmptyOrderItems)

	_, err = c.CreateOrder(ctx, "tok", CreateOrderInput{CustomerID: "u1", Items: items, DeliveryAddress: "   "})
	assert.ErrorIs(t, err, ErrMissingAddress)
}

func TestNetworkErrorPropagatesAsIs(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() //すぐ落として接続拒否にする
	c := newClientFor(ts)

	_, err := c.ListCylinders(context.Background())
	require.Error(t, err)
	_, ok := AsAPIError(err)
	assert.False(t, ok, "transport errors must not be wrapped as APIError")
}
