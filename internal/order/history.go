package order

import (
	"context"
	"sync"

	"gasapp/internal/api"
	"gasapp/internal/domain/model"
)

// Historyが使うAPI操作だけを約束。
type OrderLister interface {
	ListCustomerOrders(ctx context.Context, token string, customerID string, page int, limit int) (api.OrderPage, error)
}

// History は注文履歴の追記型ページングを持つ。
// fetch中の多重呼び出しと、最終ページ到達後のLoadMoreは何もしない。
type History struct {
	lister OrderLister
	limit  int

	mu      sync.Mutex
	orders  []model.Order
	page    int
	loading bool
	hasMore bool
}

func NewHistory(lister OrderLister, limit int) *History {
	if limit <= 0 {
		limit = 10
	}
	return &History{lister: lister, limit: limit, hasMore: true}
}

// Load は1ページ目から読み直す。
func (h *History) Load(ctx context.Context, token string, customerID string) error {
	h.mu.Lock()
	if h.loading {
		h.mu.Unlock()
		return nil
	}
	h.loading = true
	h.mu.Unlock()

	page, err := h.lister.ListCustomerOrders(ctx, token, customerID, 1, h.limit)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.loading = false
	if err != nil {
		return err
	}

	h.orders = page.Data
	h.page = 1
	// 最後のページが満杯だったら、まだ続きがあるとみなす
	h.hasMore = len(page.Data) == h.limit
	return nil
}

// LoadMore は次のページを末尾に足す。
func (h *History) LoadMore(ctx context.Context, token string, customerID string) error {
	h.mu.Lock()
	if h.loading || !h.hasMore {
		h.mu.Unlock()
		return nil
	}
	h.loading = true
	next := h.page + 1
	h.mu.Unlock()

	page, err := h.lister.ListCustomerOrders(ctx, token, customerID, next, h.limit)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.loading = false
	if err != nil {
		return err
	}

	h.orders = append(h.orders, page.Data...)
	h.page = next
	h.hasMore = len(page.Data) == h.limit
	return nil
}

func (h *History) Orders() []model.Order {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]model.Order, len(h.orders))
	copy(out, h.orders)
	return out
}

func (h *History) HasMore() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hasMore
}

func (h *History) IsLoading() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loading
}
