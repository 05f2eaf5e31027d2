package order

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"

	"gasapp/internal/api"
	"gasapp/internal/domain/model"

	"go.uber.org/zap"
)

// 配送料は固定。
const DeliveryFee int64 = 5000

var (
	// 在庫上限を超える追加・変更をした
	ErrStockLimit = errors.New("stock limit reached")
	// 送信条件が揃っていないのにSubmitを呼んだ
	ErrNotSubmittable = errors.New("order is not ready to submit")
)

// Composerが使うAPI操作だけを約束。
type Gateway interface {
	CreateOrder(ctx context.Context, token string, in api.CreateOrderInput) (model.Order, error)
	ListCylinders(ctx context.Context) ([]model.GasCylinder, error)
}

// Composer は注文画面1回分のカートと入力を持つ。
// カートはローカル専用で、送信成功か画面離脱で捨てる。
type Composer struct {
	gw  Gateway
	log *zap.Logger

	mu           sync.Mutex
	cylinders    []model.GasCylinder
	items        []model.CartItem // 追加順を保つ
	address      string
	lat          *float64
	lng          *float64
	instructions string
	submitting   bool
}

func NewComposer(gw Gateway, log *zap.Logger) *Composer {
	return &Composer{gw: gw, log: log}
}

// LoadCylinders は一覧を取得して保持する。
func (c *Composer) LoadCylinders(ctx context.Context) ([]model.GasCylinder, error) {
	list, err := c.gw.ListCylinders(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cylinders = list
	c.mu.Unlock()
	return list, nil
}

func (c *Composer) Cylinders() []model.GasCylinder {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.GasCylinder, len(c.cylinders))
	copy(out, c.cylinders)
	return out
}

// AddToCart はカートへ1個追加する。
// 既にあれば数量+1。在庫を超えるなら何も変えずに ErrStockLimit。
func (c *Composer) AddToCart(cyl model.GasCylinder) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, it := range c.items {
		if it.Cylinder.ID == cyl.ID {
			if it.Quantity+1 > it.Cylinder.StockQuantity {
				return ErrStockLimit
			}
			c.items[i].Quantity++
			return nil
		}
	}

	if cyl.StockQuantity < 1 {
		return ErrStockLimit
	}
	c.items = append(c.items, model.CartItem{Cylinder: cyl, Quantity: 1})
	return nil
}

// UpdateQuantity は数量を差分で変える。
// 0以下になったら明細ごと削除。在庫超過は何も変えずに ErrStockLimit。
func (c *Composer) UpdateQuantity(cylinderID string, delta int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, it := range c.items {
		if it.Cylinder.ID != cylinderID {
			continue
		}

		next := it.Quantity + delta
		if next <= 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
		if next > it.Cylinder.StockQuantity {
			return ErrStockLimit
		}
		c.items[i].Quantity = next
		return nil
	}

	return nil
}

// Items はカートのスナップショット（追加順）。
func (c *Composer) Items() []model.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Composer) Subtotal() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotalLocked()
}

// Total は小計＋固定配送料。
func (c *Composer) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotalLocked() + DeliveryFee
}

func (c *Composer) subtotalLocked() int64 {
	var sum int64
	for _, it := range c.items {
		sum += it.LineTotal()
	}
	return sum
}

func (c *Composer) SetAddress(address string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.address = address
}

func (c *Composer) SetCoordinates(lat float64, lng float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lat = &lat
	c.lng = &lng
}

func (c *Composer) SetInstructions(instructions string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instructions = instructions
}

// CanSubmit は送信ボタンを押せる状態かどうか。
// カートが空・住所なし・座標が未設定か範囲外・送信中、のどれかならfalse。
func (c *Composer) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSubmitLocked()
}

func (c *Composer) canSubmitLocked() bool {
	if len(c.items) == 0 {
		return false
	}
	if strings.TrimSpace(c.address) == "" {
		return false
	}
	if c.lat == nil || c.lng == nil {
		return false
	}
	if math.IsNaN(*c.lat) || math.IsNaN(*c.lng) {
		return false
	}
	if *c.lat < -90 || *c.lat > 90 {
		return false
	}
	if *c.lng < -180 || *c.lng > 180 {
		return false
	}
	return !c.submitting
}

// Submit は注文を送信する。
// 成功したらカートと指示をクリアして在庫反映のため一覧を取り直す。
// 在庫関連のメッセージで失敗したときも一覧を取り直してから元のエラーを返す。
func (c *Composer) Submit(ctx context.Context, token string, customerID string) (model.Order, error) {
	c.mu.Lock()
	if !c.canSubmitLocked() {
		c.mu.Unlock()
		return model.Order{}, ErrNotSubmittable
	}
	c.submitting = true

	in := api.CreateOrderInput{
		CustomerID:          customerID,
		Items:               make([]api.OrderItemInput, 0, len(c.items)),
		DeliveryAddress:     strings.TrimSpace(c.address),
		DeliveryLatitude:    *c.lat,
		DeliveryLongitude:   *c.lng,
		SpecialInstructions: strings.TrimSpace(c.instructions),
	}
	for _, it := range c.items {
		in.Items = append(in.Items, api.OrderItemInput{
			GasCylinderID: it.Cylinder.ID,
			Quantity:      it.Quantity,
		})
	}
	c.mu.Unlock()

	ord, err := c.gw.CreateOrder(ctx, token, in)

	c.mu.Lock()
	c.submitting = false
	if err == nil {
		c.items = nil
		c.instructions = ""
	}
	c.mu.Unlock()

	if err != nil {
		// 在庫起因らしい失敗なら、リトライ前に最新の在庫を見せる
		if strings.Contains(strings.ToLower(err.Error()), "stock") {
			c.refreshCylinders(ctx)
		}
		return model.Order{}, err
	}

	c.refreshCylinders(ctx)
	return ord, nil
}

// 一覧の取り直し。失敗してもログだけ（注文自体は成立している）。
func (c *Composer) refreshCylinders(ctx context.Context) {
	list, err := c.gw.ListCylinders(ctx)
	if err != nil {
		c.log.Warn("failed to refresh cylinders", zap.Error(err))
		return
	}

	c.mu.Lock()
	c.cylinders = list
	c.mu.Unlock()
}
