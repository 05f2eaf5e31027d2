package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"gasapp/internal/api"
	"gasapp/internal/domain/model"
	"gasapp/internal/storage"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

// トークンが無い状態でrefreshを呼んだ
var ErrNoToken = errors.New("no token available")

// refresh失敗時に画面へ出す文言
const msgSessionExpired = "session expired"

// エラー文言が取れなかったときの汎用文言
const msgGeneric = "something went wrong"

// ログアウト後の画面遷移だけを約束。
type Navigator interface {
	ToLogin()
}

// Manager は認証済みユーザーとトークンの組を一元管理する。
// メモリ上の状態が正で、ストレージはそのミラー。
// user と token は必ず両方揃うか両方空。
type Manager struct {
	api   *api.Client
	store storage.Store
	nav   Navigator
	log   *zap.Logger

	mu       sync.Mutex
	user     *model.User
	token    string
	loading  bool
	lastErr  string
	gen      uint64 // 世代カウンタ。古い結果で新しい状態を上書きしない
	restored bool
}

func NewManager(apiClient *api.Client, store storage.Store, nav Navigator, log *zap.Logger) *Manager {
	return &Manager{
		api:   apiClient,
		store: store,
		nav:   nav,
		log:   log,
	}
}

// Session は現在のセッションのスナップショットを返す。
func (m *Manager) Session() model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return model.Session{User: m.user, Token: m.token}
}

func (m *Manager) IsAuthenticated() bool {
	return m.Session().IsAuthenticated()
}

func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

func (m *Manager) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// ClearError はエラー表示だけを消す。副作用なし。
func (m *Manager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = ""
}

// Restore は起動時に一度だけ呼ぶ。
// ストレージにトークンとユーザーが両方あれば先にメモリへ反映し、
// その後サーバーで検証する。検証に失敗したら完全にログアウトする。
func (m *Manager) Restore(ctx context.Context) error {
	m.mu.Lock()
	if m.restored {
		m.mu.Unlock()
		return nil
	}
	m.restored = true
	m.mu.Unlock()

	token, okToken, err := m.store.Get(ctx, storage.KeyAuthToken)
	if err != nil {
		m.log.Warn("failed to read stored token", zap.Error(err))
		return nil
	}
	userJSON, okUser, err := m.store.Get(ctx, storage.KeyUserData)
	if err != nil {
		m.log.Warn("failed to read stored user", zap.Error(err))
		return nil
	}

	// 片方しか無い場合は未認証扱い（部分状態を作らない）
	if !okToken || !okUser || token == "" || userJSON == "" {
		return nil
	}

	var user model.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		m.log.Warn("stored user is broken, logging out", zap.Error(err))
		m.Logout(ctx)
		return nil
	}

	//楽観的にメモリへ反映（検証が終わるまで画面に前回のユーザーを出せる）
	g := m.begin()
	m.mu.Lock()
	if m.gen == g {
		m.user = &user
		m.token = token
	}
	m.mu.Unlock()

	//サーバー側でトークンを検証。失敗したら完全ログアウト（エラーにはしない）。
	fresh, err := m.api.Verify(ctx, token)
	if err != nil {
		m.log.Info("stored token failed verification, logging out", zap.Error(err))
		m.Logout(ctx)
		return nil
	}

	if m.apply(g, &fresh, token) {
		m.persist(ctx, &fresh, token)
	}

	return nil
}

// Login はセッションを作り直して永続化する。失敗は呼び出し側へ返す。
func (m *Manager) Login(ctx context.Context, in api.Credentials) (model.Session, error) {
	g := m.begin()

	res, err := m.api.Login(ctx, in)
	if err != nil {
		m.fail(g, errMessage(err))
		return model.Session{}, err
	}

	if m.apply(g, &res.User, res.Token) {
		m.persist(ctx, &res.User, res.Token)
	}

	return model.Session{User: &res.User, Token: res.Token}, nil
}

// Register はログインと同じ形で登録エンドポイントを叩く。
func (m *Manager) Register(ctx context.Context, in api.RegisterInput) (model.Session, error) {
	g := m.begin()

	res, err := m.api.Register(ctx, in)
	if err != nil {
		m.fail(g, errMessage(err))
		return model.Session{}, err
	}

	if m.apply(g, &res.User, res.Token) {
		m.persist(ctx, &res.User, res.Token)
	}

	return model.Session{User: &res.User, Token: res.Token}, nil
}

// Refresh はトークンを更新する。
// トークンが無ければ ErrNoToken。失敗したら強制ログアウトして元のエラーを返す。
func (m *Manager) Refresh(ctx context.Context) (model.Session, error) {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()

	if token == "" {
		return model.Session{}, ErrNoToken
	}

	g := m.begin()

	res, err := m.api.Refresh(ctx, token)
	if err != nil {
		m.fail(g, msgSessionExpired)
		m.Logout(ctx)
		return model.Session{}, err
	}

	if m.apply(g, &res.User, res.Token) {
		m.persist(ctx, &res.User, res.Token)
	}

	return model.Session{User: &res.User, Token: res.Token}, nil
}

// Logout はメモリとストレージを必ず空にする。
// リモート通知は成功しなくてよい（失敗はログだけ）。何度呼んでも安全。
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	token := m.token
	m.gen++ //実行中の結果を無効化
	m.user = nil
	m.token = ""
	m.loading = false
	m.mu.Unlock()

	if token != "" {
		if err := m.api.Logout(ctx, token); err != nil {
			m.log.Warn("remote logout failed", zap.Error(err))
		}
	}

	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn("failed to clear storage on logout", zap.Error(err))
	}

	if m.nav != nil {
		m.nav.ToLogin()
	}
}

// TokenExpiresAt は署名検証なしでexpクレームを読む。
// リフレッシュのスケジューリング用で、有効性の判断はサーバーに任せる。
func (m *Manager) TokenExpiresAt() (time.Time, bool) {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()

	if token == "" {
		return time.Time{}, false
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// begin は操作の開始。loadingを立てて新しい世代番号を返す。
// loading中でも直前のセッションは消さない（検証が終わるまで画面に出し続けられる）。
func (m *Manager) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	m.loading = true
	m.lastErr = ""
	return m.gen
}

// apply は結果をメモリへ反映する。世代が進んでいたら何もせず false を返す。
// 反映されなかった結果は永続化もしない（ログアウト後の復活を防ぐ）。
func (m *Manager) apply(g uint64, user *model.User, token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gen != g {
		return false
	}
	m.user = user
	m.token = token
	m.loading = false
	return true
}

// fail は失敗をメモリへ反映する。世代が進んでいたら何もしない。
func (m *Manager) fail(g uint64, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gen != g {
		return
	}
	m.loading = false
	m.lastErr = msg
}

// persist はセッションをストレージへ書く。失敗してもログだけ（ローカル状態が正）。
func (m *Manager) persist(ctx context.Context, user *model.User, token string) {
	if err := m.store.Set(ctx, storage.KeyAuthToken, token); err != nil {
		m.log.Warn("failed to persist token", zap.Error(err))
		return
	}

	buf, err := json.Marshal(user)
	if err != nil {
		m.log.Warn("failed to encode user", zap.Error(err))
		return
	}
	if err := m.store.Set(ctx, storage.KeyUserData, string(buf)); err != nil {
		m.log.Warn("failed to persist user", zap.Error(err))
	}
}

// errMessage はエラーから画面向けの文言を取り出す。
func errMessage(err error) string {
	if err == nil || err.Error() == "" {
		return msgGeneric
	}
	return err.Error()
}
