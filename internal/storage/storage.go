package storage

import (
	"context"

	"gasapp/internal/config"
)

// 永続化に使うキー。
const (
	KeyAuthToken = "authToken"
	KeyUserData  = "userData"
)

// キー・バリューの保存と取得だけを約束。
// Getはキーが無くてもエラーにしない（ok=falseで返す）。
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// New は起動時に一度だけバックエンドを選ぶ。
// DataDirが設定されていれば端末内SQLite、無ければ揮発性のインメモリ。
func New(cfg config.Config) (Store, error) {
	if cfg.DataDir == "" {
		return NewMemoryStore(), nil
	}
	return NewSQLiteStore(cfg.DataDir)
}
